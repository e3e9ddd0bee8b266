package vad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/io/wav"
)

// VADSegment represents a voice activity segment from Silero API
type VADSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// SileroAPIResponse represents the response from Silero VAD service
type SileroAPIResponse struct {
	HasVoice         bool         `json:"has_voice"`
	Confidence       float32      `json:"confidence"`
	Segments         []VADSegment `json:"segments"`
	ProcessingTimeMs float64      `json:"processing_time_ms"`
}

// SileroVAD classifies frames through a Silero VAD HTTP service. When the
// service fails it answers from the energy fallback and stays on the fallback
// for a cool-down period before trying the service again.
type SileroVAD struct {
	config     VADConfig
	logger     *Logger.Logger
	httpClient *http.Client
	serviceURL string
	timeout    time.Duration
	cooldown   time.Duration
	fallback   Detector

	mutex     sync.Mutex
	downUntil time.Time
	now       func() time.Time
}

// NewSileroVADWithURL creates a new Silero VAD instance with custom service URL
func NewSileroVADWithURL(config VADConfig, logger *Logger.Logger, serviceURL string, timeout, cooldown time.Duration) *SileroVAD {
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	return &SileroVAD{
		config:     config,
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		serviceURL: serviceURL,
		timeout:    timeout,
		cooldown:   cooldown,
		fallback:   NewEnergyVAD(config.EnergyThreshold),
		now:        time.Now,
	}
}

// IsSpeech implements Detector.
func (s *SileroVAD) IsSpeech(frame []byte, sampleRate int) bool {
	if len(frame) < 2 {
		return false
	}
	if s.inCooldown() {
		return s.fallback.IsSpeech(frame, sampleRate)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	resp, err := s.callSileroVADService(ctx, frame, sampleRate)
	if err != nil {
		s.markDown()
		s.logger.Warnf("Silero VAD service failed, falling back to energy-based VAD for %s: %v", s.cooldown, err)
		return s.fallback.IsSpeech(frame, sampleRate)
	}
	if resp.HasVoice {
		return true
	}
	return resp.Confidence >= s.config.Threshold && s.config.Threshold > 0
}

func (s *SileroVAD) inCooldown() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.now().Before(s.downUntil)
}

func (s *SileroVAD) markDown() {
	s.mutex.Lock()
	s.downUntil = s.now().Add(s.cooldown)
	s.mutex.Unlock()
}

// callSileroVADService calls the Silero VAD HTTP service
func (s *SileroVAD) callSileroVADService(ctx context.Context, frame []byte, sampleRate int) (SileroAPIResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return SileroAPIResponse{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(wav.Encode(frame, sampleRate)); err != nil {
		return SileroAPIResponse{}, fmt.Errorf("failed to write audio data: %w", err)
	}

	writer.WriteField("threshold", fmt.Sprintf("%.3f", s.config.Threshold))
	writer.WriteField("sampling_rate", strconv.Itoa(sampleRate))
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serviceURL+"/vad", body)
	if err != nil {
		return SileroAPIResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SileroAPIResponse{}, fmt.Errorf("failed to call VAD service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return SileroAPIResponse{}, fmt.Errorf("VAD service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var sileroResp SileroAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&sileroResp); err != nil {
		return SileroAPIResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return sileroResp, nil
}
