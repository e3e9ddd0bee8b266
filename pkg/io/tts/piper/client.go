package piper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xpanvictor/xarvis-voice/pkg/io/tts"
)

type Piper struct {
	BaseURL string        // e.g. "http://tts:5000"
	Client  *http.Client  // inject; default if nil
	Voice   string        // default voice
	Timeout time.Duration // request timeout
}

var _ tts.Synthesizer = (*Piper)(nil)

func New(bu, voice string) *Piper {
	return &Piper{BaseURL: strings.TrimRight(bu, "/"), Voice: voice}
}

// Synthesize implements tts.Synthesizer. Piper answers with a WAV body.
func (p *Piper) Synthesize(ctx context.Context, text string) (tts.Speech, error) {
	body, err := p.DoTTS(ctx, text, "")
	if err != nil {
		return tts.Speech{}, err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return tts.Speech{}, fmt.Errorf("tts read body: %w", err)
	}
	return tts.Speech{Audio: audio, Format: "wav"}, nil
}

func (p *Piper) DoTTS(ctx context.Context, text string, optVoice string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}
	voice := p.Voice
	if optVoice != "" {
		voice = optVoice
	}

	// rhasspy/wyoming-piper HTTP: GET /api/text-to-speech?text=...&voice=...
	u, err := url.Parse(p.BaseURL + "/api/text-to-speech")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("text", text)
	if voice != "" {
		q.Set("voice", voice)
	}
	u.RawQuery = q.Encode()

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx2, http.MethodGet, u.String(), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "audio/wav")

	hc := p.Client
	if hc == nil {
		hc = http.DefaultClient
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("tts http request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("tts http %d: %s (dur=%s)", resp.StatusCode, string(b), time.Since(start))
	}
	// caller must Close the body
	return &cancelBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelBody) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
