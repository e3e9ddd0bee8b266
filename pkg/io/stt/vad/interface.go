package vad

import "fmt"

// Detector classifies one fixed-duration frame of 16-bit little-endian mono
// PCM as speech or silence. Implementations must be safe for concurrent use;
// a single detector is shared by every session.
type Detector interface {
	IsSpeech(frame []byte, sampleRate int) bool
}

// VADConfig contains configuration for VAD
type VADConfig struct {
	SampleRate      int     `json:"sampleRate"`      // Expected sample rate (e.g., 16000)
	FrameMs         int     `json:"frameMs"`         // Frame duration, 10, 20 or 30
	EnergyThreshold float64 `json:"energyThreshold"` // RMS threshold over raw int16 amplitude
	Threshold       float32 `json:"threshold"`       // Silero speech probability threshold (0.0-1.0)
}

// DefaultVADConfig returns default VAD configuration optimized for speech
func DefaultVADConfig() VADConfig {
	return VADConfig{
		SampleRate:      16000,
		FrameMs:         30,
		EnergyThreshold: 500,
		Threshold:       0.5,
	}
}

var supportedRates = map[int]bool{8000: true, 16000: true, 32000: true, 48000: true}

// FrameBytes returns the size in bytes of one frame at the given rate and
// duration, or an error when the combination is outside the detector contract.
func FrameBytes(sampleRate, frameMs int) (int, error) {
	if !supportedRates[sampleRate] {
		return 0, fmt.Errorf("unsupported sample rate %d", sampleRate)
	}
	switch frameMs {
	case 10, 20, 30:
	default:
		return 0, fmt.Errorf("unsupported frame duration %dms", frameMs)
	}
	return sampleRate * frameMs / 1000 * 2, nil
}
