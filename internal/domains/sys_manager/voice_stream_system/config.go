package voicestreamsystem

import (
	"time"

	"github.com/xpanvictor/xarvis-voice/internal/config"
)

// VSSConfig contains configuration for the VSS
type VSSConfig struct {
	SampleRate             int           `json:"sampleRate"`
	FrameMs                int           `json:"frameMs"`
	SpeechFramesThreshold  int           `json:"speechFramesThreshold"`  // consecutive speech frames before the user counts as speaking
	SilenceFramesThreshold int           `json:"silenceFramesThreshold"` // consecutive silent frames before the user counts as silent
	MaxBufferBytes         int           `json:"maxBufferBytes"`
	SilenceThreshold       time.Duration `json:"silenceThreshold"`
	SilencePollInterval    time.Duration `json:"silencePollInterval"`
	AutoEndTurn            bool          `json:"autoEndTurn"` // false leaves turn ends to explicit end_turn
	DefaultFormat          string        `json:"defaultFormat"`
	Timeouts               Timeouts      `json:"timeouts"`
	IdleSessionTTL         time.Duration `json:"idleSessionTTL"`
	MailboxSize            int           `json:"mailboxSize"`
	OutboundQueue          int           `json:"outboundQueue"` // per-connection event queue of stream sessions
}

// Timeouts bounds each collaborator call of a turn. Zero means no timeout.
type Timeouts struct {
	Transcribe time.Duration `json:"transcribe"`
	Respond    time.Duration `json:"respond"`
	Synthesize time.Duration `json:"synthesize"`
}

// DefaultVSSConfig returns default configuration
func DefaultVSSConfig() VSSConfig {
	return VSSConfig{
		SampleRate:             16000,
		FrameMs:                30,
		SpeechFramesThreshold:  3,
		SilenceFramesThreshold: 10,
		MaxBufferBytes:         10 << 20,
		SilenceThreshold:       1500 * time.Millisecond,
		SilencePollInterval:    250 * time.Millisecond,
		AutoEndTurn:            true,
		DefaultFormat:          "webm",
		Timeouts: Timeouts{
			Transcribe: 30 * time.Second,
			Respond:    30 * time.Second,
			Synthesize: 30 * time.Second,
		},
		IdleSessionTTL: 10 * time.Minute,
		MailboxSize:    128,
		OutboundQueue:  64,
	}
}

func ConfigFromSettings(v config.VoiceConfig) VSSConfig {
	return VSSConfig{
		SampleRate:             v.SampleRate,
		FrameMs:                v.FrameMs,
		SpeechFramesThreshold:  v.SpeechFramesThreshold,
		SilenceFramesThreshold: v.SilenceFramesThreshold,
		MaxBufferBytes:         v.MaxBufferBytes,
		SilenceThreshold:       v.SilenceThreshold,
		SilencePollInterval:    v.SilencePollInterval,
		AutoEndTurn:            v.AutoEndTurn,
		DefaultFormat:          v.DefaultFormat,
		Timeouts: Timeouts{
			Transcribe: v.TranscribeTimeout,
			Respond:    v.RespondTimeout,
			Synthesize: v.SynthesizeTimeout,
		},
		IdleSessionTTL: v.IdleSessionTTL,
		MailboxSize:    v.MailboxSize,
		OutboundQueue:  v.OutboundQueue,
	}
}
