package app

import (
	"fmt"

	"github.com/go-redis/redis"
	"github.com/xpanvictor/xarvis-voice/internal/cache"
	"github.com/xpanvictor/xarvis-voice/internal/config"
	convoRepo "github.com/xpanvictor/xarvis-voice/internal/repository/conversation"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt/openaistt"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt/vad"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt/whisper"
	"github.com/xpanvictor/xarvis-voice/pkg/io/tts"
	"github.com/xpanvictor/xarvis-voice/pkg/io/tts/openaitts"
	"github.com/xpanvictor/xarvis-voice/pkg/io/tts/piper"
	"gorm.io/gorm"
)

const ttsCachePrefix = "xarvis:"

func newDetector(cfg *config.Settings, logger *Logger.Logger) (vad.Detector, error) {
	switch cfg.VAD.Backend {
	case "", "energy":
		return vad.NewEnergyVAD(cfg.Voice.MinEnergyThreshold), nil
	case "silero":
		vc := vad.DefaultVADConfig()
		vc.SampleRate = cfg.Voice.SampleRate
		vc.FrameMs = cfg.Voice.FrameMs
		vc.EnergyThreshold = cfg.Voice.MinEnergyThreshold
		return vad.NewSileroVADWithURL(vc, logger, cfg.VAD.SileroURL, cfg.VAD.SileroTimeout, cfg.VAD.Cooldown), nil
	default:
		return nil, fmt.Errorf("unknown vad.backend %q", cfg.VAD.Backend)
	}
}

func newTranscriber(cfg *config.Settings, logger *Logger.Logger) (stt.Transcriber, error) {
	switch cfg.STT.Backend {
	case "", "openai":
		return openaistt.New(cfg.STT.Model, cfg.STT.Language, openAIOptions(cfg.OpenAI)...), nil
	case "whisper":
		if cfg.STT.WhisperURL == "" {
			return nil, fmt.Errorf("stt.whisper_url is required for the whisper backend")
		}
		return whisper.NewWhisperClient(cfg.STT.WhisperURL, cfg.STT.Language, logger), nil
	default:
		return nil, fmt.Errorf("unknown stt.backend %q", cfg.STT.Backend)
	}
}

// newSynthesizer builds the TTS backend behind a phrase cache.
func newSynthesizer(cfg *config.Settings, rc *redis.Client) (tts.Synthesizer, error) {
	var backend tts.Synthesizer
	switch cfg.TTS.Backend {
	case "", "openai":
		backend = openaitts.New(cfg.TTS.Model, cfg.TTS.Voice, cfg.TTS.Format, openAIOptions(cfg.OpenAI)...)
	case "piper":
		if cfg.TTS.PiperURL == "" {
			return nil, fmt.Errorf("tts.piper_url is required for the piper backend")
		}
		backend = piper.New(cfg.TTS.PiperURL, cfg.TTS.Voice)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown tts.backend %q", cfg.TTS.Backend)
	}

	var store tts.Store
	switch cfg.Cache.Backend {
	case "", "memory":
		store = cache.NewMemory(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	case "redis":
		if rc == nil {
			return nil, fmt.Errorf("cache.backend redis needs a redis connection")
		}
		store = cache.NewRedis(rc, ttsCachePrefix, cfg.Cache.TTL)
	case "none":
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown cache.backend %q", cfg.Cache.Backend)
	}
	return tts.NewCached(backend, store, cfg.TTS.Backend+"/"+cfg.TTS.Voice), nil
}

// newHistory stores conversation history in the database when one is
// configured and in memory otherwise. The repo is returned for pruning.
func newHistory(cfg *config.Settings, db *gorm.DB) (assistant.HistoryStore, *convoRepo.GormHistoryRepo) {
	if db != nil {
		repo := convoRepo.NewGormHistoryRepo(db)
		return repo, repo
	}
	return assistant.NewMemoryHistory(cfg.LLM.HistoryTurns * 2), nil
}
