package app

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/option"
	"github.com/xpanvictor/xarvis-voice/internal/config"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant/providers/gemini"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant/providers/ollama"
)

// LLMFactory creates the chat model behind the responder
type LLMFactory struct {
	config *config.Settings
	logger *Logger.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Settings, logger *Logger.Logger) *LLMFactory {
	return &LLMFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateModel builds the configured backend. The returned closer releases
// provider resources and is never nil.
func (f *LLMFactory) CreateModel(ctx context.Context) (assistant.ChatModel, func() error, error) {
	noop := func() error { return nil }
	llm := f.config.LLM

	switch llm.Backend {
	case "", "openai":
		model := assistant.NewOpenAIModel(llm.Model, openAIOptions(f.config.OpenAI)...)
		f.logger.Infof("LLM backend: %s", model.Name())
		return model, noop, nil

	case "gemini":
		if llm.GeminiAPIKey == "" {
			return nil, noop, fmt.Errorf("llm.gemini_api_key is required for the gemini backend")
		}
		provider, err := gemini.New(ctx, llm.GeminiAPIKey, llm.Model)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		f.logger.Infof("LLM backend: %s", provider.Name())
		return provider, provider.Close, nil

	case "ollama":
		if len(llm.OllamaHosts) == 0 {
			return nil, noop, fmt.Errorf("llm.ollama_hosts must list at least one host")
		}
		urls := make([]string, 0, len(llm.OllamaHosts))
		for _, h := range llm.OllamaHosts {
			urls = append(urls, h.Url)
		}
		provider := ollama.New(urls, llm.Model, f.logger)
		f.logger.Infof("LLM backend: %s across %d host(s)", provider.Name(), len(urls))
		return provider, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown llm.backend %q", llm.Backend)
	}
}

func openAIOptions(cfg config.OpenAIConfig) []option.RequestOption {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return opts
}
