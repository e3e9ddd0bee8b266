package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/presbrey/ollamafarm"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
)

// OllamaProvider is an assistant.ChatModel served by the first online host of
// an ollama farm.
type OllamaProvider struct {
	ollamafarm *ollamafarm.Farm
	model      string
}

var _ assistant.ChatModel = (*OllamaProvider)(nil)

func New(urls []string, model string, logger *Logger.Logger) *OllamaProvider {
	farm := ollamafarm.New()

	for _, u := range urls {
		if err := farm.RegisterURL(u, nil); err != nil {
			logger.Warnf("ollama host %s not registered: %v", u, err)
		}
	}

	return &OllamaProvider{
		ollamafarm: farm,
		model:      model,
	}
}

func (o *OllamaProvider) Name() string { return "ollama/" + o.model }

// Complete implements assistant.ChatModel.
func (o *OllamaProvider) Complete(ctx context.Context, msgs []assistant.Message) (string, error) {
	ollama := o.ollamafarm.First(&ollamafarm.Where{Offline: false})
	if ollama == nil {
		return "", fmt.Errorf("no ollama host online for model %s", o.model)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: toMessages(msgs),
		Stream:   &stream,
	}

	var sb strings.Builder
	err := ollama.Client().Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return sb.String(), nil
}

func toMessages(msgs []assistant.Message) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, api.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
