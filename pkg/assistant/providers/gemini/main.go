package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"google.golang.org/api/option"
)

// GeminiProvider is an assistant.ChatModel on top of the Gemini API.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

var _ assistant.ChatModel = (*GeminiProvider)(nil)

// New creates a new GeminiProvider instance.
func New(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash-latest"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

func (gp *GeminiProvider) Name() string { return "gemini/" + gp.modelName }

// Complete implements assistant.ChatModel.
func (gp *GeminiProvider) Complete(ctx context.Context, msgs []assistant.Message) (string, error) {
	system, history, last := toContents(msgs)
	if last == "" {
		return "", fmt.Errorf("gemini: no user message")
	}

	model := gp.client.GenerativeModel(gp.modelName)
	model.SystemInstruction = system

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("gemini send: %w", err)
	}
	return responseText(resp), nil
}

func (gp *GeminiProvider) Close() error {
	return gp.client.Close()
}

// toContents splits a flat transcript into Gemini's system instruction,
// prior chat history and the final user turn.
func toContents(msgs []assistant.Message) (*genai.Content, []*genai.Content, string) {
	var (
		systemParts []string
		history     []*genai.Content
		last        string
	)
	for i, m := range msgs {
		switch m.Role {
		case assistant.SYSTEM:
			systemParts = append(systemParts, m.Content)
		case assistant.ASSISTANT:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			if i == len(msgs)-1 {
				last = m.Content
				continue
			}
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}

	var system *genai.Content
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(systemParts, "\n\n"))}}
	}
	return system, history, last
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}
