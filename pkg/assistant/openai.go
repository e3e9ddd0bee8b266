package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIModel struct {
	client openai.Client
	model  string
}

// NewOpenAIModel returns a ChatModel backed by the OpenAI chat completions API.
func NewOpenAIModel(model string, opts ...option.RequestOption) ChatModel {
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	return openAIModel{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o openAIModel) Name() string { return "openai/" + o.model }

// Complete implements ChatModel.
func (o openAIModel) Complete(ctx context.Context, msgs []Message) (string, error) {
	convertedMsgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		convertedMsgs = append(convertedMsgs, convertToOpenaiMsg(msg))
	}
	chatCompletion, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: convertedMsgs,
			Model:    openai.ChatModel(o.model),
		},
	)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	if len(chatCompletion.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return chatCompletion.Choices[0].Message.Content, nil
}

func convertToOpenaiMsg(msg Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case ASSISTANT:
		return openai.AssistantMessage(msg.Content)
	case SYSTEM:
		return openai.SystemMessage(msg.Content)
	}
	return openai.UserMessage(msg.Content)
}
