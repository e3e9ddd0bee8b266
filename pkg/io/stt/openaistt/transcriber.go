package openaistt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt"
)

// Transcriber runs utterances through the hosted OpenAI transcription API.
type Transcriber struct {
	client   openai.Client
	model    string
	language string
}

var _ stt.Transcriber = (*Transcriber)(nil)

func New(model, language string, opts ...option.RequestOption) *Transcriber {
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &Transcriber{
		client:   openai.NewClient(opts...),
		model:    model,
		language: language,
	}
}

// Transcribe implements stt.Transcriber.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	name, contentType := stt.FileName(format)
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio), name, contentType),
		Model: openai.AudioModel(t.model),
	}
	if t.language != "" {
		params.Language = openai.String(t.language)
	}
	res, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return res.Text, nil
}
