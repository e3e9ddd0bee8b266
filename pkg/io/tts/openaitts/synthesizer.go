package openaitts

import (
	"context"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/xpanvictor/xarvis-voice/pkg/io/tts"
)

// Synthesizer renders replies with the hosted OpenAI speech endpoint.
type Synthesizer struct {
	client openai.Client
	model  string
	voice  string
	format string
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

func New(model, voice, format string, opts ...option.RequestOption) *Synthesizer {
	if model == "" {
		model = string(openai.SpeechModelTTS1)
	}
	if voice == "" {
		voice = string(openai.AudioSpeechNewParamsVoiceAlloy)
	}
	if format == "" {
		format = string(openai.AudioSpeechNewParamsResponseFormatMP3)
	}
	return &Synthesizer{
		client: openai.NewClient(opts...),
		model:  model,
		voice:  voice,
		format: format,
	}
}

// Synthesize implements tts.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (tts.Speech, error) {
	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormat(s.format),
	})
	if err != nil {
		return tts.Speech{}, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return tts.Speech{}, fmt.Errorf("openai speech body: %w", err)
	}
	return tts.Speech{Audio: audio, Format: s.format}, nil
}

// Voice identifies the configured voice; used in cache keys.
func (s *Synthesizer) Voice() string {
	return s.model + "/" + s.voice + "/" + s.format
}
