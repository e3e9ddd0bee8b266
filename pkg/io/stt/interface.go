package stt

import (
	"context"
	"mime"
	"strings"
)

// Transcriber turns one complete utterance into text. format names the
// container of audio (wav, webm, ogg, mp3, ...).
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// TranscriberFunc adapts a function to Transcriber.
type TranscriberFunc func(ctx context.Context, audio []byte, format string) (string, error)

func (f TranscriberFunc) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	return f(ctx, audio, format)
}

// FileName returns an upload name and content type for an audio format, the
// way speech services infer the decoder from the file extension.
func FileName(format string) (string, string) {
	ext := strings.ToLower(strings.TrimPrefix(format, "."))
	if ext == "" {
		ext = "wav"
	}
	ct := mime.TypeByExtension("." + ext)
	if ct == "" {
		ct = "audio/" + ext
	}
	return "audio." + ext, ct
}
