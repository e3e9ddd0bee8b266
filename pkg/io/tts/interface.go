package tts

import "context"

// Speech is synthesized audio plus the container it is encoded in.
type Speech struct {
	Audio  []byte
	Format string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Speech, error)
}

// SynthesizerFunc adapts a function to Synthesizer.
type SynthesizerFunc func(ctx context.Context, text string) (Speech, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, text string) (Speech, error) {
	return f(ctx, text)
}
