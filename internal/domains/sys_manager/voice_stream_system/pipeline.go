package voicestreamsystem

import (
	"context"
	"strings"
	"time"

	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt"
	"github.com/xpanvictor/xarvis-voice/pkg/io/tts"
)

// TurnResult is the outcome of one transcribe -> respond -> synthesize run.
type TurnResult struct {
	Transcript   string
	Reply        assistant.Reply
	Speech       *tts.Speech // nil when synthesis failed or is not configured
	Empty        bool        // nothing intelligible was said
	SynthesisErr error
}

// Invoker runs the external collaborators of a turn on the shared pool.
type Invoker struct {
	transcriber stt.Transcriber
	responder   assistant.Responder
	synthesizer tts.Synthesizer
	pool        *Pool
	timeouts    Timeouts
	logger      *Logger.Logger
}

func NewInvoker(transcriber stt.Transcriber, responder assistant.Responder, synthesizer tts.Synthesizer, pool *Pool, timeouts Timeouts, logger *Logger.Logger) *Invoker {
	return &Invoker{
		transcriber: transcriber,
		responder:   responder,
		synthesizer: synthesizer,
		pool:        pool,
		timeouts:    timeouts,
		logger:      logger,
	}
}

// Run executes the pipeline in strict sequence. onTranscript is called once a
// non-empty transcript is known, before the reply is generated. Transcription
// and response failures come back as *TurnError; synthesis failures degrade
// the result to text only.
func (inv *Invoker) Run(ctx context.Context, sessionID string, audio []byte, format string, onTranscript func(string)) (TurnResult, error) {
	var res TurnResult
	start := time.Now()

	var text string
	err := inv.call(ctx, inv.timeouts.Transcribe, func(ctx context.Context) error {
		var err error
		text, err = inv.transcriber.Transcribe(ctx, audio, format)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, newTurnError(KindTranscription, "pipeline.transcribe", "transcription failed", err)
	}

	res.Transcript = strings.TrimSpace(text)
	if res.Transcript == "" {
		res.Empty = true
		return res, nil
	}
	if onTranscript != nil {
		onTranscript(res.Transcript)
	}

	transcript := res.Transcript
	var reply assistant.Reply
	err = inv.call(ctx, inv.timeouts.Respond, func(ctx context.Context) error {
		var err error
		reply, err = inv.responder.GenerateReply(ctx, transcript, sessionID)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, newTurnError(KindResponse, "pipeline.respond", "response generation failed", err)
	}
	res.Reply = reply

	if inv.synthesizer != nil {
		var speech tts.Speech
		err = inv.call(ctx, inv.timeouts.Synthesize, func(ctx context.Context) error {
			var err error
			speech, err = inv.synthesizer.Synthesize(ctx, reply.Text)
			return err
		})
		switch {
		case ctx.Err() != nil:
			return res, ctx.Err()
		case err != nil:
			res.SynthesisErr = newTurnError(KindSynthesis, "pipeline.synthesize", "speech synthesis failed", err)
			inv.logger.Warnf("session %s: %v; replying with text only", sessionID, res.SynthesisErr)
		case len(speech.Audio) > 0:
			res.Speech = &speech
		}
	}

	inv.logger.Debugf("session %s: turn done in %s (audio=%t)", sessionID, time.Since(start), res.Speech != nil)
	return res, nil
}

func (inv *Invoker) call(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return inv.pool.Do(ctx, fn)
}
