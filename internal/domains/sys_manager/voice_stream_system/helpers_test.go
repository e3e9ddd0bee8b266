package voicestreamsystem

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
	"github.com/xpanvictor/xarvis-voice/pkg/io/tts"
)

// 8 kHz, 10 ms frames: 160 bytes per frame. The first byte of a frame marks
// it as speech for markerVAD.
const testFrameBytes = 160

func testConfig() VSSConfig {
	cfg := DefaultVSSConfig()
	cfg.SampleRate = 8000
	cfg.FrameMs = 10
	cfg.MaxBufferBytes = 64 * 1024
	cfg.AutoEndTurn = false
	cfg.SilenceThreshold = 80 * time.Millisecond
	cfg.SilencePollInterval = 10 * time.Millisecond
	return cfg
}

func frame(speech bool) []byte {
	f := make([]byte, testFrameBytes)
	if speech {
		f[0] = 1
	}
	return f
}

func frames(pattern ...bool) []byte {
	var b []byte
	for _, p := range pattern {
		b = append(b, frame(p)...)
	}
	return b
}

func pcm(b []byte) Chunk { return Chunk{Data: b, Format: pcmClass, PCM: true} }

func webm(b string) Chunk { return Chunk{Data: []byte(b), Format: "webm"} }

type markerVAD struct {
	calls atomic.Int64
	hook  func()
}

func (m *markerVAD) IsSpeech(f []byte, _ int) bool {
	m.calls.Add(1)
	if m.hook != nil {
		m.hook()
	}
	return len(f) > 0 && f[0] == 1
}

// fakeTranscriber fails for audio containing "fail", returns "" for audio
// containing "mute", and blocks on gate when set.
type fakeTranscriber struct {
	calls atomic.Int64
	gate  chan struct{}
	text  string
	ctxs  chan context.Context
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	f.calls.Add(1)
	if f.ctxs != nil {
		f.ctxs <- ctx
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	switch {
	case bytes.Contains(audio, []byte("fail")):
		return "", errors.New("stt backend unavailable")
	case bytes.Contains(audio, []byte("mute")):
		return "   ", nil
	}
	if f.text != "" {
		return f.text, nil
	}
	return "hello assistant", nil
}

type fakeResponder struct {
	calls atomic.Int64
	err   error
}

func (f *fakeResponder) GenerateReply(_ context.Context, text, sessionID string) (assistant.Reply, error) {
	f.calls.Add(1)
	if f.err != nil {
		return assistant.Reply{}, f.err
	}
	return assistant.Reply{Text: "you said: " + text, Confidence: 0.9, Mood: map[string]any{"tone": "calm"}}, nil
}

type fakeSynth struct {
	calls atomic.Int64
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) (tts.Speech, error) {
	f.calls.Add(1)
	if f.err != nil {
		return tts.Speech{}, f.err
	}
	return tts.Speech{Audio: []byte("mp3:" + text), Format: "mp3"}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) types() []EventType {
	var out []EventType
	for _, e := range r.all() {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) count(t EventType) int {
	n := 0
	for _, e := range r.all() {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *recorder) last(t EventType) (Event, bool) {
	ev := r.all()
	for i := len(ev) - 1; i >= 0; i-- {
		if ev[i].Type == t {
			return ev[i], true
		}
	}
	return Event{}, false
}

func (r *recorder) waitFor(t *testing.T, typ EventType) Event {
	t.Helper()
	require.Eventually(t, func() bool { return r.count(typ) > 0 }, 2*time.Second, 5*time.Millisecond, "waiting for %s event", typ)
	e, _ := r.last(typ)
	return e
}

type harness struct {
	vss  *VSS
	vad  *markerVAD
	stt  *fakeTranscriber
	llm  *fakeResponder
	tts  *fakeSynth
	pool *Pool
}

func newHarness(t *testing.T, cfg VSSConfig) *harness {
	t.Helper()
	h := &harness{
		vad:  &markerVAD{},
		stt:  &fakeTranscriber{},
		llm:  &fakeResponder{},
		tts:  &fakeSynth{},
		pool: NewPool(4),
	}
	inv := NewInvoker(h.stt, h.llm, h.tts, h.pool, cfg.Timeouts, Logger.NewNop())
	v, err := NewVSS(cfg, h.vad, inv, Logger.NewNop())
	require.NoError(t, err)
	h.vss = v
	t.Cleanup(v.Shutdown)
	return h
}

func (h *harness) open(t *testing.T, id string) (*ConversationSession, *recorder) {
	t.Helper()
	rec := &recorder{}
	s, err := h.vss.Open(id, StreamSession, rec)
	require.NoError(t, err)
	return s, rec
}

// speak drives a session through one full turn into SPEAKING.
func speak(t *testing.T, s *ConversationSession, rec *recorder) {
	t.Helper()
	_, err := s.ReceiveChunk(pcm(frames(true, true, true, false)))
	require.NoError(t, err)
	require.Equal(t, OutcomeProcessing, s.EndTurn())
	rec.waitFor(t, EventResponse)
	require.Eventually(t, func() bool { return s.Status().State == StateSpeaking }, time.Second, 5*time.Millisecond)
}
