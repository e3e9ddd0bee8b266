package voicestreamsystem

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	audioring "github.com/xpanvictor/xarvis-voice/pkg/io/stt/audioRing"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt/vad"
	"github.com/xpanvictor/xarvis-voice/pkg/io/wav"
)

// SessionKind tells how a session is attached to its caller.
type SessionKind int

const (
	// StreamSession lives exactly as long as its persistent connection.
	StreamSession SessionKind = iota
	// RequestSession is driven by individual requests and expires when idle.
	RequestSession
)

// Outcome is the immediate result of a session operation.
type Outcome string

const (
	OutcomeBuffered    Outcome = "buffered"
	OutcomeOverflow    Outcome = "overflow"
	OutcomeRejected    Outcome = "rejected"
	OutcomeInterrupted Outcome = "interrupted"
	OutcomeProcessing  Outcome = "processing"
	OutcomeEmpty       Outcome = "empty"
	OutcomeBusy        Outcome = "busy"
	OutcomeNoop        Outcome = "noop"
	OutcomeIdle        Outcome = "idle"
	OutcomeResponded   Outcome = "responded"
	OutcomeFailed      Outcome = "failed"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeClosed      Outcome = "closed"
)

type pendingTurn struct {
	id      uint64
	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
}

// ConversationSession is the per-caller turn-taking state machine. Every
// mutation happens under mu: the receive loop, the silence watchdog and turn
// completion all serialize on it.
type ConversationSession struct {
	id         string
	kind       SessionKind
	cfg        VSSConfig
	detector   vad.Detector
	invoker    *Invoker
	emitter    Emitter
	logger     *Logger.Logger
	frameBytes int
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	// vadMu orders PCM classification across chunks and guards carry. It
	// is taken before mu, never after.
	vadMu sync.Mutex
	carry []byte // partial VAD frame from the previous chunk

	mu            sync.Mutex
	machine       *fsm.FSM
	buffer        audioring.AudioBuffer
	turnFormat    string // format class of buffered audio, "" when empty
	dropCarry     bool   // carry belongs to discarded audio
	speechRun     int
	silenceRun    int
	userSpeaking  bool
	heardSpeech   bool // VAD confirmed speech in the buffered audio
	lastAudioAt   time.Time
	lastActivity  time.Time
	isBotSpeaking bool
	interrupted   bool
	pending       *pendingTurn
	turnSeq       uint64
	watchdog      *watchdog
	closed        bool
	createdAt     time.Time
}

func newSession(id string, kind SessionKind, cfg VSSConfig, detector vad.Detector, invoker *Invoker, emitter Emitter, logger *Logger.Logger) (*ConversationSession, error) {
	frameBytes, err := vad.FrameBytes(cfg.SampleRate, cfg.FrameMs)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &ConversationSession{
		id:         id,
		kind:       kind,
		cfg:        cfg,
		detector:   detector,
		invoker:    invoker,
		emitter:    emitter,
		logger:     logger.With("session_id", id),
		frameBytes: frameBytes,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		buffer:     audioring.NewSized(cfg.MaxBufferBytes, cfg.SampleRate*2), // one second of PCM, grown on demand
	}
	s.machine = newTurnFSM(fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			s.logger.Debugf("turn state %s -> %s (%s)", e.Src, e.Dst, e.Event)
		},
	})
	s.createdAt = s.now()
	s.lastActivity = s.createdAt
	return s, nil
}

func (s *ConversationSession) ID() string { return s.id }

func (s *ConversationSession) Kind() SessionKind { return s.kind }

// Emitter returns the sink the session was opened with.
func (s *ConversationSession) Emitter() Emitter { return s.emitter }

func (s *ConversationSession) state() State {
	return State(s.machine.Current())
}

// fire applies a transition and keeps the watchdog tied to LISTENING.
func (s *ConversationSession) fire(event string) {
	err := s.machine.Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err != nil && !errors.As(err, &noTransition) {
		s.logger.Errorf("transition %s from %s rejected: %v", event, s.state(), err)
	}
	s.syncWatchdog()
}

func (s *ConversationSession) emit(e Event) {
	if s.closed || s.emitter == nil {
		return
	}
	e.SessionID = s.id
	if e.At.IsZero() {
		e.At = s.now()
	}
	s.emitter.Emit(e)
}

func (s *ConversationSession) emitError(err error) {
	s.emit(Event{Type: EventError, Message: PublicMessage(err), Kind: KindOf(err)})
}

func (s *ConversationSession) resetHysteresis() {
	s.speechRun, s.silenceRun = 0, 0
	s.userSpeaking = false
	s.dropCarry = true
}

// clearBuffer empties the buffer and drops its storage.
func (s *ConversationSession) clearBuffer() {
	s.buffer.Release()
	s.turnFormat = ""
	s.heardSpeech = false
	s.dropCarry = true
}

// ReceiveAudio decodes an inbound audio_base64 payload and feeds it to the
// session. Decode failures are reported as an error event and returned.
func (s *ConversationSession) ReceiveAudio(payload, format string) (Outcome, error) {
	chunk, err := DecodeChunk(payload, format, s.cfg.DefaultFormat, s.cfg.SampleRate)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return OutcomeClosed, ErrSessionClosed
		}
		s.lastActivity = s.now()
		s.emitError(err)
		return OutcomeRejected, err
	}
	return s.ReceiveChunk(chunk)
}

// ReceiveChunk appends a decoded chunk and runs VAD over its frames. Barge-in
// happens inline, on the frame that crosses the speech threshold. Frames are
// classified before mu is taken, so a slow detector does not hold up
// interrupts, status requests or turn completion.
func (s *ConversationSession) ReceiveChunk(c Chunk) (Outcome, error) {
	var (
		verdicts []bool
		carry    []byte
	)
	if c.PCM {
		s.vadMu.Lock()
		defer s.vadMu.Unlock()

		s.mu.Lock()
		closed := s.closed
		if s.dropCarry {
			s.carry, s.dropCarry = nil, false
		}
		s.mu.Unlock()
		if closed {
			return OutcomeClosed, ErrSessionClosed
		}
		verdicts, carry = s.classifyFrames(c.Data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return OutcomeClosed, ErrSessionClosed
	}

	now := s.now()
	s.lastActivity = now

	if s.state() == StateIdle {
		s.resetHysteresis()
		s.lastAudioAt = now
		s.fire(evSpeech)
	}

	if s.buffer.Len() > 0 && s.turnFormat != "" && s.turnFormat != c.class() {
		err := newTurnError(KindDecode, "receive", "audio format changed mid-turn from "+s.turnFormat+" to "+c.class(), nil)
		s.emitError(err)
		return OutcomeRejected, err
	}

	if err := s.buffer.Append(c.Data); err != nil {
		s.clearBuffer()
		s.logger.Warnf("audio buffer overflow (cap %d bytes), buffer reset", s.cfg.MaxBufferBytes)
		terr := newTurnError(KindOverflow, "receive", "audio buffer overflow; buffered audio discarded", err)
		s.emitError(terr)
		return OutcomeOverflow, terr
	}
	if s.turnFormat == "" {
		s.turnFormat = c.class()
	}

	if !c.PCM {
		// not classifiable; arrival itself is the activity signal
		s.lastAudioAt = now
		return OutcomeBuffered, nil
	}
	s.carry, s.dropCarry = carry, false
	if s.applyVerdicts(verdicts, now) {
		return OutcomeInterrupted, nil
	}
	return OutcomeBuffered, nil
}

// EndTurn hands the buffered utterance to the pipeline.
func (s *ConversationSession) EndTurn() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return OutcomeClosed
	}
	s.lastActivity = s.now()
	return s.endTurnLocked("end_turn")
}

// EndTurnAndWait ends the turn and blocks until its pipeline run finishes or
// ctx is done. It returns the final outcome of the turn.
func (s *ConversationSession) EndTurnAndWait(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return OutcomeClosed, ErrSessionClosed
	}
	s.lastActivity = s.now()
	outcome := s.endTurnLocked("end_turn")
	pt := s.pending
	s.mu.Unlock()

	if outcome != OutcomeProcessing || pt == nil {
		return outcome, nil
	}
	select {
	case <-pt.done:
		return pt.outcome, nil
	case <-ctx.Done():
		return OutcomeProcessing, ctx.Err()
	}
}

func (s *ConversationSession) endTurnLocked(trigger string) Outcome {
	switch s.state() {
	case StateIdle:
		s.emit(Event{Type: EventEmpty, Message: "nothing to process"})
		return OutcomeEmpty

	case StateListening:
		if s.buffer.Len() == 0 {
			s.fire(evDiscard)
			s.emit(Event{Type: EventEmpty, Message: "nothing to process"})
			return OutcomeEmpty
		}
		audio, format := s.buffer.Take(), s.turnFormat
		if format == pcmClass {
			audio, format = wav.Encode(audio, s.cfg.SampleRate), "wav"
		}
		s.clearBuffer()
		s.fire(evEndTurn)
		s.startTurn(audio, format)
		s.logger.Debugf("turn handed off by %s (%d bytes %s)", trigger, len(audio), format)
		return OutcomeProcessing

	default:
		if s.buffer.Len() == 0 {
			s.emit(Event{Type: EventEmpty, Message: "nothing to process"})
			return OutcomeEmpty
		}
		s.emitError(newTurnError(KindBusy, "end_turn", "a turn is already in progress", nil))
		return OutcomeBusy
	}
}

func (s *ConversationSession) startTurn(audio []byte, format string) {
	s.turnSeq++
	ctx, cancel := context.WithCancel(s.ctx)
	pt := &pendingTurn{id: s.turnSeq, cancel: cancel, done: make(chan struct{})}
	s.pending = pt
	go s.runTurn(ctx, pt, audio, format)
}

// current reports whether pt may still deliver events. Must hold mu.
func (s *ConversationSession) current(pt *pendingTurn) bool {
	return !s.closed && s.pending == pt && s.state() == StateProcessing
}

func (s *ConversationSession) runTurn(ctx context.Context, pt *pendingTurn, audio []byte, format string) {
	defer close(pt.done)
	defer pt.cancel()

	res, err := s.invoker.Run(ctx, s.id, audio, format, func(text string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.current(pt) {
			s.emit(Event{Type: EventTranscript, TurnID: pt.id, Text: text})
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(pt) {
		// cancelled, interrupted or closed; late results are dropped
		return
	}
	s.pending = nil

	switch {
	case err != nil:
		s.logger.Warnf("turn %d failed: %v", pt.id, err)
		s.fire(evRetry)
		s.emitError(err)
		pt.outcome = OutcomeFailed

	case res.Empty:
		if s.buffer.Len() > 0 {
			s.fire(evRetry)
		} else {
			s.fire(evDiscard)
		}
		s.emit(Event{Type: EventEmpty, TurnID: pt.id, Message: "no speech recognized"})
		pt.outcome = OutcomeEmpty

	default:
		s.fire(evRespond)
		s.isBotSpeaking = true
		s.interrupted = false
		ev := Event{
			Type:       EventResponse,
			TurnID:     pt.id,
			Text:       res.Reply.Text,
			Confidence: res.Reply.Confidence,
			Mood:       res.Reply.Mood,
		}
		if res.Speech != nil {
			ev.Audio, ev.Format = res.Speech.Audio, res.Speech.Format
		}
		s.emit(ev)
		pt.outcome = OutcomeResponded
	}
}

// Interrupt forces barge-in regardless of VAD. It is a no-op when nothing is
// being processed or played.
func (s *ConversationSession) Interrupt() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return OutcomeClosed
	}
	s.lastActivity = s.now()

	switch s.state() {
	case StateSpeaking, StateProcessing:
		s.bargeInLocked("manual")
		return OutcomeInterrupted
	default:
		return OutcomeNoop
	}
}

// BotSpeechComplete marks the end of the caller's playback of the last reply.
func (s *ConversationSession) BotSpeechComplete() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return OutcomeClosed
	}
	s.lastActivity = s.now()

	if s.state() != StateSpeaking {
		return OutcomeNoop
	}
	s.isBotSpeaking = false
	// audio captured during playback that never crossed the speech threshold
	s.clearBuffer()
	s.resetHysteresis()
	s.fire(evBotDone)
	return OutcomeIdle
}

// Status returns the session's current status.
func (s *ConversationSession) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// RequestStatus answers a status request with a status event.
func (s *ConversationSession) RequestStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.now()
	st := s.statusLocked()
	s.emit(Event{Type: EventStatus, Status: st})
	return st
}

func (s *ConversationSession) statusLocked() Status {
	return Status{
		SessionID:      s.id,
		State:          s.state(),
		IsBotSpeaking:  s.isBotSpeaking,
		IsUserSpeaking: s.userSpeaking,
		Interrupted:    s.interrupted,
		BufferBytes:    s.buffer.Len(),
	}
}

// Connected emits the greeting event of a new connection.
func (s *ConversationSession) Connected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit(Event{Type: EventConnected, Status: s.statusLocked()})
}

// ReportError sends a protocol-level error to the caller.
func (s *ConversationSession) ReportError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emitError(err)
}

// Close ends the session: the pending turn is cancelled, the watchdog stopped
// and the buffer released. No event is emitted afterwards.
func (s *ConversationSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopWatchdog()
	if s.pending != nil {
		s.pending.outcome = OutcomeCancelled
		s.pending.cancel()
		s.pending = nil
	}
	s.buffer.Release()
	s.dropCarry = true
	s.cancel()
}

func (s *ConversationSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// IdleSince reports when the caller last touched the session.
func (s *ConversationSession) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// busy reports whether a turn is in flight or being played back.
func (s *ConversationSession) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state()
	return st == StateProcessing || st == StateSpeaking
}
