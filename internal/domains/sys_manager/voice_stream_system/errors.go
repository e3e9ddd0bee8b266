package voicestreamsystem

import (
	"errors"
	"fmt"

	audioring "github.com/xpanvictor/xarvis-voice/pkg/io/stt/audioRing"
)

type ErrorKind string

const (
	KindDecode        ErrorKind = "decode"
	KindOverflow      ErrorKind = "buffer_overflow"
	KindTranscription ErrorKind = "transcription"
	KindResponse      ErrorKind = "response_generation"
	KindSynthesis     ErrorKind = "synthesis"
	KindConnection    ErrorKind = "connection"
	KindBusy          ErrorKind = "busy"
	KindProtocol      ErrorKind = "protocol"
)

var (
	ErrBufferOverflow  = audioring.ErrOverflow
	ErrSessionClosed   = errors.New("session closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// TurnError is the structured failure surfaced to the caller as an error event.
type TurnError struct {
	Kind    ErrorKind
	Op      string // e.g. "pipeline.transcribe"
	Message string // safe for clients
	Err     error
}

func (e *TurnError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *TurnError) Unwrap() error { return e.Err }

func newTurnError(kind ErrorKind, op, msg string, err error) *TurnError {
	return &TurnError{Kind: kind, Op: op, Message: msg, Err: err}
}

// KindOf reports the taxonomy kind of err, or "" when err is not a TurnError.
func KindOf(err error) ErrorKind {
	var te *TurnError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// PublicMessage is the text put in an error event; wrapped internals stay in logs.
func PublicMessage(err error) string {
	var te *TurnError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return err.Error()
}

// ProtocolError wraps a client message the engine cannot act on.
func ProtocolError(msg string, err error) error {
	return newTurnError(KindProtocol, "protocol", msg, err)
}
