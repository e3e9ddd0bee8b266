package voicestreamsystem

import (
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"
)

// Event types for VSS communication
type EventType string

const (
	EventConnected   EventType = "connected"
	EventStatus      EventType = "status"
	EventTranscript  EventType = "transcript"
	EventResponse    EventType = "response"
	EventInterrupted EventType = "interrupted"
	EventError       EventType = "error"
	EventEmpty       EventType = "empty"
)

// Status is a point-in-time view of a session.
type Status struct {
	SessionID      string `json:"session_id"`
	State          State  `json:"state"`
	IsBotSpeaking  bool   `json:"is_bot_speaking"`
	IsUserSpeaking bool   `json:"is_user_speaking"`
	Interrupted    bool   `json:"interrupted"`
	BufferBytes    int    `json:"buffer_bytes"`
}

// Event is one outbound message of a session. It marshals to the wire
// envelope of its type.
type Event struct {
	Type       EventType
	SessionID  string
	TurnID     uint64
	Status     Status
	Text       string
	Audio      []byte
	Format     string
	Confidence float64
	Mood       map[string]any
	Message    string
	Kind       ErrorKind
	At         time.Time
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventConnected:
		return json.Marshal(struct {
			Type      EventType `json:"type"`
			SessionID string    `json:"session_id"`
			Status    Status    `json:"status"`
		}{e.Type, e.SessionID, e.Status})
	case EventStatus:
		return json.Marshal(struct {
			Type           EventType `json:"type"`
			IsBotSpeaking  bool      `json:"is_bot_speaking"`
			IsUserSpeaking bool      `json:"is_user_speaking"`
			State          State     `json:"state"`
			BufferBytes    int       `json:"buffer_bytes"`
		}{e.Type, e.Status.IsBotSpeaking, e.Status.IsUserSpeaking, e.Status.State, e.Status.BufferBytes})
	case EventTranscript:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			Text string    `json:"text"`
		}{e.Type, e.Text})
	case EventResponse:
		var audio *string
		if len(e.Audio) > 0 {
			s := base64.StdEncoding.EncodeToString(e.Audio)
			audio = &s
		}
		mood := e.Mood
		if mood == nil {
			mood = map[string]any{}
		}
		return json.Marshal(struct {
			Type        EventType      `json:"type"`
			Text        string         `json:"text"`
			AudioBase64 *string        `json:"audio_base64"`
			Format      string         `json:"format"`
			Confidence  float64        `json:"confidence"`
			Mood        map[string]any `json:"mood"`
		}{e.Type, e.Text, audio, e.Format, e.Confidence, mood})
	case EventError:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
			Kind    ErrorKind `json:"kind,omitempty"`
		}{e.Type, e.Message, e.Kind})
	default:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Message string    `json:"message"`
		}{e.Type, e.Message})
	}
}

// Emitter delivers a session's events to its caller. Emit is called with the
// session lock held, in the order events happen.
type Emitter interface {
	Emit(Event)
}

type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }

// Mailbox collects events for callers without a persistent connection. It
// keeps the newest max events.
type Mailbox struct {
	mu      sync.Mutex
	max     int
	events  []Event
	dropped int
}

func NewMailbox(max int) *Mailbox {
	if max <= 0 {
		max = 128
	}
	return &Mailbox{max: max}
}

func (m *Mailbox) Emit(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	if over := len(m.events) - m.max; over > 0 {
		m.events = append([]Event(nil), m.events[over:]...)
		m.dropped += over
	}
}

// Drain returns and clears the pending events.
func (m *Mailbox) Drain() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.events
	m.events = nil
	if out == nil {
		out = []Event{}
	}
	return out
}

func (m *Mailbox) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}
