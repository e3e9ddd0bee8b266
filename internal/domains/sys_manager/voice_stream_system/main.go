package voicestreamsystem

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
	"github.com/xpanvictor/xarvis-voice/pkg/io/stt/vad"
)

// VSS is the process-wide voice stream system: it owns the session registry
// and the collaborators every session shares.
type VSS struct {
	config   VSSConfig
	detector vad.Detector
	invoker  *Invoker
	logger   *Logger.Logger

	mutex    sync.RWMutex
	sessions map[string]*ConversationSession
	closed   bool
	opened   uint64
}

// NewVSS creates a new Voice Streaming System instance
func NewVSS(cfg VSSConfig, detector vad.Detector, invoker *Invoker, logger *Logger.Logger) (*VSS, error) {
	if _, err := vad.FrameBytes(cfg.SampleRate, cfg.FrameMs); err != nil {
		return nil, fmt.Errorf("voice config: %w", err)
	}
	if cfg.MaxBufferBytes <= 0 {
		return nil, fmt.Errorf("voice config: max buffer bytes must be positive")
	}
	if cfg.SpeechFramesThreshold <= 0 {
		cfg.SpeechFramesThreshold = 1
	}
	if cfg.SilenceFramesThreshold <= 0 {
		cfg.SilenceFramesThreshold = 1
	}
	return &VSS{
		config:   cfg,
		detector: detector,
		invoker:  invoker,
		logger:   logger,
		sessions: make(map[string]*ConversationSession),
	}, nil
}

func (v *VSS) Config() VSSConfig { return v.config }

// Open registers a new session. An empty id gets a generated one; an id that
// is already live is rejected.
func (v *VSS) Open(id string, kind SessionKind, emitter Emitter) (*ConversationSession, error) {
	if id == "" {
		id = uuid.NewString()
	}

	v.mutex.Lock()
	defer v.mutex.Unlock()
	if v.closed {
		return nil, ErrSessionClosed
	}
	if _, ok := v.sessions[id]; ok {
		return nil, ErrSessionExists
	}

	s, err := newSession(id, kind, v.config, v.detector, v.invoker, emitter, v.logger)
	if err != nil {
		return nil, err
	}
	v.sessions[id] = s
	v.opened++
	v.logger.Infof("voice session %s opened (%d active)", id, len(v.sessions))
	return s, nil
}

// Get returns a live session.
func (v *VSS) Get(id string) (*ConversationSession, error) {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	s, ok := v.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetOrOpen returns the session with id, creating it on first contact.
func (v *VSS) GetOrOpen(id string, kind SessionKind, emitter func() Emitter) (*ConversationSession, bool, error) {
	if s, err := v.Get(id); err == nil {
		return s, false, nil
	}
	s, err := v.Open(id, kind, emitter())
	if err == ErrSessionExists {
		// lost a race with another first request
		s, err = v.Get(id)
		return s, false, err
	}
	return s, err == nil, err
}

// End closes a session and removes it from the registry. Ending an unknown
// session is not an error.
func (v *VSS) End(id string) {
	v.mutex.Lock()
	s, ok := v.sessions[id]
	delete(v.sessions, id)
	n := len(v.sessions)
	v.mutex.Unlock()

	if ok {
		s.Close()
		v.logger.Infof("voice session %s ended (%d active)", id, n)
	}
}

// SweepIdle ends request sessions untouched for longer than ttl. Stream
// sessions belong to their connection and are never swept. Sessions with a
// turn in flight are left alone.
func (v *VSS) SweepIdle(now time.Time, ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	v.mutex.RLock()
	var stale []string
	for id, s := range v.sessions {
		if s.Kind() == RequestSession && now.Sub(s.IdleSince()) > ttl && !s.busy() {
			stale = append(stale, id)
		}
	}
	v.mutex.RUnlock()

	for _, id := range stale {
		v.End(id)
	}
	return len(stale)
}

// Shutdown ends every session and refuses new ones.
func (v *VSS) Shutdown() {
	v.mutex.Lock()
	v.closed = true
	sessions := v.sessions
	v.sessions = make(map[string]*ConversationSession)
	v.mutex.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	v.logger.Infof("voice stream system shut down, %d sessions closed", len(sessions))
}

func (v *VSS) Len() int {
	v.mutex.RLock()
	defer v.mutex.RUnlock()
	return len(v.sessions)
}

// Stats is a snapshot of registry activity.
type Stats struct {
	ActiveSessions  int           `json:"active_sessions"`
	StreamSessions  int           `json:"stream_sessions"`
	RequestSessions int           `json:"request_sessions"`
	ByState         map[State]int `json:"by_state"`
	TotalOpened     uint64        `json:"total_opened"`
	PipelineInUse   int64         `json:"pipeline_in_use"`
	PipelineSize    int64         `json:"pipeline_size"`
}

// GetStats returns statistics about the voice stream system
func (v *VSS) GetStats() Stats {
	v.mutex.RLock()
	sessions := make([]*ConversationSession, 0, len(v.sessions))
	for _, s := range v.sessions {
		sessions = append(sessions, s)
	}
	st := Stats{ActiveSessions: len(sessions), TotalOpened: v.opened, ByState: map[State]int{}}
	v.mutex.RUnlock()

	for _, s := range sessions {
		if s.Kind() == StreamSession {
			st.StreamSessions++
		} else {
			st.RequestSessions++
		}
		st.ByState[s.Status().State]++
	}
	if v.invoker != nil && v.invoker.pool != nil {
		st.PipelineInUse = v.invoker.pool.InFlight()
		st.PipelineSize = v.invoker.pool.Size()
	}
	return st
}
