package voicestreamsystem

import "time"

// watchdog polls a LISTENING session for silence. At most one runs per
// session; it is started on entering LISTENING and stopped on leaving it.
type watchdog struct {
	stop chan struct{}
}

// syncWatchdog starts or stops the watchdog to match the current state.
// Must hold mu.
func (s *ConversationSession) syncWatchdog() {
	listening := s.state() == StateListening && !s.closed && s.cfg.AutoEndTurn
	switch {
	case listening && s.watchdog == nil:
		w := &watchdog{stop: make(chan struct{})}
		s.watchdog = w
		go s.watch(w)
	case !listening && s.watchdog != nil:
		s.stopWatchdog()
	}
}

// Must hold mu.
func (s *ConversationSession) stopWatchdog() {
	if s.watchdog != nil {
		close(s.watchdog.stop)
		s.watchdog = nil
	}
}

func (s *ConversationSession) watch(w *watchdog) {
	interval := s.cfg.SilencePollInterval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			if s.checkSilence(w) {
				return
			}
		}
	}
}

// checkSilence ends the turn when the caller has been quiet long enough. It
// returns true once w is no longer the session's watchdog.
//
// For PCM the quiet period runs from the last frame classified as confirmed
// speech, and a turn whose buffer never held confirmed speech is left for an
// explicit end_turn: sub-threshold blips and background noise do not start
// the pipeline on their own. Opaque container audio cannot be classified, so
// every accepted chunk restarts the quiet period instead.
func (s *ConversationSession) checkSilence(w *watchdog) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchdog != w || s.closed {
		return true
	}
	if s.state() != StateListening || s.buffer.Len() == 0 {
		return false
	}
	if s.turnFormat == pcmClass && !s.heardSpeech {
		return false
	}
	if s.now().Sub(s.lastAudioAt) < s.cfg.SilenceThreshold {
		return false
	}

	s.logger.Debugf("silence for %s, ending turn", s.now().Sub(s.lastAudioAt))
	s.endTurnLocked("silence")
	return s.watchdog != w
}
