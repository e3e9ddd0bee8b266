package voicestreamsystem

import "time"

// classifyFrames runs VAD over PCM in fixed frames, prefixed by the partial
// frame left from the previous chunk. It returns one verdict per whole frame
// and the new trailing partial frame. Must hold vadMu, not mu: detectors may
// block on the network.
func (s *ConversationSession) classifyFrames(pcm []byte) ([]bool, []byte) {
	data := pcm
	if len(s.carry) > 0 {
		data = append(append(make([]byte, 0, len(s.carry)+len(pcm)), s.carry...), pcm...)
	}

	verdicts := make([]bool, 0, len(data)/s.frameBytes)
	off := 0
	for ; off+s.frameBytes <= len(data); off += s.frameBytes {
		verdicts = append(verdicts, s.detector.IsSpeech(data[off:off+s.frameBytes], s.cfg.SampleRate))
	}
	var rest []byte
	if off < len(data) {
		rest = append([]byte(nil), data[off:]...)
	}
	return verdicts, rest
}

// applyVerdicts feeds frame verdicts through hysteresis in order. It reports
// whether a barge-in happened. Must hold mu.
func (s *ConversationSession) applyVerdicts(verdicts []bool, now time.Time) bool {
	bargedIn := false
	for _, speech := range verdicts {
		if s.applyVerdict(speech, now) {
			bargedIn = true
		}
	}
	return bargedIn
}

// applyVerdict advances the hysteresis counters by one frame. Barge-in fires
// on the frame that crosses the speech threshold.
func (s *ConversationSession) applyVerdict(speech bool, now time.Time) bool {
	if speech {
		s.speechRun++
		s.silenceRun = 0
		if s.speechRun >= s.cfg.SpeechFramesThreshold {
			s.userSpeaking = true
			s.heardSpeech = true
		}
	} else {
		s.silenceRun++
		s.speechRun = 0
		if s.silenceRun >= s.cfg.SilenceFramesThreshold {
			s.userSpeaking = false
		}
	}

	if s.userSpeaking {
		s.lastAudioAt = now
	}

	if s.state() == StateSpeaking && s.isBotSpeaking && s.speechRun >= s.cfg.SpeechFramesThreshold {
		s.bargeInLocked("speech")
		return true
	}
	return false
}

// bargeInLocked stops the assistant's turn and goes back to listening. Audio
// already buffered, including the chunk that triggered it, is kept as the
// start of the next utterance. Must hold mu.
func (s *ConversationSession) bargeInLocked(reason string) {
	if s.pending != nil {
		s.pending.outcome = OutcomeCancelled
		s.pending.cancel()
		s.pending = nil
	}
	s.interrupted = true
	s.isBotSpeaking = false
	s.fire(evInterrupt)
	s.fire(evResume)
	s.lastAudioAt = s.now()
	s.logger.Infof("barge-in (%s)", reason)
	s.emit(Event{Type: EventInterrupted, Message: "user interrupted the assistant"})
}
