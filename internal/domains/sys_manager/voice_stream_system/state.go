package voicestreamsystem

import (
	"github.com/looplab/fsm"
)

type State string

const (
	StateIdle        State = "IDLE"
	StateListening   State = "LISTENING"
	StateProcessing  State = "PROCESSING"
	StateSpeaking    State = "SPEAKING"
	StateInterrupted State = "INTERRUPTED"
)

// transition names
const (
	evSpeech    = "speech"    // IDLE -> LISTENING
	evEndTurn   = "end_turn"  // LISTENING -> PROCESSING
	evDiscard   = "discard"   // LISTENING/PROCESSING -> IDLE
	evRetry     = "retry"     // PROCESSING -> LISTENING
	evRespond   = "respond"   // PROCESSING -> SPEAKING
	evBotDone   = "bot_done"  // SPEAKING -> IDLE
	evInterrupt = "interrupt" // PROCESSING/SPEAKING -> INTERRUPTED
	evResume    = "resume"    // INTERRUPTED -> LISTENING
)

func newTurnFSM(callbacks fsm.Callbacks) *fsm.FSM {
	return fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: evSpeech, Src: []string{string(StateIdle)}, Dst: string(StateListening)},
			{Name: evEndTurn, Src: []string{string(StateListening)}, Dst: string(StateProcessing)},
			{Name: evDiscard, Src: []string{string(StateListening), string(StateProcessing)}, Dst: string(StateIdle)},
			{Name: evRetry, Src: []string{string(StateProcessing)}, Dst: string(StateListening)},
			{Name: evRespond, Src: []string{string(StateProcessing)}, Dst: string(StateSpeaking)},
			{Name: evBotDone, Src: []string{string(StateSpeaking)}, Dst: string(StateIdle)},
			{Name: evInterrupt, Src: []string{string(StateProcessing), string(StateSpeaking)}, Dst: string(StateInterrupted)},
			{Name: evResume, Src: []string{string(StateInterrupted)}, Dst: string(StateListening)},
		},
		callbacks,
	)
}
