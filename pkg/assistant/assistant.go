package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

// DefaultConfidence is reported when the model answers in plain text instead
// of the structured reply format.
const DefaultConfidence = 0.5

const replyFormat = `Reply with a single JSON object and nothing else:
{"text": "<what you say, short and speakable>", "confidence": <0..1>, "mood": {"tone": "<one word>"}}`

// ConversationalResponder composes persona, recent history and the new
// utterance into one completion and records the exchange afterwards.
type ConversationalResponder struct {
	model        ChatModel
	history      HistoryStore
	persona      string
	historyTurns int
	logger       *Logger.Logger
}

func NewConversationalResponder(model ChatModel, history HistoryStore, persona string, historyTurns int, logger *Logger.Logger) *ConversationalResponder {
	return &ConversationalResponder{
		model:        model,
		history:      history,
		persona:      persona,
		historyTurns: historyTurns,
		logger:       logger,
	}
}

// GenerateReply implements Responder.
func (r *ConversationalResponder) GenerateReply(ctx context.Context, text, sessionID string) (Reply, error) {
	msgs := make([]Message, 0, 2+r.historyTurns*2)
	msgs = append(msgs, Message{Role: SYSTEM, Content: strings.TrimSpace(r.persona) + "\n\n" + replyFormat})

	if r.history != nil && r.historyTurns > 0 {
		past, err := r.history.Recent(ctx, sessionID, r.historyTurns*2)
		if err != nil {
			// context is best effort; answer without it
			r.logger.Warnf("history lookup failed for session %s: %v", sessionID, err)
		} else {
			msgs = append(msgs, past...)
		}
	}
	msgs = append(msgs, Message{Role: USER, Content: text, CreatedAt: time.Now()})

	raw, err := r.model.Complete(ctx, msgs)
	if err != nil {
		return Reply{}, fmt.Errorf("%s: %w", r.model.Name(), err)
	}
	reply := ParseReply(raw)
	if strings.TrimSpace(reply.Text) == "" {
		return Reply{}, fmt.Errorf("%s: empty reply", r.model.Name())
	}

	if r.history != nil {
		now := time.Now()
		err := r.history.Append(ctx, sessionID,
			Message{Role: USER, Content: text, CreatedAt: now},
			Message{Role: ASSISTANT, Content: reply.Text, CreatedAt: now},
		)
		if err != nil {
			r.logger.Warnf("history append failed for session %s: %v", sessionID, err)
		}
	}
	return reply, nil
}

// ParseReply reads the structured reply format. Anything that is not a JSON
// object with a text field is taken verbatim.
func ParseReply(raw string) Reply {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var r Reply
	if strings.HasPrefix(s, "{") && json.Unmarshal([]byte(s), &r) == nil && strings.TrimSpace(r.Text) != "" {
		if r.Confidence <= 0 || r.Confidence > 1 {
			r.Confidence = DefaultConfidence
		}
		if r.Mood == nil {
			r.Mood = map[string]any{}
		}
		return r
	}
	return Reply{Text: strings.TrimSpace(raw), Confidence: DefaultConfidence, Mood: map[string]any{}}
}
