package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis-voice/pkg/Logger"
)

type scriptedModel struct {
	answer string
	err    error
	seen   [][]Message
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Complete(_ context.Context, msgs []Message) (string, error) {
	m.seen = append(m.seen, msgs)
	return m.answer, m.err
}

func TestParseReply(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Reply
	}{
		{
			name: "structured",
			raw:  `{"text":"Sure.","confidence":0.9,"mood":{"tone":"warm"}}`,
			want: Reply{Text: "Sure.", Confidence: 0.9, Mood: map[string]any{"tone": "warm"}},
		},
		{
			name: "fenced",
			raw:  "```json\n{\"text\":\"Ok\",\"confidence\":0.7}\n```",
			want: Reply{Text: "Ok", Confidence: 0.7, Mood: map[string]any{}},
		},
		{
			name: "plain text",
			raw:  "  just words ",
			want: Reply{Text: "just words", Confidence: DefaultConfidence, Mood: map[string]any{}},
		},
		{
			name: "out of range confidence",
			raw:  `{"text":"x","confidence":7}`,
			want: Reply{Text: "x", Confidence: DefaultConfidence, Mood: map[string]any{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseReply(tt.raw))
		})
	}
}

func TestConversationalResponderUsesHistory(t *testing.T) {
	ctx := context.Background()
	history := NewMemoryHistory(10)
	require.NoError(t, history.Append(ctx, "s1",
		Message{Role: USER, Content: "earlier question"},
		Message{Role: ASSISTANT, Content: "earlier answer"},
	))
	model := &scriptedModel{answer: `{"text":"Hello!","confidence":0.8,"mood":{"tone":"happy"}}`}
	r := NewConversationalResponder(model, history, "You are a twin.", 3, Logger.NewNop())

	reply, err := r.GenerateReply(ctx, "hi", "s1")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply.Text)
	assert.Equal(t, 0.8, reply.Confidence)

	sent := model.seen[0]
	require.Len(t, sent, 4)
	assert.Equal(t, SYSTEM, sent[0].Role)
	assert.Contains(t, sent[0].Content, "You are a twin.")
	assert.Equal(t, "earlier question", sent[1].Content)
	assert.Equal(t, "hi", sent[3].Content)

	recent, _ := history.Recent(ctx, "s1", 0)
	require.Len(t, recent, 4)
	assert.Equal(t, "Hello!", recent[3].Content)

	other, _ := history.Recent(ctx, "s2", 0)
	assert.Empty(t, other)
}

func TestConversationalResponderFailure(t *testing.T) {
	ctx := context.Background()
	history := NewMemoryHistory(10)
	model := &scriptedModel{err: errors.New("rate limited")}
	r := NewConversationalResponder(model, history, "", 2, Logger.NewNop())

	_, err := r.GenerateReply(ctx, "hi", "s1")
	assert.ErrorContains(t, err, "rate limited")
	recent, _ := history.Recent(ctx, "s1", 0)
	assert.Empty(t, recent, "failed turns are not recorded")

	model.err, model.answer = nil, "   "
	_, err = r.GenerateReply(ctx, "hi", "s1")
	assert.ErrorContains(t, err, "empty reply")
}

func TestMemoryHistoryBounded(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(3)
	for _, c := range []string{"a", "b", "c", "d"} {
		require.NoError(t, h.Append(ctx, "s", Message{Role: USER, Content: c}))
	}
	msgs, _ := h.Recent(ctx, "s", 0)
	require.Len(t, msgs, 3)
	assert.Equal(t, "b", msgs[0].Content)

	msgs, _ = h.Recent(ctx, "s", 2)
	assert.Equal(t, "c", msgs[0].Content)

	h.Forget("s")
	msgs, _ = h.Recent(ctx, "s", 0)
	assert.Empty(t, msgs)
}

func TestOpenAIModelComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var body struct {
			Model    string           `json:"model"`
			Messages []map[string]any `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Len(t, body.Messages, 2)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"pong"}}]}`))
	}))
	defer srv.Close()

	m := NewOpenAIModel("gpt-4o-mini", option.WithAPIKey("test"), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	out, err := m.Complete(context.Background(), []Message{
		{Role: SYSTEM, Content: "s"},
		{Role: USER, Content: "ping"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pong", out)
	assert.Equal(t, "openai/gpt-4o-mini", m.Name())
}
