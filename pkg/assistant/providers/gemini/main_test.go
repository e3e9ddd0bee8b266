package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
)

func TestToContents(t *testing.T) {
	system, history, last := toContents([]assistant.Message{
		{Role: assistant.SYSTEM, Content: "be brief"},
		{Role: assistant.USER, Content: "hi"},
		{Role: assistant.ASSISTANT, Content: "hello"},
		{Role: assistant.USER, Content: "what time is it"},
	})

	require.NotNil(t, system)
	assert.Equal(t, genai.Text("be brief"), system.Parts[0])
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "model", history[1].Role)
	assert.Equal(t, "what time is it", last)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("a"), genai.Text("b")}},
	}}}
	assert.Equal(t, "ab", responseText(resp))
}
