package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
)

func TestToMessages(t *testing.T) {
	got := toMessages([]assistant.Message{
		{Role: assistant.SYSTEM, Content: "persona"},
		{Role: assistant.USER, Content: "hey"},
	})
	assert.Len(t, got, 2)
	assert.Equal(t, "system", got[0].Role)
	assert.Equal(t, "hey", got[1].Content)
}
