package prompts

import (
	"strings"

	"github.com/xpanvictor/xarvis-voice/pkg/assistant"
)

type PromptDefinition struct {
	Content string
	Version float32
}

type SYS_PROMPT struct {
	Intent         string
	CurrentVersion float32
	Items          map[float32]PromptDefinition // version-content
}

func (sp *SYS_PROMPT) GetVersion(version float32) (PromptDefinition, bool) {
	i, ok := sp.Items[version]
	return i, ok
}

func (sp *SYS_PROMPT) GetCurrentPrompt() PromptDefinition {
	return sp.Items[sp.CurrentVersion]
}

// Text is the prompt with the source indentation removed.
func (pd PromptDefinition) Text() string {
	lines := strings.Split(strings.TrimSpace(pd.Content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, " ")
}

func (pd PromptDefinition) ToMessage() assistant.Message {
	return assistant.Message{
		Role:    assistant.SYSTEM,
		Content: pd.Text(),
	}
}

// Persona picks the configured persona, falling back to the current default.
func Persona(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return DEFAULT_PROMPT.GetCurrentPrompt().Text()
}
