package prompts

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/liv-ai/liv-backend/pkg/memory"
	"github.com/liv-ai/liv-backend/pkg/profile"
)

//go:embed templates/nudge_system_prompt.tmpl
var nudgeSystemPromptTemplate string

type NudgeSystemPrompt struct {
	Tone          string
	Profile       profile.UserProfile
	MemorySummary string
	Topic         string
}

// NudgeTrigger is the fixed utterance that stands in for user input on the
// nudge path, and what gets recorded as the user side of the exchange.
const NudgeTrigger = "Generate today's nudge."

func BuildNudgeSystemPrompt(data NudgeSystemPrompt) (string, error) {
	if data.Tone == "" {
		data.Tone = profile.DefaultTone
	}
	if data.MemorySummary == "" {
		data.MemorySummary = memory.NoMemorySentinel
	}

	tmpl, err := template.New("nudge_system_prompt").Parse(nudgeSystemPromptTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
