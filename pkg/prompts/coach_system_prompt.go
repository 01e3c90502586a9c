package prompts

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/liv-ai/liv-backend/pkg/memory"
	"github.com/liv-ai/liv-backend/pkg/profile"
)

//go:embed templates/coach_system_prompt.tmpl
var coachSystemPromptTemplate string

type CoachSystemPrompt struct {
	Tone          string
	Profile       profile.UserProfile
	MemorySummary string
}

// BuildCoachSystemPrompt assembles the chat system instruction. Pure and
// deterministic: same inputs, same prompt. The tone falls back to the default
// and an empty memory summary becomes the no-memory sentinel, so the rendered
// prompt never has a blank section.
func BuildCoachSystemPrompt(data CoachSystemPrompt) (string, error) {
	if data.Tone == "" {
		data.Tone = profile.DefaultTone
	}
	if data.MemorySummary == "" {
		data.MemorySummary = memory.NoMemorySentinel
	}

	systemPromptTmpl := template.Must(template.New("coach_system_prompt").Parse(coachSystemPromptTemplate))
	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
