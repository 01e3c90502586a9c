package prompts

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed templates/chat_turn_message.tmpl
var chatTurnMessageTemplate string

type ChatTurnMessage struct {
	Input string
}

// BuildChatTurnMessage wraps the literal user message in the output-format
// directive. Format compliance must not depend on the system prompt alone, so
// the shape (field names, types, arity of followup_chat) is restated right
// next to the message the model is answering.
func BuildChatTurnMessage(data ChatTurnMessage) (string, error) {
	tmpl := template.Must(template.New("chat_turn_message").Parse(chatTurnMessageTemplate))
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
