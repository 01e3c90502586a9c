package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
)

// Completion is the one capability the orchestrator needs from a generative
// model: messages in, one assistant message out. Non-deterministic, slow, and
// with no contract on output structure.
type Completion interface {
	Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error)
}

// InvocationError wraps any failure of the model call, including timeouts.
// Fatal to the current request; retry policy is a caller decision.
type InvocationError struct {
	Err error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("model invocation failed: %v", e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}
