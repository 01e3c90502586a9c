package ai

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/pkg/errors"
)

var errNoChoices = errors.New("model returned no completion choices")

// Temperature used for every completion. The coach should be warm but not
// wildly creative.
const defaultTemperature = 0.4

type Service struct {
	client *openai.Client
	logger *log.Logger
}

var _ Completion = (*Service)(nil)

func NewOpenAIService(logger *log.Logger, apiKey string, baseURL string) *Service {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Service{
		client: &client,
		logger: logger,
	}
}

func (s *Service) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error) {
	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       model,
		Temperature: param.Opt[float64]{Value: defaultTemperature},
	})
	if err != nil {
		return openai.ChatCompletionMessage{}, &InvocationError{Err: err}
	}

	if len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, &InvocationError{Err: errNoChoices}
	}

	return completion.Choices[0].Message, nil
}
