// Package nudge produces the daily topic-rotated wellness dare: one themed,
// memory-aware challenge per user per day. Nudges are not conversation turns;
// they bypass chat history entirely and only land in long-term memory.
package nudge

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go"

	"github.com/liv-ai/liv-backend/pkg/ai"
	"github.com/liv-ai/liv-backend/pkg/memory"
	"github.com/liv-ai/liv-backend/pkg/profile"
	"github.com/liv-ai/liv-backend/pkg/prompts"
)

// Topics maps weekday index (0=Sunday) to the day's nudge theme, cycling
// weekly.
var Topics = [7]string{
	"Sleep & recovery",
	"Movement",
	"Nourishment",
	"Mental fitness",
	"Anti-aging drugs & supplements",
	"Social connection",
	"Toxin defense",
}

// FallbackTopic covers out-of-range weekday input. Unreachable with a sane
// clock, but the selector stays total either way.
const FallbackTopic = "Wellness"

// SelectTopic returns the topic for a weekday index. Total and deterministic.
func SelectTopic(weekday int) string {
	if weekday < 0 || weekday >= len(Topics) {
		return FallbackTopic
	}
	return Topics[weekday]
}

// Nudge is one generated daily challenge. The text is raw model output; the
// nudge path carries no structured-output contract.
type Nudge struct {
	Reply string `json:"reply"`
	Topic string `json:"topic"`
}

type Service struct {
	logger      *log.Logger
	completions ai.Completion
	memory      memory.Storage
	profiles    *profile.Registry
	nc          *nats.Conn
	model       string
	memoryLimit int
	timeout     time.Duration
	now         func() time.Time
}

type Config struct {
	Logger      *log.Logger
	Completions ai.Completion
	Memory      memory.Storage
	Profiles    *profile.Registry
	Nats        *nats.Conn // optional, nil disables publishing
	Model       string
	MemoryLimit int
	Timeout     time.Duration
	Now         func() time.Time // optional, defaults to time.Now
}

func NewService(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logger:      cfg.Logger,
		completions: cfg.Completions,
		memory:      cfg.Memory,
		profiles:    cfg.Profiles,
		nc:          cfg.Nats,
		model:       cfg.Model,
		memoryLimit: cfg.MemoryLimit,
		timeout:     cfg.Timeout,
		now:         now,
	}
}

// Generate produces today's nudge for userID and records the exchange into
// long-term memory under the daily_nudge category. The topic itself is the
// memory search key since there is no user utterance on this path.
func (s *Service) Generate(ctx context.Context, userID string) (*Nudge, error) {
	userProfile, err := s.profiles.Lookup(userID)
	if err != nil {
		return nil, err
	}

	topic := SelectTopic(int(s.now().Weekday()))

	snippets, err := s.memory.Search(ctx, topic, userID, s.memoryLimit)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := prompts.BuildNudgeSystemPrompt(prompts.NudgeSystemPrompt{
		Tone:          userProfile.Tone,
		Profile:       userProfile,
		MemorySummary: memory.Summarize(snippets),
		Topic:         topic,
	})
	if err != nil {
		return nil, err
	}

	completionCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := s.completions.Completions(completionCtx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(systemPrompt),
		openai.UserMessage(prompts.NudgeTrigger),
	}, s.model)
	if err != nil {
		return nil, err
	}

	reply := strings.TrimSpace(completion.Content)

	err = s.memory.Add(ctx,
		[]memory.Message{
			{Role: "user", Content: prompts.NudgeTrigger},
			{Role: "assistant", Content: reply},
		},
		userID,
		map[string]string{
			"timestamp": s.now().Format(time.RFC3339),
			"category":  "daily_nudge",
			"topic":     topic,
		},
	)
	if err != nil {
		return nil, err
	}

	nudge := &Nudge{Reply: reply, Topic: topic}
	s.publish(userID, nudge)
	return nudge, nil
}

func (s *Service) publish(userID string, nudge *Nudge) {
	if s.nc == nil {
		return
	}
	payload, err := json.Marshal(nudge)
	if err != nil {
		s.logger.Error("Failed to marshal nudge event", "error", err)
		return
	}
	if err := s.nc.Publish("nudge."+userID, payload); err != nil {
		s.logger.Error("Failed to publish nudge event", "user_id", userID, "error", err)
	}
}
