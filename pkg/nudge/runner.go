package nudge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/liv-ai/liv-backend/pkg/profile"
)

// Runner pushes a nudge to every registered user on a cron schedule, so
// nudges arrive without anyone asking for them.
type Runner struct {
	cron     *cron.Cron
	service  *Service
	profiles *profile.Registry
	logger   *log.Logger
	timeout  time.Duration
}

func NewRunner(logger *log.Logger, service *Service, profiles *profile.Registry) *Runner {
	return &Runner{
		cron:     cron.New(),
		service:  service,
		profiles: profiles,
		logger:   logger,
		timeout:  2 * time.Minute,
	}
}

// Start registers the schedule and starts the cron loop.
func (r *Runner) Start(spec string) error {
	_, err := r.cron.AddFunc(spec, r.generateAll)
	if err != nil {
		return errors.Wrapf(err, "invalid nudge cron spec %q", spec)
	}
	r.cron.Start()
	r.logger.Info("Nudge runner started", "spec", spec)
	return nil
}

func (r *Runner) Stop() {
	r.cron.Stop()
}

func (r *Runner) generateAll() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	for _, userID := range r.profiles.IDs() {
		nudge, err := r.service.Generate(ctx, userID)
		if err != nil {
			r.logger.Error("Failed to generate scheduled nudge", "user_id", userID, "error", err)
			continue
		}
		r.logger.Info("Generated scheduled nudge", "user_id", userID, "topic", nudge.Topic)
	}
}
