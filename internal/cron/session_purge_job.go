package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/quotedesk-backend/pkg/logger"
)

type sessionPurger interface {
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type SessionPurgeJobParams struct {
	Logger   *logger.Logger
	Sessions sessionPurger
	Grace    time.Duration
}

// NewSessionPurgeJob deletes sessions that expired more than Grace ago.
func NewSessionPurgeJob(params SessionPurgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	grace := params.Grace
	if grace < 0 {
		grace = 0
	}
	return &sessionPurgeJob{
		logg:     params.Logger,
		sessions: params.Sessions,
		grace:    grace,
		now:      time.Now,
	}, nil
}

type sessionPurgeJob struct {
	logg     *logger.Logger
	sessions sessionPurger
	grace    time.Duration
	now      func() time.Time
}

func (j *sessionPurgeJob) Name() string { return "session-purge" }

func (j *sessionPurgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	deleted, err := j.sessions.PurgeExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("session purge: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "expired sessions purged")
	return nil
}
