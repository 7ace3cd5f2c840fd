package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"examdesk/internal/repository"
)

// Scheduler runs the periodic housekeeping: expired sessions are purged
// nightly and resit registrations close once their deadline passes. Each run
// is recorded on a redis stream for auditing.
type Scheduler struct {
	cron     *cron.Cron
	sessions *repository.SessionRepository
	resits   *repository.ResitRepository
	events   *redis.Client
	spec     string
	log      zerolog.Logger
}

func NewScheduler(
	sessions *repository.SessionRepository,
	resits *repository.ResitRepository,
	events *redis.Client,
	resitCloseSpec string,
	log zerolog.Logger,
) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		sessions: sessions,
		resits:   resits,
		events:   events,
		spec:     resitCloseSpec,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.purgeSessions); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.spec, s.closeResitRegistrations); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs, up to a bound.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("session purge failed")
		return
	}
	s.log.Info().Int64("removed", removed).Msg("expired sessions purged")
	s.publishEvent(ctx, "sessions_purged", removed)
}

func (s *Scheduler) closeResitRegistrations() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closed, err := s.resits.CloseRegistrationsPastDeadline(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("resit close failed")
		return
	}
	if closed > 0 {
		s.log.Info().Int64("closed", closed).Msg("resit registrations closed")
	}
	s.publishEvent(ctx, "resit_registrations_closed", closed)
}

func (s *Scheduler) publishEvent(ctx context.Context, kind string, count int64) {
	if s.events == nil {
		return
	}
	if _, err := s.events.XAdd(ctx, &redis.XAddArgs{
		Stream: "examdesk:jobs",
		Values: map[string]any{
			"type":  kind,
			"count": count,
		},
	}).Result(); err != nil {
		s.log.Warn().Err(err).Str("type", kind).Msg("job event publish failed")
	}
}
