package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"spclub/api/internal/config"
	"spclub/api/internal/repository"
)

// Scheduler runs background housekeeping. Stale sessions are already
// pruned lazily at login time; the nightly sweep only clears rows whose
// tokens can no longer be valid, so the table does not grow unbounded.
type Scheduler struct {
	cron     *cron.Cron
	sessions *repository.SessionRepository
	cfg      config.SecurityConfig
	log      zerolog.Logger
}

func NewScheduler(sessions *repository.SessionRepository, cfg config.SecurityConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.purgeExpiredSessions); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) purgeExpiredSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.cfg.JWTTTL)
	removed, err := s.sessions.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("session purge failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired sessions purged")
	}
}
