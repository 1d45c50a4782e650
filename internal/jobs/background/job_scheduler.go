package background

import (
	"context"
	"time"

	"vetdesk/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

// JobScheduler runs periodic maintenance: audit-log retention pruning
// and expired-token cleanup.
type JobScheduler struct {
	scheduler      gocron.Scheduler
	auditSvc       services.AuditLogsService
	authSvc        services.AuthService
	auditRetention time.Duration
}

func NewJobScheduler(auditSvc services.AuditLogsService, authSvc services.AuthService, auditRetention time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:      scheduler,
		auditSvc:       auditSvc,
		authSvc:        authSvc,
		auditRetention: auditRetention,
	}
	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) registerJobs() error {
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(js.pruneAuditLogs),
		gocron.WithName("audit-log-retention"),
	); err != nil {
		return err
	}

	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(time.Hour),
		gocron.NewTask(js.cleanupTokens),
		gocron.WithName("token-cleanup"),
	); err != nil {
		return err
	}

	return nil
}

func (js *JobScheduler) pruneAuditLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := js.auditSvc.PruneOlderThan(ctx, js.auditRetention); err != nil {
		log.Error().Err(err).Msg("audit log retention job failed")
	}
}

func (js *JobScheduler) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := js.authSvc.CleanupExpiredTokens(ctx); err != nil {
		log.Error().Err(err).Msg("token cleanup job failed")
	}
}

func (js *JobScheduler) Start() {
	log.Info().Msg("starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	return js.scheduler.Shutdown()
}
