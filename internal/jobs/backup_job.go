// File: internal/jobs/backup_job.go
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"travel_agent_backend/internal/backup"
	"travel_agent_backend/internal/config"
)

const backupJobTimeout = 30 * time.Minute

// BackupJob takes scheduled backups and prunes old ones.
type BackupJob struct {
	backups       backup.Service
	logger        *zap.Logger
	schedule      string
	retention     int
	cronScheduler *cron.Cron
}

// NewBackupJob creates a new BackupJob from BACKUP_JOB_SCHEDULE and BACKUP_RETENTION.
func NewBackupJob(backups backup.Service, logger *zap.Logger, cfg *config.Config) *BackupJob {
	cronLog := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	return &BackupJob{
		backups:       backups,
		logger:        logger.Named("BackupJob"),
		schedule:      cfg.BackupJobSchedule,
		retention:     cfg.BackupRetention,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job. An empty schedule disables it.
func (j *BackupJob) SetupAndStart() error {
	if j.schedule == "" {
		j.logger.Warn("Backup job schedule not defined (BACKUP_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(j.schedule, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule backup job", zap.String("spec", j.schedule), zap.Error(err))
		return err
	}

	j.logger.Info("Backup job scheduled", zap.String("spec", j.schedule), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *BackupJob) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), backupJobTimeout)
	defer cancel()
	_ = j.Run(ctx)
}

// Run takes one backup and applies the retention policy.
func (j *BackupJob) Run(ctx context.Context) error {
	j.logger.Info("Starting backup job run...")
	info, err := j.backups.Create(ctx)
	if err != nil {
		j.logger.Error("Backup job run failed", zap.Error(err))
		return err
	}

	deleted, err := j.backups.Prune(ctx, j.retention)
	if err != nil {
		j.logger.Error("Backup pruning failed", zap.Error(err))
		return err
	}
	j.logger.Info("Backup job run completed", zap.String("backup", info.Name), zap.Int("pruned", len(deleted)))
	return nil
}

// Stop gracefully stops the cron scheduler, waiting for a running backup to finish.
func (j *BackupJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping backup job scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Backup job scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Backup job scheduler stop timed out.")
	}
}
