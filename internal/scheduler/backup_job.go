package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Backuper creates and uploads a database backup, returning its key
type Backuper interface {
	CreateAndUploadBackup(ctx context.Context) (string, error)
}

// BackupDatabasesJob uploads a backup archive of the databases
type BackupDatabasesJob struct {
	backup  Backuper
	timeout time.Duration
	log     zerolog.Logger
}

// NewBackupDatabasesJob creates a new BackupDatabasesJob
func NewBackupDatabasesJob(backup Backuper, log zerolog.Logger) *BackupDatabasesJob {
	return &BackupDatabasesJob{
		backup:  backup,
		timeout: 10 * time.Minute,
		log:     log.With().Str("job", "backup_databases").Logger(),
	}
}

// Name returns the job name
func (j *BackupDatabasesJob) Name() string {
	return "backup_databases"
}

// Run executes the backup job
func (j *BackupDatabasesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	key, err := j.backup.CreateAndUploadBackup(ctx)
	if err != nil {
		return err
	}
	j.log.Info().Str("key", key).Msg("Backup uploaded")
	return nil
}
