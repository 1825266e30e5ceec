// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"

	"github.com/dalemusser/rantrio/internal/app/system/formation"
	"go.uber.org/zap"
)

// TrioRunner runs one formation pass.
type TrioRunner interface {
	Run(ctx context.Context) (formation.Result, error)
}

// RemovalCounter receives the number of documents a cleanup removed.
type RemovalCounter interface {
	ContentRemoved(n int64)
}

// TrioFormationJob creates a job that forms the day's trios. Runs after the
// first successful one each day report already_formed and write nothing.
func TrioFormationJob(runner TrioRunner, schedule string, logger *zap.Logger) Job {
	return Job{
		Name:     "trio-formation",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			res, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("scheduled trio formation finished",
				zap.String("outcome", string(res.Outcome)),
				zap.String("date", res.Date),
				zap.Int("groups_created", res.GroupsCreated))
			return nil
		},
	}
}

// ContentCleanupJob creates a job that removes expired posts and replies
// between formation runs. counter may be nil.
func ContentCleanupJob(cleaner formation.ContentCleaner, counter RemovalCounter, schedule string, logger *zap.Logger) Job {
	return Job{
		Name:     "expired-content-cleanup",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			count, err := cleaner.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if counter != nil {
				counter.ContentRemoved(count)
			}
			if count > 0 {
				logger.Info("cleaned up expired content", zap.Int64("count", count))
			}
			return nil
		},
	}
}
