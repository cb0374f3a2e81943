package jobs

import (
	"context"
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
	"go.uber.org/zap"
)

// ExpiryJobName is the name of the document expiry sweep
const ExpiryJobName = "document_expiry"

// DefaultExpiryTimeout bounds a single sweep
const DefaultExpiryTimeout = 2 * time.Minute

// DocumentExpirer marks documents past their validity date as expired.
type DocumentExpirer interface {
	MarkExpired(ctx context.Context, actor domain.Actor) (int64, error)
}

// ExpiryJob runs the expiry sweep as the system actor
type ExpiryJob struct {
	expirer DocumentExpirer
	logger  *zap.Logger
	timeout time.Duration
}

func NewExpiryJob(expirer DocumentExpirer, logger *zap.Logger, timeout time.Duration) *ExpiryJob {
	if timeout <= 0 {
		timeout = DefaultExpiryTimeout
	}
	return &ExpiryJob{
		expirer: expirer,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one sweep. Failures are logged; the next scheduled run retries.
func (j *ExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	count, err := j.expirer.MarkExpired(ctx, domain.SystemActor)
	if err != nil {
		j.logger.Error("document expiry sweep failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("document expiry sweep completed",
		zap.Int64("expired", count),
		zap.Duration("duration", time.Since(start)))
}

// RegisterExpiryJob schedules the sweep on the scheduler
func RegisterExpiryJob(s *Scheduler, expirer DocumentExpirer, cronExpr string, timeout time.Duration, logger *zap.Logger) error {
	job := NewExpiryJob(expirer, logger, timeout)
	return s.AddJob(ExpiryJobName, cronExpr, job.Run)
}
