// Package jobs holds the recurring background tasks.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/yourusername/invoicely/models"
	"github.com/yourusername/invoicely/repository"
)

// OverdueJob reclassifies stale PENDING invoices as OVERDUE on a fixed
// schedule. A failed run is logged and skipped; the scheduler keeps
// ticking. The bulk update is idempotent, so re-running is always safe.
type OverdueJob struct {
	invoices  *repository.InvoiceRepository
	log       *zap.Logger
	afterDays int
	now       func() time.Time
}

func NewOverdueJob(invoices *repository.InvoiceRepository, log *zap.Logger, afterDays int) *OverdueJob {
	return &OverdueJob{
		invoices:  invoices,
		log:       log,
		afterDays: afterDays,
		now:       time.Now,
	}
}

// Run performs one reclassification pass and returns the number of
// invoices transitioned.
func (j *OverdueJob) Run() (int64, error) {
	cutoff := j.now().AddDate(0, 0, -j.afterDays)

	updated, err := j.invoices.BulkUpdateStatus(models.StatusPending, cutoff, models.StatusOverdue)
	if err != nil {
		return 0, err
	}

	j.log.Info("marked invoices as overdue",
		zap.Int64("count", updated),
		zap.Time("cutoff", cutoff))
	return updated, nil
}

// Schedule registers the job on the given cron scheduler. Errors never
// propagate out of the tick.
func (j *OverdueJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if _, err := j.Run(); err != nil {
			j.log.Error("overdue reclassification failed", zap.Error(err))
		}
	})
}

// StartScheduler wires all recurring jobs onto a new cron scheduler and
// starts it. The caller owns the returned scheduler's lifecycle.
func StartScheduler(job *OverdueJob, spec string, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := job.Schedule(c, spec); err != nil {
		return nil, err
	}
	c.Start()
	log.Info("started cron scheduler", zap.String("overdue_spec", spec))
	return c, nil
}
