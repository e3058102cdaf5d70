package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"onlymemes/internal/media"
)

type Worker struct {
	ID       string
	Repo     *Repo
	Media    media.Deleter
	Interval time.Duration
	Log      logrus.FieldLogger
}

func (w *Worker) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = 800 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := w.Log.WithField("worker_id", w.ID)
	log.Info("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopped")
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(ctx, w.ID)
			if err != nil {
				log.WithError(err).Warn("claim failed")
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeMediaCleanup:
		w.handleMediaCleanup(ctx, job)
	default:
		_ = w.Repo.MarkFailed(ctx, job.ID, "unknown job type")
	}
}

func (w *Worker) handleMediaCleanup(ctx context.Context, job *Job) {
	var p mediaCleanupPayload
	if err := json.Unmarshal([]byte(job.Payload), &p); err != nil || p.PublicID == "" {
		_ = w.Repo.MarkFailed(ctx, job.ID, "bad payload")
		return
	}

	if err := w.Media.Delete(ctx, p.PublicID, media.Kind(p.Kind)); err != nil {
		w.Log.WithError(err).WithFields(logrus.Fields{
			"job_id":    job.ID,
			"public_id": p.PublicID,
		}).Warn("media cleanup failed")
		w.retry(ctx, job, err.Error())
		return
	}

	w.Log.WithField("public_id", p.PublicID).Info("orphaned media deleted")
	_ = w.Repo.MarkDone(ctx, job.ID)
}

func (w *Worker) retry(ctx context.Context, job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(ctx, job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(ctx, job.ID, attempts, next, errMsg)
}
