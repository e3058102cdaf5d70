package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

const staleAfter = 5 * time.Minute

type Repo struct {
	DB *gorm.DB
}

func (r *Repo) EnqueueMediaCleanup(ctx context.Context, publicID, kind string) error {
	payload, err := json.Marshal(mediaCleanupPayload{PublicID: publicID, Kind: kind})
	if err != nil {
		return err
	}
	j := Job{
		Type:        TypeMediaCleanup,
		Payload:     string(payload),
		RunAt:       time.Now().UTC(),
		Status:      StatusPending,
		MaxAttempts: 8,
	}
	return r.DB.WithContext(ctx).Create(&j).Error
}

// Claim takes the oldest due job. The status flip is conditional on the row
// still being PENDING, so two workers can never both win the same job; the
// loser just sees no job this tick.
func (r *Repo) Claim(ctx context.Context, workerID string) (*Job, error) {
	db := r.DB.WithContext(ctx)
	now := time.Now().UTC()

	// requeue RUNNING jobs whose worker went away
	if err := db.Model(&Job{}).
		Where("status = ? AND locked_at IS NOT NULL AND locked_at < ?", StatusRunning, now.Add(-staleAfter)).
		Updates(map[string]any{
			"status":     StatusPending,
			"locked_by":  nil,
			"locked_at":  nil,
			"updated_at": now,
		}).Error; err != nil {
		return nil, err
	}

	var job Job
	err := db.Where("status = ? AND run_at <= ?", StatusPending, now).
		Order("run_at asc, id asc").
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	res := db.Model(&Job{}).
		Where("id = ? AND status = ?", job.ID, StatusPending).
		Updates(map[string]any{
			"status":     StatusRunning,
			"locked_by":  workerID,
			"locked_at":  now,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected != 1 {
		return nil, nil
	}

	job.Status = StatusRunning
	job.LockedBy = &workerID
	job.LockedAt = &now
	return &job, nil
}

func (r *Repo) MarkDone(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&Job{}).Where("id = ?", id).
		Updates(map[string]any{"status": StatusDone, "updated_at": time.Now().UTC()}).Error
}

func (r *Repo) MarkFailed(ctx context.Context, id uint64, errMsg string) error {
	return r.DB.WithContext(ctx).Model(&Job{}).Where("id = ?", id).
		Updates(map[string]any{"status": StatusFailed, "last_error": errMsg, "updated_at": time.Now().UTC()}).Error
}

func (r *Repo) RetryLater(ctx context.Context, id uint64, attempts int, runAt time.Time, errMsg string) error {
	return r.DB.WithContext(ctx).Model(&Job{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":     StatusPending,
			"attempts":   attempts,
			"run_at":     runAt.UTC(),
			"locked_by":  nil,
			"locked_at":  nil,
			"last_error": errMsg,
			"updated_at": time.Now().UTC(),
		}).Error
}
