package jobs

import "time"

const (
	TypeMediaCleanup = "MEDIA_CLEANUP"

	StatusPending = "PENDING"
	StatusRunning = "RUNNING"
	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
)

type Job struct {
	ID uint64 `gorm:"primaryKey"`

	Type    string `gorm:"type:text;not null"` // MEDIA_CLEANUP
	Payload string `gorm:"type:text;not null"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"type:varchar(16);index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// mediaCleanupPayload names an uploaded asset that no meme refers to.
type mediaCleanupPayload struct {
	PublicID string `json:"public_id"`
	Kind     string `json:"kind"`
}
