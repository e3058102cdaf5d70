package meme

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Reactions is the per-meme reaction aggregate. Every counter is >= 0.
type Reactions struct {
	Likes    int64 `gorm:"not null;default:0" json:"likes"`
	Laughs   int64 `gorm:"not null;default:0" json:"laughs"`
	Wows     int64 `gorm:"not null;default:0" json:"wows"`
	Sads     int64 `gorm:"not null;default:0" json:"sads"`
	Dislikes int64 `gorm:"not null;default:0" json:"dislikes"`
}

type Meme struct {
	ID            string `gorm:"type:varchar(36);primaryKey"`
	Title         string `gorm:"not null"`
	Description   string `gorm:"type:text;not null;default:''"`
	ImageURL      string `gorm:"not null"`
	MemeURL       string `gorm:"not null;default:''"`
	VideoURL      string `gorm:"not null;default:''"`
	MediaType     string `gorm:"type:varchar(8);not null;default:'image'"`
	MediaPublicID string `gorm:"not null;default:''"`
	Category      string `gorm:"index;not null"`
	Tags          Tags   `gorm:"not null;default:'{}'"`
	OwnerID       string `gorm:"type:varchar(36);index;not null"`

	Reactions Reactions `gorm:"embedded"`

	Views     int64 `gorm:"not null;default:0"`
	Downloads int64 `gorm:"not null;default:0"`
	Shares    int64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"index;not null"`
}

func (m *Meme) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// CanonicalURL is the one URL clients should play or display: the video if
// there is one, else the meme URL, else the plain image.
func (m *Meme) CanonicalURL() string {
	switch {
	case m.VideoURL != "":
		return m.VideoURL
	case m.MemeURL != "":
		return m.MemeURL
	default:
		return m.ImageURL
	}
}

// Like is one member of a meme's liked-by set.
type Like struct {
	MemeID    string    `gorm:"type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Like) TableName() string { return "meme_likes" }

// Tags is stored as text[] on Postgres. Other dialects keep the same array
// literal in a text column, so both round-trip through lib/pq's encoder.
type Tags []string

func (Tags) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "{}", nil
	}
	return pq.StringArray(t).Value()
}

func (t *Tags) Scan(src any) error {
	var a pq.StringArray
	if err := a.Scan(src); err != nil {
		return err
	}
	*t = Tags(a)
	return nil
}
