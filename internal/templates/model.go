package templates

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Template struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Category  string    `gorm:"not null" json:"category"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (t *Template) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Defaults is the catalog seeded on first read.
var Defaults = []Template{
	{Name: "Drake Pointing", ImageURL: "https://i.imgflip.com/30b1gx.jpg", Category: "Funny"},
	{Name: "Distracted Boyfriend", ImageURL: "https://i.imgflip.com/1ur9b0.jpg", Category: "Relatable"},
	{Name: "Woman Yelling at Cat", ImageURL: "https://i.imgflip.com/345v97.jpg", Category: "Funny"},
	{Name: "This is Fine", ImageURL: "https://i.imgflip.com/26am.jpg", Category: "Relatable"},
	{Name: "Change My Mind", ImageURL: "https://i.imgflip.com/24y43o.jpg", Category: "Tech"},
	{Name: "Expanding Brain", ImageURL: "https://i.imgflip.com/1jhl0s.jpg", Category: "Funny"},
	{Name: "Two Buttons", ImageURL: "https://i.imgflip.com/1g8my4.jpg", Category: "Relatable"},
	{Name: "Wojak", ImageURL: "https://i.imgflip.com/1bhk.jpg", Category: "Anime"},
}
