package templates

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

// List returns the catalog newest first, seeding the defaults when the
// catalog is empty. A failed seed is logged and the list is served anyway.
func (s *Service) List(ctx context.Context) ([]Template, error) {
	db := s.DB.WithContext(ctx)

	var n int64
	if err := db.Model(&Template{}).Count(&n).Error; err != nil {
		s.Log.WithError(err).Error("count templates, skipping seed")
	} else if n == 0 {
		if err := s.Seed(ctx); err != nil {
			s.Log.WithError(err).Error("failed to seed default templates")
		}
	}

	var out []Template
	if err := db.Order("created_at desc").Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Seed inserts the defaults, skipping any name already present. It is safe
// to call concurrently and repeatedly.
func (s *Service) Seed(ctx context.Context) error {
	// stagger creation times so newest-first lists the catalog in reverse
	// seed order on every dialect
	base := time.Now().UTC().Add(-time.Duration(len(Defaults)) * time.Second)
	rows := make([]Template, len(Defaults))
	for i, t := range Defaults {
		t.CreatedAt = base.Add(time.Duration(i) * time.Second)
		rows[i] = t
	}

	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&rows)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.Log.WithField("count", res.RowsAffected).Info("default templates seeded")
	}
	return nil
}
