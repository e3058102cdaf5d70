package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onlymemes/internal/apperr"
	"onlymemes/internal/auth"
)

type Service struct {
	DB  *gorm.DB
	Log logrus.FieldLogger
}

type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Profile, error) {
	name := strings.TrimSpace(in.Name)
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if name == "" || username == "" || email == "" || in.Password == "" {
		return Profile{}, fmt.Errorf("%w: missing fields", apperr.ErrValidation)
	}

	db := s.DB.WithContext(ctx)

	var taken int64
	if err := db.Model(&User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&taken).Error; err != nil {
		return Profile{}, err
	}
	if taken > 0 {
		return Profile{}, fmt.Errorf("%w: user exists", apperr.ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Profile{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{Name: name, Username: username, Email: email, PasswordHash: hash}
	if err := db.Create(&u).Error; err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Profile{}, fmt.Errorf("%w: user exists", apperr.ErrConflict)
		}
		return Profile{}, err
	}

	s.Log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	return u.Profile(), nil
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Profile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Profile{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}

	var u User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Profile{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
		}
		return Profile{}, err
	}
	if !auth.ComparePassword(u.PasswordHash, password) {
		return Profile{}, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	return u.Profile(), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Profile{}, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}
	return s.first(ctx, "id = ?", id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Profile{}, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	}
	return s.first(ctx, "username = ?", username)
}

func (s *Service) first(ctx context.Context, query string, arg any) (Profile, error) {
	var u User
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Profile{}, fmt.Errorf("%w: user not found", apperr.ErrNotFound)
		}
		return Profile{}, err
	}
	return u.Profile(), nil
}
