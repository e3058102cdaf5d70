package meme

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"onlymemes/internal/apperr"
	"onlymemes/internal/media"
)

const (
	DefaultCategory  = "General"
	CategoryPageSize = 20

	ReactionLikes = "likes"
)

type Counter string

const (
	CounterViews     Counter = "views"
	CounterDownloads Counter = "downloads"
	CounterShares    Counter = "shares"
)

var counterColumns = map[Counter]string{
	CounterViews:     "views",
	CounterDownloads: "downloads",
	CounterShares:    "shares",
}

// Cleanup receives uploads that ended up with no meme pointing at them.
type Cleanup interface {
	EnqueueMediaCleanup(ctx context.Context, publicID, kind string) error
}

type Service struct {
	DB      *gorm.DB
	Media   media.Uploader
	Cleanup Cleanup
	Log     logrus.FieldLogger
}

type CreateInput struct {
	OwnerID     string
	Title       string
	Description string
	Category    string
	TagsCSV     string
	Media       io.Reader
	Filename    string
}

type ImportInput struct {
	OwnerID  string
	Title    string
	Category string
	ImageURL string
	Tags     []string
}

// View is a meme as a particular viewer sees it. The liked-by set itself is
// never exposed, only whether the viewer is in it.
type View struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url"`
	MemeURL     string    `json:"meme_url,omitempty"`
	VideoURL    string    `json:"video_url,omitempty"`
	MediaURL    string    `json:"media_url"`
	MediaType   string    `json:"media_type"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	OwnerID     string    `json:"owner_id"`
	Reactions   Reactions `json:"reactions"`
	Views       int64     `json:"views"`
	Downloads   int64     `json:"downloads"`
	Shares      int64     `json:"shares"`
	IsLiked     bool      `json:"is_liked"`
	CreatedAt   time.Time `json:"created_at"`
}

type ToggleResult struct {
	Reactions Reactions `json:"reactions"`
	IsLiked   bool      `json:"is_liked"`
}

func isID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func toView(m Meme, liked bool) View {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return View{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		MemeURL:     m.MemeURL,
		VideoURL:    m.VideoURL,
		MediaURL:    m.CanonicalURL(),
		MediaType:   m.MediaType,
		Category:    m.Category,
		Tags:        tags,
		OwnerID:     m.OwnerID,
		Reactions:   m.Reactions,
		Views:       m.Views,
		Downloads:   m.Downloads,
		Shares:      m.Shares,
		IsLiked:     liked,
		CreatedAt:   m.CreatedAt,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	if !isID(in.OwnerID) {
		return View{}, apperr.ErrUnauthorized
	}
	if in.Media == nil {
		return View{}, fmt.Errorf("%w: image is required", apperr.ErrValidation)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return View{}, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}
	if s.Media == nil {
		return View{}, fmt.Errorf("%w: %w", apperr.ErrUpload, media.ErrNotConfigured)
	}

	up, err := s.Media.Upload(ctx, in.Media, in.Filename)
	if err != nil {
		return View{}, fmt.Errorf("%w: %w", apperr.ErrUpload, err)
	}

	m := Meme{
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		ImageURL:      up.URL,
		MemeURL:       up.URL,
		MediaType:     string(up.Kind),
		MediaPublicID: up.PublicID,
		Category:      category,
		Tags:          ParseTags(in.TagsCSV),
		OwnerID:       in.OwnerID,
	}
	if up.Kind == media.KindVideo {
		m.VideoURL = up.URL
	}

	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		s.orphaned(ctx, up)
		return View{}, fmt.Errorf("save meme: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"meme_id":  m.ID,
		"owner_id": m.OwnerID,
		"category": m.Category,
		"media":    m.MediaType,
	}).Info("meme created")

	return toView(m, false), nil
}

// orphaned queues deletion of an upload whose meme could not be saved.
func (s *Service) orphaned(ctx context.Context, up media.Upload) {
	if s.Cleanup == nil || up.PublicID == "" {
		return
	}
	if err := s.Cleanup.EnqueueMediaCleanup(context.WithoutCancel(ctx), up.PublicID, string(up.Kind)); err != nil {
		s.Log.WithError(err).WithField("public_id", up.PublicID).Error("enqueue media cleanup")
	}
}

// Import stores a meme whose image is already hosted elsewhere.
func (s *Service) Import(ctx context.Context, in ImportInput) (View, error) {
	if !isID(in.OwnerID) {
		return View{}, fmt.Errorf("%w: invalid owner id", apperr.ErrValidation)
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.ImageURL) == "" {
		return View{}, fmt.Errorf("%w: title and image url are required", apperr.ErrValidation)
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = DefaultCategory
	}

	tags := Tags{}
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	m := Meme{
		Title:     strings.TrimSpace(in.Title),
		ImageURL:  in.ImageURL,
		MediaType: string(media.KindImage),
		Category:  category,
		Tags:      tags,
		OwnerID:   in.OwnerID,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return View{}, fmt.Errorf("save meme: %w", err)
	}
	return toView(m, false), nil
}

// likedBy returns which of ids viewerID has liked.
func (s *Service) likedBy(ctx context.Context, viewerID string, ids []string) (map[string]bool, error) {
	if viewerID == "" || len(ids) == 0 {
		return nil, nil
	}
	var liked []string
	if err := s.DB.WithContext(ctx).Model(&Like{}).
		Where("user_id = ? AND meme_id IN ?", viewerID, ids).
		Pluck("meme_id", &liked).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(liked))
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

func (s *Service) project(ctx context.Context, viewerID string, rows []Meme) ([]View, error) {
	ids := make([]string, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}
	liked, err := s.likedBy(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(rows))
	for _, m := range rows {
		out = append(out, toView(m, liked[m.ID]))
	}
	return out, nil
}

// ListByOwner lists the owner's memes newest first. An empty or malformed
// owner id lists every meme.
func (s *Service) ListByOwner(ctx context.Context, viewerID, ownerID string) ([]View, error) {
	q := s.DB.WithContext(ctx).Model(&Meme{})
	if isID(ownerID) {
		q = q.Where("owner_id = ?", ownerID)
	}

	var rows []Meme
	if err := q.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.project(ctx, viewerID, rows)
}

func (s *Service) ListByCategory(ctx context.Context, viewerID, category string, limit int) ([]View, error) {
	if limit <= 0 || limit > CategoryPageSize {
		limit = CategoryPageSize
	}

	var rows []Meme
	if err := s.DB.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.project(ctx, viewerID, rows)
}

func (s *Service) GetByID(ctx context.Context, viewerID, id string) (View, error) {
	if !isID(id) {
		return View{}, apperr.ErrNotFound
	}

	var m Meme
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return View{}, apperr.ErrNotFound
		}
		return View{}, err
	}

	views, err := s.project(ctx, viewerID, []Meme{m})
	if err != nil {
		return View{}, err
	}
	return views[0], nil
}

// IncrementCounter bumps a telemetry counter by one. Unknown or malformed ids
// are ignored: the client fires these and forgets them.
func (s *Service) IncrementCounter(ctx context.Context, id string, c Counter) error {
	col, ok := counterColumns[c]
	if !ok {
		return fmt.Errorf("%w: unknown counter %q", apperr.ErrValidation, c)
	}
	if !isID(id) {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&Meme{}).
		Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", 1)).Error
}

// ToggleLike flips userID's membership in the meme's liked-by set. The likes
// counter moves only when a membership row was actually inserted or deleted,
// so racing toggles from the same user can't drift the counter off the set.
func (s *Service) ToggleLike(ctx context.Context, id, userID, reaction string) (ToggleResult, error) {
	if userID == "" {
		return ToggleResult{}, apperr.ErrUnauthorized
	}
	if !isID(id) {
		return ToggleResult{}, fmt.Errorf("%w: invalid meme id", apperr.ErrValidation)
	}
	if reaction != ReactionLikes {
		return ToggleResult{}, fmt.Errorf("%w: only likes are supported", apperr.ErrUnsupportedReaction)
	}

	var out ToggleResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&Meme{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return apperr.ErrNotFound
		}

		var member int64
		if err := tx.Model(&Like{}).Where("meme_id = ? AND user_id = ?", id, userID).Count(&member).Error; err != nil {
			return err
		}

		if member > 0 {
			res := tx.Where("meme_id = ? AND user_id = ?", id, userID).Delete(&Like{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				if err := tx.Model(&Meme{}).Where("id = ?", id).
					UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error; err != nil {
					return err
				}
			}
		} else {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&Like{MemeID: id, UserID: userID})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				if err := tx.Model(&Meme{}).Where("id = ?", id).
					UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
					return err
				}
			}
		}
		out.IsLiked = member == 0

		var m Meme
		if err := tx.Select("id", "likes", "laughs", "wows", "sads", "dislikes").
			Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		out.Reactions = m.Reactions
		return nil
	})
	if err != nil {
		return ToggleResult{}, err
	}

	s.Log.WithFields(logrus.Fields{
		"meme_id":  id,
		"user_id":  userID,
		"is_liked": out.IsLiked,
		"likes":    out.Reactions.Likes,
	}).Debug("like toggled")
	return out, nil
}
