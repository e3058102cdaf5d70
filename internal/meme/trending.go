package meme

import (
	"context"
	"fmt"
)

const (
	TrendingLimit   = 10
	MaxTrending     = 50
	SuggestionCount = 3
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Trending ranks memes by likes, then views. Ties keep the older meme first.
// limit defaults to TrendingLimit and is capped at MaxTrending.
func (s *Service) Trending(ctx context.Context, viewerID string, limit int) ([]View, error) {
	switch {
	case limit <= 0:
		limit = TrendingLimit
	case limit > MaxTrending:
		limit = MaxTrending
	}

	var rows []Meme
	if err := s.DB.WithContext(ctx).
		Order("likes desc").
		Order("views desc").
		Order("created_at asc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return s.project(ctx, viewerID, rows)
}

// CategoryCounts returns the topN categories by meme count. Equal counts are
// broken alphabetically so the result is stable.
func (s *Service) CategoryCounts(ctx context.Context, topN int) ([]CategoryCount, error) {
	if topN <= 0 {
		topN = SuggestionCount
	}

	var out []CategoryCount
	if err := s.DB.WithContext(ctx).Model(&Meme{}).
		Select("category, count(*) as count").
		Group("category").
		Order("count desc, category asc").
		Limit(topN).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) SuggestCategories(ctx context.Context, topN int) ([]string, error) {
	counts, err := s.CategoryCounts(ctx, topN)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(counts))
	for _, c := range counts {
		out = append(out, Suggestion(c.Category))
	}
	return out, nil
}

func Suggestion(category string) string {
	return fmt.Sprintf("Try making memes in %s category, it's trending!", category)
}
