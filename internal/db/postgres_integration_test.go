//go:build integration

package db_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"onlymemes/internal/db"
	"onlymemes/internal/logging"
	"onlymemes/internal/meme"
	"onlymemes/internal/templates"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("onlymemes"),
		postgres.WithUsername("onlymemes"),
		postgres.WithPassword("onlymemes"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gdb, err := db.Connect(connStr, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.AutoMigrateAndIndexes(gdb))
	return gdb
}

func TestPostgres_MemeLifecycle(t *testing.T) {
	gdb := setupPostgres(t)
	ctx := context.Background()
	log := logging.Discard()
	svc := &meme.Service{DB: gdb, Log: log}
	owner := uuid.NewString()

	m, err := svc.Import(ctx, meme.ImportInput{
		OwnerID:  owner,
		Title:    "Drake Pointing",
		Category: "Funny",
		ImageURL: "https://i.imgflip.com/30b1gx.jpg",
		Tags:     []string{"drake", `quoted "tag"`},
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, "", m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"drake", `quoted "tag"`}, got.Tags, "text[] round trip")

	// many users toggling at once
	var wg sync.WaitGroup
	users := make([]string, 20)
	for i := range users {
		users[i] = uuid.NewString()
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := svc.ToggleLike(ctx, m.ID, u, meme.ReactionLikes)
			assert.NoError(t, err)
		}(users[i])
	}
	wg.Wait()

	got, err = svc.GetByID(ctx, users[0], m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(len(users)), got.Reactions.Likes)
	assert.True(t, got.IsLiked)

	// one user racing against themself keeps membership and counter in step
	racer := uuid.NewString()
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.ToggleLike(ctx, m.ID, racer, meme.ReactionLikes)
		}()
	}
	wg.Wait()

	var members int64
	require.NoError(t, gdb.Model(&meme.Like{}).Where("meme_id = ?", m.ID).Count(&members).Error)
	got, err = svc.GetByID(ctx, "", m.ID)
	require.NoError(t, err)
	assert.Equal(t, members, got.Reactions.Likes)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.IncrementCounter(ctx, m.ID, meme.CounterViews))
	}
	got, err = svc.GetByID(ctx, "", m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Views)
}

func TestPostgres_SuggestionsAndTemplates(t *testing.T) {
	gdb := setupPostgres(t)
	ctx := context.Background()
	log := logging.Discard()
	svc := &meme.Service{DB: gdb, Log: log}
	owner := uuid.NewString()

	for cat, n := range map[string]int{"Tech": 3, "Funny": 2, "Anime": 1} {
		for i := 0; i < n; i++ {
			_, err := svc.Import(ctx, meme.ImportInput{
				OwnerID:  owner,
				Title:    fmt.Sprintf("%s %d", cat, i),
				Category: cat,
				ImageURL: "https://img.example.com/x.jpg",
			})
			require.NoError(t, err)
		}
	}

	got, err := svc.SuggestCategories(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{meme.Suggestion("Tech"), meme.Suggestion("Funny")}, got)

	tpl := &templates.Service{DB: gdb, Log: log}
	first, err := tpl.List(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 8)
	second, err := tpl.List(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 8)
}
