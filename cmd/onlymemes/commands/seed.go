package commands

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"onlymemes/cmd/onlymemes/output"
	"onlymemes/internal/apperr"
	"onlymemes/internal/meme"
	"onlymemes/internal/templates"
	"onlymemes/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo user, sample memes and the default templates",
	Long: `Load demo data for local development.

Creates test@example.com (password "password") if missing, ten sample memes
owned by that user unless the user already has memes, and the default
template catalog.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := bootstrap()
		if err != nil {
			return err
		}
		defer e.close()

		res, err := seedDemo(cmd.Context(), e.db, e.log)
		if err != nil {
			return err
		}
		output.Success("demo user %s (%s)", res.username, res.userID)
		if res.memes > 0 {
			output.Success("seeded %d memes", res.memes)
		} else {
			output.Muted("memes already present, skipped")
		}
		output.Success("template catalog ready")
		if !e.cfg.CloudinaryConfigured() {
			output.Warning("Cloudinary is not configured, uploads will fail until CLOUDINARY_* is set")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

var demoUser = user.RegisterInput{
	Name:     "Test User",
	Username: "testuser",
	Email:    "test@example.com",
	Password: "password",
}

var demoMemes = []struct{ title, category, query string }{
	{"Funny Cat", "Funny", "cat,meme"},
	{"Relatable Work", "Relatable", "work,meme"},
	{"Anime Moment", "Anime", "anime,meme"},
	{"Dark Joke", "Dark Humor", "dark,meme"},
	{"Wholesome Dog", "Wholesome", "dog,meme"},
	{"Tech Fail", "Tech", "tech,meme"},
	{"Funny Fail", "Funny", "fail,meme"},
	{"Relatable Life", "Relatable", "life,meme"},
	{"Anime Funny", "Anime", "anime,funny"},
	{"Tech Joke", "Tech", "tech,joke"},
}

type seedResult struct {
	userID   string
	username string
	memes    int
}

func seedDemo(ctx context.Context, gdb *gorm.DB, log logrus.FieldLogger) (seedResult, error) {
	users := &user.Service{DB: gdb, Log: log}
	memes := &meme.Service{DB: gdb, Log: log}
	tpls := &templates.Service{DB: gdb, Log: log}

	p, err := users.Register(ctx, demoUser)
	if errors.Is(err, apperr.ErrConflict) {
		p, err = users.GetByUsername(ctx, demoUser.Username)
	}
	if err != nil {
		return seedResult{}, err
	}
	res := seedResult{userID: p.ID, username: p.Username}

	existing, err := memes.ListByOwner(ctx, "", p.ID)
	if err != nil {
		return res, err
	}
	if len(existing) == 0 {
		for _, m := range demoMemes {
			_, err := memes.Import(ctx, meme.ImportInput{
				OwnerID:  p.ID,
				Title:    m.title,
				Category: m.category,
				ImageURL: "https://source.unsplash.com/random/400x300/?" + m.query,
				Tags:     []string{m.category},
			})
			if err != nil {
				return res, err
			}
			res.memes++
		}
	}

	if err := tpls.Seed(ctx); err != nil {
		return res, err
	}
	return res, nil
}
