package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"onlymemes/cmd/onlymemes/output"
	"onlymemes/internal/config"
	"onlymemes/internal/db"
	"onlymemes/internal/logging"
)

var (
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "onlymemes",
	Short: "OnlyMemes - meme sharing backend",
	Long: `OnlyMemes serves the meme sharing API: accounts, uploads, likes,
trending lists, category suggestions and the template catalog.

Configuration is read from .env, an optional config.yaml and the environment.
DATABASE_URL and JWT_SECRET are required.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

// env is what every subcommand needs before doing its own work.
type env struct {
	cfg config.Config
	log *logrus.Logger
	db  *gorm.DB
}

func bootstrap() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	gdb, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &env{cfg: cfg, log: log, db: gdb}, nil
}

func (e *env) close() {
	if err := db.Close(e.db); err != nil {
		e.log.WithError(err).Warn("closing database")
	}
}
