package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"onlymemes/internal/jobs"
	"onlymemes/internal/meme"
	"onlymemes/internal/templates"
	"onlymemes/internal/user"
)

// Dialector picks the driver from the DSN: postgres:// and postgresql:// go
// to Postgres, anything else is treated as a SQLite path (an optional
// sqlite:// prefix is stripped).
func Dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
}

// Config is the gorm configuration shared by every connection. Timestamps are
// always UTC so SQLite's text timestamps compare correctly.
func Config(log logrus.FieldLogger) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func Connect(dsn string, log logrus.FieldLogger) (*gorm.DB, error) {
	dial := Dialector(dsn)
	gdb, err := gorm.Open(dial, Config(log))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dial.Name(), err)
	}

	if dial.Name() == "sqlite" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		// one writer at a time, and an in-memory database lives only as
		// long as its single connection
		sqlDB.SetMaxOpenConns(1)
	}

	log.WithField("dialect", dial.Name()).Info("database connected")
	return gdb, nil
}

func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Models is every table the service owns, in migration order.
func Models() []any {
	return []any{
		&user.User{},
		&meme.Meme{},
		&meme.Like{},
		&templates.Template{},
		&jobs.Job{},
	}
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_memes_trending on memes(likes desc, views desc);`,
		`create index if not exists idx_memes_owner_created on memes(owner_id, created_at desc);`,
		`create index if not exists idx_memes_category_created on memes(category, created_at desc);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	if gdb.Dialector.Name() == "postgres" {
		// tag lookups on the text[] column
		if err := gdb.Exec(`create index if not exists idx_memes_tags on memes using gin (tags);`).Error; err != nil {
			return err
		}
	}
	return nil
}
