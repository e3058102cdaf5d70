package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"onlymemes/internal/auth"
	httpx "onlymemes/internal/http"
	"onlymemes/internal/jobs"
	"onlymemes/internal/media"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the background worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	e, err := bootstrap()
	if err != nil {
		return err
	}
	defer e.close()
	cfg, log := e.cfg, e.log

	sessions, err := auth.OpenSessionStore(cfg.SessionDBPath, cfg.SessionTTL, log)
	if err != nil {
		return err
	}
	defer sessions.Close()

	cld, err := media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder, log)
	if err != nil {
		return err
	}

	r := httpx.NewRouter(cfg, httpx.Deps{
		DB:       e.db,
		JWT:      auth.NewJWT(cfg.JWTSecret, cfg.SessionTTL),
		Sessions: sessions,
		Media:    cld,
		Log:      log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerDone := make(chan struct{})
	if cfg.WorkerEnabled {
		worker := &jobs.Worker{
			ID:       "worker-" + uuid.NewString()[:8],
			Repo:     &jobs.Repo{DB: e.db},
			Media:    cld,
			Interval: cfg.WorkerPollInterval,
			Log:      log.WithField("component", "worker"),
		}
		go func() {
			worker.Run(ctx)
			close(workerDone)
		}()
	} else {
		close(workerDone)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-ch:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-errCh:
		cancel()
		<-workerDone
		return err
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	<-workerDone
	return nil
}
