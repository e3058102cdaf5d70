package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"onlymemes/internal/auth"
	"onlymemes/internal/config"
	"onlymemes/internal/http/handler"
	mw "onlymemes/internal/http/middleware"
	"onlymemes/internal/jobs"
	"onlymemes/internal/media"
	"onlymemes/internal/meme"
	"onlymemes/internal/templates"
	"onlymemes/internal/user"
)

// Deps is everything the router wires into its handlers.
type Deps struct {
	DB       *gorm.DB
	JWT      *auth.JWT
	Sessions *auth.SessionStore
	Media    media.Uploader
	Log      logrus.FieldLogger
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(d.Log.WithField("component", "http")))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authn := &auth.Authenticator{JWT: d.JWT, Sessions: d.Sessions}

	userSvc := &user.Service{DB: d.DB, Log: d.Log.WithField("component", "users")}
	memeSvc := &meme.Service{
		DB:      d.DB,
		Media:   d.Media,
		Cleanup: &jobs.Repo{DB: d.DB},
		Log:     d.Log.WithField("component", "memes"),
	}
	tplSvc := &templates.Service{DB: d.DB, Log: d.Log.WithField("component", "templates")}

	ah := &handler.AuthHandler{Users: userSvc, JWT: d.JWT, Sessions: d.Sessions, Log: d.Log}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.With(authn.RequireAuth).Post("/auth/logout", ah.Logout)
	r.With(authn.RequireAuth).Get("/me", ah.Me)

	mh := &handler.MemeHandler{Svc: memeSvc, MaxUploadBytes: cfg.MaxUploadBytes, Log: d.Log}
	r.Route("/memes", func(r chi.Router) {
		r.Use(authn.OptionalAuth)

		r.Get("/", mh.List)
		r.With(authn.RequireAuth).Post("/", mh.Create)
		r.Get("/trending", mh.Trending)
		r.Get("/category/{category}", mh.ByCategory)

		r.Get("/{id}", mh.Get)
		r.Patch("/{id}/view", mh.Count(meme.CounterViews))
		r.Patch("/{id}/download", mh.Count(meme.CounterDownloads))
		r.Patch("/{id}/share", mh.Count(meme.CounterShares))
		r.With(authn.RequireAuth).Post("/{id}/react", mh.React)
	})

	th := &handler.TemplateHandler{Svc: tplSvc, Log: d.Log}
	r.Get("/templates", th.List)

	uh := &handler.UserHandler{Svc: userSvc, Log: d.Log}
	r.Get("/users/by-username/{username}", uh.GetByUsername)
	r.Get("/users/{id}", uh.Get)

	sh := &handler.SuggestionHandler{Svc: memeSvc, Log: d.Log}
	r.Get("/suggestions", sh.List)

	return r
}
