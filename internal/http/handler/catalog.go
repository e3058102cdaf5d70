package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"onlymemes/internal/meme"
	"onlymemes/internal/templates"
	"onlymemes/internal/user"
)

type TemplateHandler struct {
	Svc *templates.Service
	Log logrus.FieldLogger
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.List(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type UserHandler struct {
	Svc *user.Service
	Log logrus.FieldLogger
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type SuggestionHandler struct {
	Svc *meme.Service
	Log logrus.FieldLogger
}

func (h *SuggestionHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.SuggestCategories(r.Context(), meme.SuggestionCount)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
