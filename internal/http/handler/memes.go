package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"onlymemes/internal/auth"
	"onlymemes/internal/meme"
)

type MemeHandler struct {
	Svc            *meme.Service
	MaxUploadBytes int64
	Log            logrus.FieldLogger
}

func viewer(r *http.Request) string {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

func (h *MemeHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListByOwner(r.Context(), viewer(r), r.URL.Query().Get("ownerId"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "bad multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := meme.CreateInput{
		OwnerID:     viewer(r),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		TagsCSV:     r.FormValue("tags"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Create rejects a missing payload
	case err != nil:
		writeMessage(w, http.StatusBadRequest, "bad image field")
		return
	default:
		defer file.Close()
		in.Media = file
		in.Filename = header.Filename
	}

	v, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *MemeHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	out, err := h.Svc.Trending(r.Context(), viewer(r), limit)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MemeHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	out, err := h.Svc.ListByCategory(r.Context(), viewer(r), chi.URLParam(r, "category"), meme.CategoryPageSize)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *MemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.Svc.GetByID(r.Context(), viewer(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Count returns a handler that bumps counter c on the meme in the path.
func (h *MemeHandler) Count(c meme.Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.Svc.IncrementCounter(r.Context(), chi.URLParam(r, "id"), c); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

type reactReq struct {
	ReactionType string `json:"reactionType"`
}

func (h *MemeHandler) React(w http.ResponseWriter, r *http.Request) {
	var req reactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	res, err := h.Svc.ToggleLike(r.Context(), chi.URLParam(r, "id"), viewer(r), req.ReactionType)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"reactions": res.Reactions,
		"is_liked":  res.IsLiked,
	})
}
