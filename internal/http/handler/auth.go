package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"onlymemes/internal/auth"
	"onlymemes/internal/user"
)

type AuthHandler struct {
	Users    *user.Service
	JWT      *auth.JWT
	Sessions *auth.SessionStore
	Log      logrus.FieldLogger
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	p, err := h.Users.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "bad json")
		return
	}

	p, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	sess, err := h.Sessions.Create(r.Context(), p.ID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	token, err := h.JWT.Sign(p.ID, sess.ID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  p,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sid, ok := auth.SessionIDFromContext(r.Context()); ok {
		if err := h.Sessions.Revoke(r.Context(), sid); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	p, err := h.Users.GetByID(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
