package handler

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"onlymemes/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps err onto its status. Errors outside the taxonomy are logged
// and reported as a bare "server error".
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status := apperr.Status(err)
	if !apperr.Public(err) {
		log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": chimw.GetReqID(r.Context()),
		}).Error("request failed")
		writeMessage(w, status, "server error")
		return
	}
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Warn("request failed")
	}
	writeMessage(w, status, err.Error())
}
