package server

import (
	"net/http"
	"time"

	"mediamap/internal/logger"
)

const sessionCookie = "mediamap_session"

// sessionID returns the session identifier from the request cookie, issuing
// a fresh one when absent. The cookie outlives the filter snapshot so a
// returning browser maps back to its saved filters.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := logger.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((2 * 365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
