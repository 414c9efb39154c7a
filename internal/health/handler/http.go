// Package handler exposes the health endpoint.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks a dependency (e.g. *sql.DB).
type Pinger interface {
	Ping() error
}

// Handler serves liveness/readiness. A nil Pinger skips the DB check.
type Handler struct {
	db Pinger
}

// NewHandler returns a health handler. db may be nil.
func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Check reports overall status and the database check. Returns 503 when the
// database ping fails.
func (h *Handler) Check(c *gin.Context) {
	dbStatus := "skipped"
	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			dbStatus = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			dbStatus = "ok"
		}
	}
	c.JSON(status, gin.H{
		"status":   statusLabel(status),
		"database": dbStatus,
	})
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
