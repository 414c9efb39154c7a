// Package handler exposes role listing over HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-control-plane/backend/internal/role/repository"
)

// Handler serves role endpoints.
type Handler struct {
	roles repository.Repository
}

// NewHandler returns a role handler.
func NewHandler(roles repository.Repository) *Handler {
	return &Handler{roles: roles}
}

type roleResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions"`
}

// List returns all roles with their permission sets.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	roles, err := h.roles.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list roles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list roles"})
		return
	}

	out := make([]roleResponse, len(roles))
	for i, role := range roles {
		perms := make([]string, len(role.Permissions))
		for j, p := range role.Permissions {
			perms[j] = string(p)
		}
		out[i] = roleResponse{
			ID:          role.ID,
			Name:        role.Name,
			Description: role.Description,
			Permissions: perms,
		}
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}
