// Package handler exposes membership queries over HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/member/service"
	"workspace-control-plane/backend/internal/server/middleware"
)

// Handler serves membership endpoints.
type Handler struct {
	members *service.Service
}

// NewHandler returns a member handler.
func NewHandler(members *service.Service) *Handler {
	return &Handler{members: members}
}

type memberResponse struct {
	UserID         string   `json:"user_id"`
	OrganizationID string   `json:"organization_id"`
	TeamID         string   `json:"team_id,omitempty"`
	MembershipType string   `json:"membership_type,omitempty"`
	RoleID         string   `json:"role_id"`
	RoleName       string   `json:"role_name"`
	Permissions    []string `json:"permissions"`
}

func toResponse(m authz.Member) memberResponse {
	perms := make([]string, len(m.Role.Permissions))
	for i, p := range m.Role.Permissions {
		perms[i] = string(p)
	}
	return memberResponse{
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		TeamID:         m.TeamID,
		MembershipType: string(m.MembershipType),
		RoleID:         m.Role.ID,
		RoleName:       m.Role.Name,
		Permissions:    perms,
	}
}

// ListOrgMembers returns every member of the organization. Callers must be
// members of the organization themselves.
func (h *Handler) ListOrgMembers(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := c.Param("id")

	caller, err := h.members.ResolveOrgMember(ctx, middleware.UserID(c), orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve caller", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}
	if caller == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member of this organization"})
		return
	}

	members, err := h.members.ListOrgMembers(ctx, orgID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list members", "error", err, "org_id", orgID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}

	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = toResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"members": out})
}

// MyMemberships returns the caller's org and team memberships with resolved
// permission sets.
func (h *Handler) MyMemberships(c *gin.Context) {
	ctx := c.Request.Context()

	ms, err := h.members.ResolveMemberships(ctx, middleware.UserID(c))
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve memberships", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve memberships"})
		return
	}

	orgs := make([]memberResponse, len(ms.Organization))
	for i, m := range ms.Organization {
		orgs[i] = toResponse(m)
	}
	teams := make([]memberResponse, len(ms.Team))
	for i, m := range ms.Team {
		teams[i] = toResponse(m)
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs, "teams": teams})
}
