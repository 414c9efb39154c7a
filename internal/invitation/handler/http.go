// Package handler exposes the invitation lifecycle over HTTP. Error payloads
// carry a stable code alongside the message so clients can branch without
// string matching.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/invitation/domain"
	"workspace-control-plane/backend/internal/invitation/service"
	"workspace-control-plane/backend/internal/server/middleware"
)

// Error codes returned in the "code" field of error payloads.
const (
	codeValidationFailed = "VALIDATION_FAILED"
	codeUnauthorized     = "UNAUTHORIZED"
	codeNotFound         = "NOT_FOUND"
	codeCreateFailed     = "CREATE_FAILED"
	codeDuplicate        = "DUPLICATE_INVITATION"
	codeNotPending       = "NOT_PENDING"
)

// ActorResolver resolves the authenticated user into an evaluator-ready
// member for the scope the request targets.
type ActorResolver interface {
	ResolveOrgMember(ctx context.Context, userID, orgID string) (*authz.Member, error)
	ResolveTeamMember(ctx context.Context, userID, teamID string) (*authz.Member, error)
}

// Handler serves /invitations endpoints.
type Handler struct {
	svc     *service.Service
	members ActorResolver
}

// NewHandler returns an invitation handler.
func NewHandler(svc *service.Service, members ActorResolver) *Handler {
	return &Handler{svc: svc, members: members}
}

type createRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
	TeamID         string `json:"team_id"`
	Email          string `json:"email" binding:"required"`
	RoleID         string `json:"role_id" binding:"required"`
	MembershipType string `json:"membership_type" binding:"required"`
}

type invitationResponse struct {
	ID             string  `json:"id"`
	OrganizationID string  `json:"organization_id"`
	TeamID         string  `json:"team_id,omitempty"`
	Email          string  `json:"email"`
	RoleID         string  `json:"role_id"`
	MembershipType string  `json:"membership_type"`
	Token          string  `json:"token,omitempty"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
	ExpiresAt      string  `json:"expires_at"`
	AcceptedAt     *string `json:"accepted_at,omitempty"`
}

func toResponse(inv *domain.Invitation, includeToken bool) invitationResponse {
	resp := invitationResponse{
		ID:             inv.ID,
		OrganizationID: inv.OrganizationID,
		TeamID:         inv.TeamID,
		Email:          inv.Email,
		RoleID:         inv.RoleID,
		MembershipType: string(inv.MembershipType),
		Status:         domain.StatusLabel(inv.StatusAt(time.Now().UTC())),
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
		ExpiresAt:      inv.ExpiresAt.Format(time.RFC3339),
	}
	if includeToken {
		resp.Token = inv.Token
	}
	if inv.AcceptedAt != nil {
		at := inv.AcceptedAt.Format(time.RFC3339)
		resp.AcceptedAt = &at
	}
	return resp
}

// Create creates a pending invitation. The caller must hold a manage
// permission in the target organization or team.
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeValidationFailed, "organization_id, email, role_id, and membership_type are required")
		return
	}

	actor, err := h.resolveActor(ctx, middleware.UserID(c), req.OrganizationID, req.TeamID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve actor", "error", err)
		fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to create invitation")
		return
	}

	inv, err := h.svc.Create(ctx, actor, service.CreateRequest{
		OrganizationID: req.OrganizationID,
		TeamID:         req.TeamID,
		Email:          req.Email,
		RoleID:         req.RoleID,
		MembershipType: authz.MembershipType(req.MembershipType),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			fail(c, http.StatusForbidden, codeUnauthorized, "not allowed to create this invitation")
		case errors.Is(err, service.ErrValidation):
			fail(c, http.StatusBadRequest, codeValidationFailed, err.Error())
		case errors.Is(err, service.ErrDuplicateInvitation):
			fail(c, http.StatusConflict, codeDuplicate, err.Error())
		default:
			slog.ErrorContext(ctx, "failed to create invitation", "error", err, "email", req.Email)
			fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to create invitation")
		}
		return
	}

	slog.InfoContext(ctx, "invitation created",
		"invitation_id", inv.ID,
		"org_id", inv.OrganizationID,
		"membership_type", inv.MembershipType,
	)
	c.JSON(http.StatusCreated, toResponse(inv, true))
}

// List returns pending invitations visible to the caller in the given scope.
// organization_id is required; team_id narrows the actor to a team scope.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	orgID := c.Query("organization_id")
	if orgID == "" {
		fail(c, http.StatusBadRequest, codeValidationFailed, "organization_id is required")
		return
	}
	teamID := c.Query("team_id")

	actor, err := h.resolveActor(ctx, middleware.UserID(c), orgID, teamID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve actor", "error", err)
		fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to list invitations")
		return
	}

	invs, err := h.svc.ListPending(ctx, actor)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			fail(c, http.StatusForbidden, codeUnauthorized, "not allowed to list invitations")
			return
		}
		slog.ErrorContext(ctx, "failed to list invitations", "error", err)
		fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to list invitations")
		return
	}

	out := make([]invitationResponse, len(invs))
	for i, inv := range invs {
		out[i] = toResponse(inv, false)
	}
	c.JSON(http.StatusOK, gin.H{"invitations": out})
}

// Accept redeems the invitation token for the authenticated user.
func (h *Handler) Accept(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.Param("token")

	inv, err := h.svc.Accept(ctx, token, middleware.UserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			fail(c, http.StatusNotFound, codeNotFound, "invitation not found")
		case errors.Is(err, service.ErrNotPending):
			fail(c, http.StatusConflict, codeNotPending, err.Error())
		case errors.Is(err, service.ErrValidation):
			fail(c, http.StatusBadRequest, codeValidationFailed, err.Error())
		default:
			slog.ErrorContext(ctx, "failed to accept invitation", "error", err)
			fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to accept invitation")
		}
		return
	}

	slog.InfoContext(ctx, "invitation accepted", "invitation_id", inv.ID, "org_id", inv.OrganizationID)
	c.JSON(http.StatusOK, toResponse(inv, false))
}

// Revoke deletes a pending invitation. The caller must hold a manage
// permission covering the invitation's membership type.
func (h *Handler) Revoke(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.Param("token")

	inv, err := h.svc.Get(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			fail(c, http.StatusNotFound, codeNotFound, "invitation not found")
			return
		}
		slog.ErrorContext(ctx, "failed to load invitation", "error", err)
		fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to revoke invitation")
		return
	}

	actor, err := h.resolveActor(ctx, middleware.UserID(c), inv.OrganizationID, inv.TeamID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve actor", "error", err)
		fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to revoke invitation")
		return
	}

	if err := h.svc.Revoke(ctx, actor, token); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			fail(c, http.StatusNotFound, codeNotFound, "invitation not found")
		case errors.Is(err, service.ErrUnauthorized):
			fail(c, http.StatusForbidden, codeUnauthorized, "not allowed to revoke this invitation")
		default:
			slog.ErrorContext(ctx, "failed to revoke invitation", "error", err)
			fail(c, http.StatusInternalServerError, codeCreateFailed, "failed to revoke invitation")
		}
		return
	}

	slog.InfoContext(ctx, "invitation revoked", "invitation_id", inv.ID, "org_id", inv.OrganizationID)
	c.Status(http.StatusNoContent)
}

// resolveActor returns the caller's membership for the scope, preferring the
// organization membership and falling back to the team membership. A nil
// actor is not an error here; the service rejects nil actors as unauthorized.
func (h *Handler) resolveActor(ctx context.Context, userID, orgID, teamID string) (*authz.Member, error) {
	actor, err := h.members.ResolveOrgMember(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if actor == nil && teamID != "" {
		actor, err = h.members.ResolveTeamMember(ctx, userID, teamID)
		if err != nil {
			return nil, err
		}
	}
	return actor, nil
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "error": message})
}
