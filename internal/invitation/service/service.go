// Package service implements the invitation lifecycle: create, list, accept,
// revoke. Creation is guarded by the permission evaluator and by a pending
// uniqueness rule per (email, organization). Acceptance converts the
// invitation into membership rows; revocation deletes the row and leaves its
// trace in the audit log.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workspace-control-plane/backend/internal/audit"
	auditdomain "workspace-control-plane/backend/internal/audit/domain"
	"workspace-control-plane/backend/internal/authz"
	"workspace-control-plane/backend/internal/event"
	"workspace-control-plane/backend/internal/invitation/domain"
	memberdomain "workspace-control-plane/backend/internal/member/domain"
	"workspace-control-plane/backend/internal/notify"
	orgdomain "workspace-control-plane/backend/internal/organization/domain"
	roledomain "workspace-control-plane/backend/internal/role/domain"
	"workspace-control-plane/backend/internal/security"
	userdomain "workspace-control-plane/backend/internal/user/domain"
)

// DefaultTTL is how long a new invitation stays pending before expiring.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrUnauthorized indicates the actor lacks permission for the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation indicates the request failed input validation.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateInvitation indicates a pending invitation already exists for
	// the (email, organization) pair.
	ErrDuplicateInvitation = errors.New("a pending invitation already exists for this email")
	// ErrCreateFailed indicates the invitation could not be created or delivered.
	ErrCreateFailed = errors.New("failed to create invitation")
	// ErrNotFound indicates no invitation matched the given token.
	ErrNotFound = errors.New("invitation not found")
	// ErrNotPending indicates the invitation exists but is accepted or expired.
	ErrNotPending = errors.New("invitation is no longer pending")
)

// Repository is the invitation persistence needed by the service.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.Invitation, error)
	GetPendingByEmailAndOrg(ctx context.Context, email, orgID string, now time.Time) (*domain.Invitation, error)
	InsertIfNoPending(ctx context.Context, inv *domain.Invitation, now time.Time) (bool, error)
	ListPending(ctx context.Context, orgID, teamID string, includeNoTeam bool, now time.Time) ([]*domain.Invitation, error)
	// AcceptAndCreateMembers marks the token accepted and inserts the
	// membership rows atomically; a membership failure must leave the
	// invitation pending.
	AcceptAndCreateMembers(ctx context.Context, token string, at time.Time, orgMember *memberdomain.OrgMember, teamMember *memberdomain.TeamMember) (bool, error)
	DeleteByToken(ctx context.Context, token string) (bool, error)
}

// OrgRepo resolves the organization named in invitation emails.
type OrgRepo interface {
	GetByID(ctx context.Context, id string) (*orgdomain.Org, error)
}

// UserRepo resolves the inviter named in invitation emails.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// RoleRepo validates the role an invitation grants.
type RoleRepo interface {
	GetByID(ctx context.Context, id string) (*roledomain.Role, error)
}

// Notifier delivers the invitation email after the row is persisted.
type Notifier interface {
	SendInvitation(ctx context.Context, msg notify.InvitationEmail) error
}

// CreateRequest describes a new invitation. TeamID empty means
// organization-wide.
type CreateRequest struct {
	OrganizationID string
	TeamID         string
	Email          string
	RoleID         string
	MembershipType authz.MembershipType
}

// Service implements the invitation lifecycle.
type Service struct {
	invitations Repository
	orgs        OrgRepo
	users       UserRepo
	roles       RoleRepo
	notifier    Notifier
	auditLogger audit.AuditLogger
	emitter     event.Emitter

	ttl      time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

// NewService returns an invitation service. notifier, auditLogger, and
// emitter may be nil; the corresponding side effects are skipped. ttl <= 0
// falls back to DefaultTTL.
func NewService(
	invitations Repository,
	orgs OrgRepo,
	users UserRepo,
	roles RoleRepo,
	notifier Notifier,
	auditLogger audit.AuditLogger,
	emitter event.Emitter,
	ttl time.Duration,
) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		invitations: invitations,
		orgs:        orgs,
		users:       users,
		roles:       roles,
		notifier:    notifier,
		auditLogger: auditLogger,
		emitter:     emitter,
		ttl:         ttl,
		now:         func() time.Time { return time.Now().UTC() },
		newToken:    security.GenerateOpaqueToken,
	}
}

// CanInvite reports whether the actor may create an invitation with the
// requested membership type. The actor needs manage_organization or
// manage_team; additionally, an external (client) admin may only invite
// other clients, never internal team members.
func CanInvite(actor *authz.Member, requested authz.MembershipType) bool {
	if actor == nil {
		return false
	}
	canManage := authz.MeetsRequirements(actor, authz.Requirement{
		Permissions: []authz.Permission{authz.PermissionManageOrganization},
	}) || authz.MeetsRequirements(actor, authz.Requirement{
		Permissions: []authz.Permission{authz.PermissionManageTeam},
	})
	if !canManage {
		return false
	}
	if actor.Kind == authz.KindOrg &&
		actor.MembershipType == authz.MembershipTypeClient &&
		actor.Role.Name == roledomain.NameAdmin &&
		requested == authz.MembershipTypeTeam {
		return false
	}
	return true
}

// Create validates and persists a new pending invitation, then delivers the
// invitation email. The actor must pass CanInvite for the requested
// membership type. A pending invitation for the same (email, organization)
// blocks creation; the check is enforced atomically at insert time, so
// concurrent creates cannot both succeed.
//
// A notifier failure after the insert surfaces as ErrCreateFailed joined
// with the delivery error: the row exists but the recipient has no token,
// and the caller must know.
func (s *Service) Create(ctx context.Context, actor *authz.Member, req CreateRequest) (*domain.Invitation, error) {
	if !CanInvite(actor, req.MembershipType) {
		return nil, ErrUnauthorized
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if req.OrganizationID == "" {
		return nil, fmt.Errorf("%w: organization id is required", ErrValidation)
	}
	if req.RoleID == "" {
		return nil, fmt.Errorf("%w: role id is required", ErrValidation)
	}

	role, err := s.roles.GetByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: role %s does not exist", ErrValidation, req.RoleID)
	}

	now := s.now()

	// Fast path: reject an obvious duplicate before generating a token.
	// The authoritative guard is the conditional insert below.
	existing, err := s.invitations.GetPendingByEmailAndOrg(ctx, email, req.OrganizationID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateInvitation
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	inv := &domain.Invitation{
		ID:             uuid.New().String(),
		OrganizationID: req.OrganizationID,
		TeamID:         req.TeamID,
		Email:          email,
		RoleID:         req.RoleID,
		MembershipType: req.MembershipType,
		Token:          token,
		InvitedBy:      actor.UserID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}
	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	inserted, err := s.invitations.InsertIfNoPending(ctx, inv, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}
	if !inserted {
		return nil, ErrDuplicateInvitation
	}

	if err := s.deliver(ctx, inv); err != nil {
		return nil, errors.Join(ErrCreateFailed, err)
	}

	s.logEvent(ctx, inv.OrganizationID, actor.UserID, auditdomain.ActionInvitationCreated, inv.ID,
		fmt.Sprintf("email=%s membership_type=%s", inv.Email, inv.MembershipType))
	event.EmitAsync(s.emitter, event.Event{
		Type:      event.TypeInvitationCreated,
		OrgID:     inv.OrganizationID,
		TeamID:    inv.TeamID,
		UserID:    actor.UserID,
		Metadata:  map[string]string{"email": inv.Email, "membership_type": string(inv.MembershipType)},
		CreatedAt: now,
	})
	return inv, nil
}

func (s *Service) deliver(ctx context.Context, inv *domain.Invitation) error {
	if s.notifier == nil {
		return nil
	}
	orgName := inv.OrganizationID
	if org, err := s.orgs.GetByID(ctx, inv.OrganizationID); err == nil && org != nil {
		orgName = org.Name
	}
	inviterName := "A workspace admin"
	if inviter, err := s.users.GetByID(ctx, inv.InvitedBy); err == nil && inviter != nil && inviter.Name != "" {
		inviterName = inviter.Name
	}
	return s.notifier.SendInvitation(ctx, notify.InvitationEmail{
		Email:            inv.Email,
		Token:            inv.Token,
		OrganizationName: orgName,
		InviterName:      inviterName,
		MembershipType:   inv.MembershipType,
		ExpiresAt:        inv.ExpiresAt,
	})
}

// ListPending returns the pending invitations visible to the actor. An
// organization-scoped actor sees every pending invitation in the org; a
// team-scoped actor sees the team's invitations plus org-wide ones.
func (s *Service) ListPending(ctx context.Context, actor *authz.Member) ([]*domain.Invitation, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	canManage := authz.MeetsRequirements(actor, authz.Requirement{
		Permissions: []authz.Permission{authz.PermissionManageOrganization},
	}) || authz.MeetsRequirements(actor, authz.Requirement{
		Permissions: []authz.Permission{authz.PermissionManageTeam},
	})
	if !canManage {
		return nil, ErrUnauthorized
	}
	now := s.now()
	if actor.Kind == authz.KindTeam {
		return s.invitations.ListPending(ctx, actor.OrganizationID, actor.TeamID, true, now)
	}
	return s.invitations.ListPending(ctx, actor.OrganizationID, "", true, now)
}

// Accept redeems the invitation token for the given user. Only a pending
// invitation can be accepted; accepted and expired invitations return
// ErrNotPending, a missing row ErrNotFound. Marking the row and creating the
// membership rows (an organization membership always, plus a team membership
// when the invitation is team-scoped) happen in one repository transaction:
// if a membership insert fails the invitation stays pending and the token
// remains redeemable.
func (s *Service) Accept(ctx context.Context, token, userID string) (*domain.Invitation, error) {
	if token == "" || userID == "" {
		return nil, fmt.Errorf("%w: token and user id are required", ErrValidation)
	}
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	now := s.now()
	if !inv.PendingAt(now) {
		return nil, fmt.Errorf("%w: status is %s", ErrNotPending, domain.StatusLabel(inv.StatusAt(now)))
	}

	orgMember := &memberdomain.OrgMember{
		ID:             uuid.New().String(),
		UserID:         userID,
		OrganizationID: inv.OrganizationID,
		RoleID:         inv.RoleID,
		MembershipType: inv.MembershipType,
		CreatedAt:      now,
	}
	var teamMember *memberdomain.TeamMember
	if inv.TeamID != "" {
		teamMember = &memberdomain.TeamMember{
			ID:             uuid.New().String(),
			UserID:         userID,
			TeamID:         inv.TeamID,
			OrganizationID: inv.OrganizationID,
			RoleID:         inv.RoleID,
			CreatedAt:      now,
		}
	}

	// The accepted_at re-check and the member inserts run in one
	// transaction, so two concurrent accepts cannot both pass and a failed
	// insert cannot burn the token.
	accepted, err := s.invitations.AcceptAndCreateMembers(ctx, token, now, orgMember, teamMember)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, ErrNotPending
	}
	inv.AcceptedAt = &now

	s.logEvent(ctx, inv.OrganizationID, userID, auditdomain.ActionInvitationAccepted, inv.ID,
		fmt.Sprintf("email=%s", inv.Email))
	s.logEvent(ctx, inv.OrganizationID, userID, auditdomain.ActionMemberJoined, inv.OrganizationID,
		fmt.Sprintf("membership_type=%s team_id=%s", inv.MembershipType, inv.TeamID))
	event.EmitAsync(s.emitter, event.Event{
		Type:      event.TypeInvitationAccepted,
		OrgID:     inv.OrganizationID,
		TeamID:    inv.TeamID,
		UserID:    userID,
		Metadata:  map[string]string{"email": inv.Email},
		CreatedAt: now,
	})
	event.EmitAsync(s.emitter, event.Event{
		Type:      event.TypeMemberJoined,
		OrgID:     inv.OrganizationID,
		TeamID:    inv.TeamID,
		UserID:    userID,
		Metadata:  map[string]string{"membership_type": string(inv.MembershipType)},
		CreatedAt: now,
	})
	return inv, nil
}

// Revoke deletes the invitation row. The actor must pass CanInvite for the
// invitation's membership type. Revoking an already-revoked (deleted) token
// returns ErrNotFound; the deletion itself is recorded in the audit log, so
// the act survives the row.
func (s *Service) Revoke(ctx context.Context, actor *authz.Member, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if inv == nil {
		return ErrNotFound
	}
	if !CanInvite(actor, inv.MembershipType) {
		return ErrUnauthorized
	}
	deleted, err := s.invitations.DeleteByToken(ctx, token)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.logEvent(ctx, inv.OrganizationID, actor.UserID, auditdomain.ActionInvitationRevoked, inv.ID,
		fmt.Sprintf("email=%s", inv.Email))
	event.EmitAsync(s.emitter, event.Event{
		Type:      event.TypeInvitationRevoked,
		OrgID:     inv.OrganizationID,
		TeamID:    inv.TeamID,
		UserID:    actor.UserID,
		Metadata:  map[string]string{"email": inv.Email},
		CreatedAt: s.now(),
	})
	return nil
}

// Get returns the invitation for the token, or ErrNotFound.
func (s *Service) Get(ctx context.Context, token string) (*domain.Invitation, error) {
	inv, err := s.invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrNotFound
	}
	return inv, nil
}

func (s *Service) logEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if s.auditLogger == nil {
		return
	}
	s.auditLogger.LogEvent(ctx, orgID, userID, action, resource, metadata)
}
