package domain

import "time"

// AuditLog is one recorded control-plane event. Invitation revocations are
// only durably visible here, since revoked invitation rows are deleted.
type AuditLog struct {
	ID             string
	OrganizationID string
	UserID         string
	Action         string
	Resource       string
	IP             string
	Metadata       string
	CreatedAt      time.Time
}

// Audit actions recorded by the invitation and identity flows.
const (
	ActionInvitationCreated  = "invitation_created"
	ActionInvitationAccepted = "invitation_accepted"
	ActionInvitationRevoked  = "invitation_revoked"
	ActionMemberJoined       = "member_joined"
	ActionUserRegistered     = "user_registered"
	ActionLoginSuccess       = "login_success"
	ActionLoginFailure       = "login_failure"
)
