// Package event emits workspace lifecycle events (invitations, auth) to an
// external broker. Emission is best-effort: callers log and ignore errors,
// and a nil emitter disables it entirely.
package event

import (
	"context"
	"time"
)

// Event types emitted by the control plane.
const (
	TypeInvitationCreated  = "invitation.created"
	TypeInvitationAccepted = "invitation.accepted"
	TypeInvitationRevoked  = "invitation.revoked"
	TypeMemberJoined       = "member.joined"
	TypeUserRegistered     = "user.registered"
)

// Event is a single lifecycle event. Metadata is free-form JSON.
type Event struct {
	Type      string            `json:"type"`
	OrgID     string            `json:"org_id,omitempty"`
	TeamID    string            `json:"team_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Emitter emits lifecycle events. Best-effort; callers log and ignore errors.
type Emitter interface {
	// Emit sends a single event. Implementations may block briefly; use
	// EmitAsync from request paths.
	Emit(ctx context.Context, e Event) error
	// Close releases resources (e.g. the Kafka writer). Safe to call if already closed.
	Close() error
}
