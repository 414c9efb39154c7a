package domain

import (
	"errors"
	"time"
)

// Team is a named group inside an organization. Invitations may be scoped
// to a team or left organization-wide.
type Team struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
}

// Validate validates the team for persistence. Returns an error describing the first validation failure.
func (t *Team) Validate() error {
	if t.OrganizationID == "" {
		return errors.New("organization id is required")
	}
	if t.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
