// Package notify delivers invitation emails through an external mail API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"workspace-control-plane/backend/internal/authz"
)

const defaultTimeout = 15 * time.Second

// InvitationEmail is the payload delivered to the invited address. Token is
// the opaque invitation token embedded in the join link; ExpiresAt drives the
// expiry wording in the body.
type InvitationEmail struct {
	Email            string
	Token            string
	OrganizationName string
	InviterName      string
	MembershipType   authz.MembershipType
	ExpiresAt        time.Time
}

// MailClient sends invitation emails via an HTTP mail-delivery API.
type MailClient struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewMailClient returns a client that uses the given API key and optional
// base URL/sender address.
func NewMailClient(apiKey, baseURL, sender string) *MailClient {
	if baseURL == "" {
		baseURL = "https://api.resend.com/emails"
	}
	if sender == "" {
		sender = "invitations@workspace.example"
	}
	return &MailClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SendInvitation delivers the invitation email. The invitation row already
// exists when this runs; a delivery failure must surface to the caller, since
// an undelivered invitation is a stuck pending row.
func (c *MailClient) SendInvitation(ctx context.Context, msg InvitationEmail) error {
	if c.APIKey == "" {
		return fmt.Errorf("notify: API key not configured")
	}
	subject := fmt.Sprintf("%s invited you to join %s", msg.InviterName, msg.OrganizationName)
	body := map[string]any{
		"from":    c.Sender,
		"to":      []string{msg.Email},
		"subject": subject,
		"text": fmt.Sprintf(
			"%s has invited you to join %s as a %s member.\n\nUse this invitation token to join: %s\n\nThis invitation expires on %s.",
			msg.InviterName, msg.OrganizationName, msg.MembershipType, msg.Token,
			msg.ExpiresAt.UTC().Format("Jan 2, 2006 at 15:04 UTC")),
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("notify: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
