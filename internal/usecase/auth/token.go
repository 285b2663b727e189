package auth

import "time"

// Claims carries the payload extracted from a verified token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// Kind returns the "typ" extra claim, or the empty string when absent.
func (c *Claims) Kind() string {
	if c == nil {
		return ""
	}
	kind, _ := c.Extra["typ"].(string)
	return kind
}

// TokenCodec abstracts token issuance and verification. Verify failures are
// reported through the domain token error kinds so callers can distinguish
// expired, malformed, and tampered tokens.
type TokenCodec interface {
	Issue(subject string, extra map[string]any, ttl time.Duration) (string, error)
	Verify(token string) (*Claims, error)
}
