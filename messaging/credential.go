package messaging

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims are the claims carried by access tokens minted for this
// client. Tokens from other issuers may carry none of them.
type AccessClaims struct {
	Identity string    `json:"identity,omitempty"`
	Device   string    `json:"device,omitempty"`
	Grants   ChatGrant `json:"grants,omitempty"`
	jwt.RegisteredClaims
}

// ChatGrant scopes a token to a chat service.
type ChatGrant struct {
	ServiceSID string `json:"service_sid,omitempty"`
	EndpointID string `json:"endpoint_id,omitempty"`
}

// AccessCredential wraps the token handed to the SDK. The token is opaque to
// the client; claims are decoded only when the token happens to be a JWT.
type AccessCredential struct {
	token  string
	claims *AccessClaims
}

// NewAccessCredential returns ErrEmptyToken for an empty token. Any other
// string is accepted.
func NewAccessCredential(token string) (*AccessCredential, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	cred := &AccessCredential{token: token}

	claims := &AccessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		cred.claims = claims
	}
	return cred, nil
}

func (c *AccessCredential) Token() string {
	return c.token
}

// Claims returns the decoded claims, or nil for opaque tokens.
func (c *AccessCredential) Claims() *AccessClaims {
	return c.claims
}

// Identity returns the identity claim, falling back to the subject.
func (c *AccessCredential) Identity() string {
	if c.claims == nil {
		return ""
	}
	if c.claims.Identity != "" {
		return c.claims.Identity
	}
	return c.claims.Subject
}

// ExpiresAt returns the zero time when the token carries no expiry.
func (c *AccessCredential) ExpiresAt() time.Time {
	if c.claims == nil || c.claims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.claims.ExpiresAt.Time
}

// IsExpired reports whether the token carries an expiry that has passed.
func (c *AccessCredential) IsExpired(now time.Time) bool {
	exp := c.ExpiresAt()
	return !exp.IsZero() && now.After(exp)
}
