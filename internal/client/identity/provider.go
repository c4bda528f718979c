package identity

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AttributeEmail is the standard attribute carrying the user's email.
const AttributeEmail = "email"

// Provider is the identity backend used by the session manager.
type Provider interface {
	Register(ctx context.Context, username, password string, attrs map[string]string) error
	Authenticate(ctx context.Context, username, password string) (*Credential, error)
	ConfirmRegistration(ctx context.Context, username, code string) error
	ResendConfirmationCode(ctx context.Context, username string) error
}

// Credential is the outcome of a successful authentication. IDToken is the
// bearer credential accepted by the Bill Board API.
type Credential struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	Claims       Claims
}

// Claims are the id-token claims the client cares about.
type Claims struct {
	Subject  string
	Email    string
	Username string
}

// DecodeClaims reads claims from an id token without verifying its signature.
// The API verifies tokens on every request; the client only needs the values.
func DecodeClaims(idToken string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, mc); err != nil {
		return Claims{}, fmt.Errorf("decode id token: %w", err)
	}

	var c Claims
	c.Subject, _ = mc.GetSubject()
	c.Email, _ = mc["email"].(string)
	c.Username, _ = mc["cognito:username"].(string)
	return c, nil
}
