package auth

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what the identity provider vouches for. SubjectID is the only trusted
// answer to "who is calling".
type Identity struct {
	SubjectID   string
	Email       string
	DisplayName string
	AvatarURL   string
}

// Verifier checks an opaque bearer credential.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}
