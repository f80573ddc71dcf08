package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the identity claims of provider ID tokens (sub, email, name, picture).
type Claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) identity() (Identity, error) {
	sub := strings.TrimSpace(c.Subject)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return Identity{
		SubjectID:   sub,
		Email:       strings.ToLower(strings.TrimSpace(c.Email)),
		DisplayName: strings.TrimSpace(c.Name),
		AvatarURL:   c.Picture,
	}, nil
}

// JWTer signs and verifies HS256 tokens with a shared secret. Used in local/dev setups
// and tests where no external identity provider is reachable.
type JWTer struct {
	Secret   []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

func (j *JWTer) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		Email:   id.Email,
		Name:    id.DisplayName,
		Picture: id.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.SubjectID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	if j.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.Audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithLeeway(60 * time.Second),
		jwt.WithExpirationRequired(),
	}
	if j.Audience != "" {
		opts = append(opts, jwt.WithAudience(j.Audience))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrInvalidToken
}

func (j *JWTer) Verify(_ context.Context, token string) (Identity, error) {
	c, err := j.Parse(token)
	if err != nil {
		return Identity{}, err
	}
	return c.identity()
}
