package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/logger"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/transport/http/ez"
)

// UserResolver maps a verified identity to the stored user record.
type UserResolver interface {
	ResolveOrCreate(ctx context.Context, id auth.Identity) (*domain.User, error)
}

// Authenticate verifies the bearer token and loads (or provisions) the caller's record.
// Identity only ever comes from the verified token, never from request parameters.
func Authenticate(v auth.Verifier, users UserResolver, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			ez.Fail(c, l, ez.Unauthorized("missing token"))
			return
		}
		id, err := v.Verify(c.Request.Context(), tok)
		if err != nil {
			logger.FromContext(c.Request.Context(), l).Debug("token rejected", zap.Error(err))
			ez.Fail(c, l, ez.Unauthorized("invalid token"))
			return
		}
		u, err := users.ResolveOrCreate(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrBlocked) {
				ez.Fail(c, l, ez.Forbidden("account blocked"))
				return
			}
			ez.Fail(c, l, err)
			return
		}
		ez.SetUser(c, u)
		c.Next()
	}
}

// RequireRole gates a whole group on the caller's role.
func RequireRole(role domain.Role, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := domain.Authorize(ez.CurrentUser(c), role); err != nil {
			ez.Fail(c, l, err)
			return
		}
		c.Next()
	}
}
