package ez

import (
	"github.com/gin-gonic/gin"

	"go-gin-storefront/internal/domain"
)

const ctxUserKey = "currentUser"

// SetUser stores the authenticated user record on the request.
func SetUser(c *gin.Context, u *domain.User) {
	c.Set(ctxUserKey, u)
	c.Set("userId", u.ID)
	c.Set("role", string(u.Role))
}

// CurrentUser returns the user placed by the auth middleware, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
