package ez

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-gin-storefront/internal/domain"
)

func TestFromDomain(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrUnauthorized, 401},
		{domain.ErrBlocked, 403},
		{fmt.Errorf("%w: requires role admin", domain.ErrForbidden), 403},
		{domain.ErrUserNotFound, 404},
		{fmt.Errorf("%w: p1", domain.ErrProductNotFound), 404},
		{fmt.Errorf("%w: bad qty", domain.ErrInvalidArgument), 400},
		{domain.ErrEmptyCart, 400},
		{domain.ErrConflict, 409},
		{BadRequest("x"), 400},
		{errors.New("db down"), 500},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, FromDomain(tc.err).Code, tc.err.Error())
	}
	assert.Nil(t, FromDomain(nil))
}

func TestFromDomainHidesInternalDetail(t *testing.T) {
	ae := FromDomain(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal error", ae.Msg)
	assert.Error(t, ae.Err)
}
