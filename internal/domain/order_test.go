package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceCart(t *testing.T) {
	cart := Cart{{ProductID: "P1", Quantity: 2}, {ProductID: "P2", Quantity: 3}}
	prices := map[string]Product{
		"P1": {ID: "P1", Price: 1000, Active: true},
		"P2": {ID: "P2", Price: 199, Active: true},
	}

	items, total, err := PriceCart(cart, prices)
	require.NoError(t, err)

	assert.Equal(t, []OrderItem{
		{ProductID: "P1", Quantity: 2, PriceAtPurchase: 1000},
		{ProductID: "P2", Quantity: 3, PriceAtPurchase: 199},
	}, items)
	assert.Equal(t, Money(2597), total)
}

func TestPriceCartEmpty(t *testing.T) {
	_, _, err := PriceCart(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPriceCartMissingOrInactiveProduct(t *testing.T) {
	cart := Cart{{ProductID: "P1", Quantity: 1}}

	_, _, err := PriceCart(cart, map[string]Product{})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, _, err = PriceCart(cart, map[string]Product{"P1": {ID: "P1", Price: 5}})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMoneyArithmetic(t *testing.T) {
	v, err := Money(1999).Times(3)
	require.NoError(t, err)
	assert.Equal(t, Money(5997), v)
	assert.Equal(t, "59.97", v.String())
	assert.Equal(t, "0.05", Money(5).String())

	_, err = Money(math.MaxInt64 / 2).Times(3)
	assert.ErrorIs(t, err, ErrMoneyOverflow)

	_, err = Money(math.MaxInt64).Plus(1)
	assert.ErrorIs(t, err, ErrMoneyOverflow)
}

func TestAuthorize(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	user := &User{Role: RoleUser}

	assert.NoError(t, Authorize(admin, RoleAdmin))
	assert.ErrorIs(t, Authorize(user, RoleAdmin), ErrForbidden)
	assert.ErrorIs(t, Authorize(&User{Role: RoleAdmin, IsBlocked: true}, RoleAdmin), ErrBlocked)
	assert.ErrorIs(t, Authorize(nil, RoleUser), ErrUnauthorized)

	assert.True(t, RoleAdmin.Can(CapReadAll))
	assert.False(t, RoleUser.Can(CapReadAll))
	assert.True(t, RoleUser.Can(CapReadOwn))
}

func TestDisplayNameFor(t *testing.T) {
	assert.Equal(t, "Ann", DisplayNameFor(" Ann ", "x@y.z"))
	assert.Equal(t, "bob", DisplayNameFor("", "bob@example.com"))
	assert.Equal(t, "User", DisplayNameFor("", ""))
}
