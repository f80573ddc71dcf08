package domain

import "errors"

// 业务错误（transport 层统一映射为 HTTP 状态）
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBlocked         = errors.New("account blocked")
	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrConflict        = errors.New("conflict")

	// ErrVersionConflict is returned by stores when a conditional write lost the race.
	// Services retry on it and surface ErrConflict once attempts run out.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned by stores when a unique constraint rejected an insert.
	ErrDuplicate = errors.New("duplicate key")
)
