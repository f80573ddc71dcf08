package service

import (
	"context"
	"errors"
	"fmt"

	"go-gin-storefront/internal/core/metrics"
	"go-gin-storefront/internal/domain"
)

// maxWriteAttempts bounds optimistic read-modify-write retries per request.
const maxWriteAttempts = 5

// withRetry reruns fn while it loses version races; fn must re-read its inputs.
func withRetry(ctx context.Context, op string, fn func() error) error {
	for i := 0; i < maxWriteAttempts; i++ {
		err := fn()
		if !errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		metrics.WriteConflicts.WithLabelValues(op).Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %s lost %d concurrent updates", domain.ErrConflict, op, maxWriteAttempts)
}

// mutateUser loads the current record, applies fn and saves it conditionally.
func mutateUser(ctx context.Context, users domain.UserRepository, userID, op string, fn func(u *domain.User) error) (*domain.User, error) {
	var out *domain.User
	err := withRetry(ctx, op, func() error {
		u, err := users.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		if err := users.Save(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	return out, err
}
