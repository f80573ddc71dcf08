package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/logger"
	"go-gin-storefront/internal/core/metrics"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/pkg/utils"
)

type AccountService struct {
	users domain.UserRepository
	log   *zap.Logger
}

func NewAccountService(users domain.UserRepository, l *zap.Logger) *AccountService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AccountService{users: users, log: l}
}

// ResolveOrCreate returns the record for a verified identity, provisioning it on the
// first request. Blocked records fail with ErrBlocked.
func (s *AccountService) ResolveOrCreate(ctx context.Context, id auth.Identity) (*domain.User, error) {
	sub := strings.TrimSpace(id.SubjectID)
	if sub == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := s.users.FindBySubject(ctx, sub)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		if u, err = s.provision(ctx, sub, id); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u.IsBlocked {
		return nil, domain.ErrBlocked
	}
	return u, nil
}

func (s *AccountService) provision(ctx context.Context, sub string, id auth.Identity) (*domain.User, error) {
	email := domain.NormalizeEmail(id.Email)
	u := &domain.User{
		ID:        utils.NewID(),
		SubjectID: sub,
		Email:     email,
		Name:      domain.DisplayNameFor(id.DisplayName, email),
		AvatarURL: id.AvatarURL,
		Role:      domain.RoleUser,
		Cart:      domain.Cart{},
		OrderIDs:  []string{},
	}
	err := s.users.Create(ctx, u)
	if err == nil {
		metrics.UsersProvisioned.Inc()
		logger.FromContext(ctx, s.log).Info("user provisioned", zap.String("user_id", u.ID), zap.String("subject", sub))
		return u, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 并发兜底：唯一冲突 → 再查一次
	existing, e2 := s.users.FindBySubject(ctx, sub)
	if e2 == nil {
		return existing, nil
	}
	if !errors.Is(e2, domain.ErrUserNotFound) || email == "" {
		return nil, fmt.Errorf("reload user after duplicate: %w", e2)
	}

	// subject is free, so the email belongs to another account; keep the email off this one
	logger.FromContext(ctx, s.log).Warn("email already linked to another account, provisioning without email",
		zap.String("subject", sub))
	u.ID, u.Email = utils.NewID(), ""
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return s.users.FindBySubject(ctx, sub)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.UsersProvisioned.Inc()
	return u, nil
}

func (s *AccountService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies a self-service patch; role, block state, cart and orders are
// never touched here.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, p domain.ProfilePatch) (*domain.User, error) {
	if p.Name != nil && len(strings.TrimSpace(*p.Name)) > 128 {
		return nil, fmt.Errorf("%w: name too long", domain.ErrInvalidArgument)
	}
	return mutateUser(ctx, s.users, userID, "profile.update", func(u *domain.User) error {
		p.Apply(u)
		return nil
	})
}

func (s *AccountService) ListUsers(ctx context.Context, q domain.UserQuery) ([]domain.User, int64, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.users.List(ctx, q)
}

// SetBlocked is an administrative action.
func (s *AccountService) SetBlocked(ctx context.Context, userID string, blocked bool) (*domain.User, error) {
	u, err := mutateUser(ctx, s.users, userID, "user.block", func(u *domain.User) error {
		u.IsBlocked = blocked
		return nil
	})
	if err == nil {
		logger.FromContext(ctx, s.log).Info("user block state changed", zap.String("user_id", userID), zap.Bool("blocked", blocked))
	}
	return u, err
}

// SetRole is an administrative action; there is no self-service path to it.
func (s *AccountService) SetRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidArgument, role)
	}
	u, err := mutateUser(ctx, s.users, userID, "user.role", func(u *domain.User) error {
		u.Role = role
		return nil
	})
	if err == nil {
		logger.FromContext(ctx, s.log).Info("user role changed", zap.String("user_id", userID), zap.String("role", string(role)))
	}
	return u, err
}
