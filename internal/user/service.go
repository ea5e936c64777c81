package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"velora-api/internal/auth"
	"velora-api/internal/logger"
	"velora-api/internal/metrics"
	"velora-api/internal/utils"
	"velora-api/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Generate(userID uuid.UUID) (string, error)
	Parse(token string) (*auth.Claims, error)
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*User, error)
	Me(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*AuthResult, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	EnsureAdmin(ctx context.Context, seed AdminSeed) (*User, bool, error)
}

type service struct {
	repo    Repository
	tokens  TokenIssuer
	metrics *metrics.Registry
}

func NewService(repo Repository, tokens TokenIssuer, reg *metrics.Registry) Service {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &service{repo: repo, tokens: tokens, metrics: reg}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
		zap.String("email", input.Email),
	)

	if err := validation.Struct(input); err != nil {
		log.Warn("register validation failed", zap.Error(err))
		return nil, err
	}

	_, err := s.repo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		log.Warn("user already exists")
		return nil, ErrEmailExists
	case !errors.Is(err, ErrNotFound):
		log.Error("failed to look up email", zap.Error(err))
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashed,
		Role:     auth.RoleCustomer,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID.String()), zap.Error(err))
		return nil, err
	}

	s.metrics.UsersRegistered.Inc()
	log.Info("user registered", zap.String("user_id", u.ID.String()))

	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
		zap.String("email", input.Email),
	)

	if err := validation.Struct(input); err != nil {
		log.Warn("login validation failed", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, input.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, s.credentialFailure(log, metrics.ReasonUserNotFound)
	}
	if err != nil {
		log.Error("failed to look up user", zap.Error(err))
		return nil, err
	}

	if !auth.CheckPassword(input.Password, u.Password) {
		return nil, s.credentialFailure(log, metrics.ReasonInvalidPassword)
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		log.Error("failed to generate jwt", zap.Error(err))
		return nil, err
	}

	log.Info("user logged in", zap.String("user_id", u.ID.String()))
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) credentialFailure(log *zap.Logger, reason string) error {
	s.metrics.AuthFailures.With(reason).Inc()
	log.Warn("login failed", zap.String("reason", reason))
	return &CredentialError{Reason: reason}
}

// Authenticate resolves a bearer token to the stored user. A token whose user
// no longer exists is treated as invalid.
func (s *service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}

	u, err := s.repo.FindByID(ctx, claims.UserUUID())
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: user no longer exists", auth.ErrInvalidToken)
	}
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) Me(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies a partial patch and always issues a fresh token.
func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*AuthResult, error) {
	patch.Name = strings.TrimSpace(patch.Name)
	patch.Email = strings.TrimSpace(patch.Email)
	patch.Phone = strings.TrimSpace(patch.Phone)

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProfile"),
		zap.String("user_id", id.String()),
	)

	if err := validation.Struct(patch); err != nil {
		log.Warn("profile validation failed", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != "" {
		u.Name = patch.Name
	}
	if patch.Email != "" && patch.Email != u.Email {
		other, err := s.repo.FindByEmail(ctx, patch.Email)
		switch {
		case err == nil && other.ID != u.ID:
			log.Warn("email already taken")
			return nil, ErrEmailExists
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, err
		}
		u.Email = patch.Email
	}
	if patch.Phone != "" {
		u.Phone = utils.StrPtr(patch.Phone)
	}
	if patch.Address != nil && !patch.Address.IsZero() {
		a := patch.Address.Normalize()
		u.Address = &a
	}
	if patch.Password != "" {
		log.Info("password update requested")
		hashed, err := auth.HashPassword(patch.Password)
		if err != nil {
			log.Error("failed to hash password", zap.Error(err))
			return nil, err
		}
		u.Password = hashed
	}

	if err := s.repo.Update(ctx, u); err != nil {
		log.Error("failed to update user", zap.Error(err))
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		log.Error("failed to generate jwt", zap.Error(err))
		return nil, err
	}

	log.Info("profile updated")
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteUser"),
		zap.String("user_id", id.String()),
	)

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == auth.RoleAdmin {
		log.Warn("refusing to delete admin account")
		return ErrCannotDeleteAdmin
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info("user deleted", zap.String("email", u.Email))
	return nil
}

// EnsureAdmin creates the bootstrap admin unless an admin already exists.
// The bool result reports whether an account was created.
func (s *service) EnsureAdmin(ctx context.Context, seed AdminSeed) (*User, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "EnsureAdmin"),
	)

	exists, err := s.repo.ExistsByRole(ctx, auth.RoleAdmin)
	if err != nil {
		log.Error("failed to check for admin", zap.Error(err))
		return nil, false, err
	}
	if exists {
		log.Info("admin user already exists")
		return nil, false, nil
	}

	hashed, err := auth.HashPassword(seed.Password)
	if err != nil {
		return nil, false, err
	}

	u := &User{
		Name:     seed.Name,
		Email:    seed.Email,
		Password: hashed,
		Role:     auth.RoleAdmin,
	}
	if seed.Phone != "" {
		u.Phone = utils.StrPtr(seed.Phone)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		log.Error("failed to create admin user", zap.Error(err))
		return nil, false, err
	}

	log.Info("admin user created", zap.String("email", u.Email))
	return u, true, nil
}
