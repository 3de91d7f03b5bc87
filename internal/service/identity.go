// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"guild-backend/internal/apperr"
	"guild-backend/internal/auth"
	"guild-backend/internal/model"
	"guild-backend/internal/repository"
)

// IdentityService handles registration, login and profile management.
type IdentityService struct {
	userRepo  *repository.UserRepository
	squadRepo *repository.SquadRepository
	hasher    *auth.Hasher
	tokens    *auth.TokenManager
}

// NewIdentityService creates a new IdentityService instance.
func NewIdentityService(
	userRepo *repository.UserRepository,
	squadRepo *repository.SquadRepository,
	hasher *auth.Hasher,
	tokens *auth.TokenManager,
) *IdentityService {
	return &IdentityService{
		userRepo:  userRepo,
		squadRepo: squadRepo,
		hasher:    hasher,
		tokens:    tokens,
	}
}

// ValidateRegistration checks the registration input against the account
// rules: username at least 3 characters, password at least 6, and a
// minimally plausible email.
func ValidateRegistration(username, email, password, gameID string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return apperr.New(apperr.KindValidation, "username must be at least 3 characters")
	}
	if len(password) < 6 {
		return apperr.New(apperr.KindValidation, "password must be at least 6 characters")
	}
	if !strings.Contains(email, "@") {
		return apperr.New(apperr.KindValidation, "a valid email is required")
	}
	if strings.TrimSpace(gameID) == "" {
		return apperr.New(apperr.KindValidation, "gameId is required")
	}
	return nil
}

// Register creates a player account and returns it with a session token.
func (s *IdentityService) Register(ctx context.Context, username, email, password, gameID string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := ValidateRegistration(username, email, password, gameID); err != nil {
		return nil, "", err
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	if exists {
		return nil, "", apperr.New(apperr.KindConflict, "user already exists")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	user, err := s.userRepo.Create(ctx, &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RolePlayer,
		GameID:       gameID,
	})
	if err != nil {
		// The existence pre-check can race with a concurrent registration;
		// the unique constraints are the final word.
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, "", apperr.New(apperr.KindConflict, "user already exists")
		}
		return nil, "", apperr.Internal(err)
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, "", apperr.Internal(fmt.Errorf("failed to issue token: %w", err))
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a session token.
// The same message covers an unknown email and a wrong password so the
// response does not reveal which accounts exist.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", apperr.New(apperr.KindUnauthorized, "invalid credentials")
		}
		return nil, "", apperr.Internal(err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, "", apperr.New(apperr.KindUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return nil, "", apperr.Internal(fmt.Errorf("failed to issue token: %w", err))
	}
	return user, token, nil
}

// Profile retrieves a user with their squad reference resolved.
func (s *IdentityService) Profile(ctx context.Context, userID uuid.UUID) (*model.UserWithSquad, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal(err)
	}
	return s.resolveSquad(ctx, user)
}

// UpdateProfile overwrites the supplied profile fields for the user.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID uuid.UUID, username, gameID string, kills, deaths, wins, matches int) (*model.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, strings.TrimSpace(username), gameID, kills, deaths, wins, matches)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		case errors.Is(err, repository.ErrDuplicateUser):
			return nil, apperr.New(apperr.KindConflict, "username already taken")
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// ListUsers retrieves every user sorted by weekly score descending with
// squad references resolved. Password hashes never leave the model's JSON.
func (s *IdentityService) ListUsers(ctx context.Context) ([]*model.UserWithSquad, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	resolved := make([]*model.UserWithSquad, 0, len(users))
	for _, u := range users {
		uws, err := s.resolveSquad(ctx, u)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, uws)
	}
	return resolved, nil
}

func (s *IdentityService) resolveSquad(ctx context.Context, user *model.User) (*model.UserWithSquad, error) {
	out := &model.UserWithSquad{User: user}
	if user.SquadID == nil {
		return out, nil
	}
	squad, err := s.squadRepo.GetByID(ctx, *user.SquadID)
	if err != nil {
		if errors.Is(err, repository.ErrSquadNotFound) {
			// Dangling reference; treat as no squad rather than failing the read.
			return out, nil
		}
		return nil, apperr.Internal(err)
	}
	out.Squad = squad
	return out, nil
}
