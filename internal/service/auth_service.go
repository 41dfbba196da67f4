package service

import (
	"context"
	"fmt"

	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService against the split user
// store: the credentials file holds the password hash, the users table
// holds role and display name.
type AuthServiceImpl struct {
	credStore ports.CredentialStore
	userRepo  ports.UserRepository
	hashSvc   ports.HashService
	tokenSvc  ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	credStore ports.CredentialStore,
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		credStore: credStore,
		userRepo:  userRepo,
		hashSvc:   hashSvc,
		tokenSvc:  tokenSvc,
	}
}

// Login validates credentials and returns a signed session token.
// Unknown usernames and wrong passwords produce the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	entry, found, err := s.credStore.Get(username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("read credentials: %w", err))
	}
	if !found {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, entry.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		// Credential entry without a user row: the stores diverged.
		return nil, apperror.ErrInvalidCredentials()
	}

	name := user.Name
	if name == "" {
		name = entry.Name
	}
	role := user.Role
	if !role.Valid() {
		role = domain.RoleOperator
	}

	token, expiry, err := s.tokenSvc.Generate(username, name, role)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.LoginResult{
		Token:    token,
		Expiry:   expiry,
		Username: username,
		Name:     name,
		Role:     role,
	}, nil
}
