package service

import (
	"context"
	"fmt"

	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"

	"github.com/rs/zerolog"
)

// UserServiceImpl implements ports.UserService. User identity is split
// across the users table and the credentials file; Create and Delete hold
// the relational change in an open transaction while the file is rewritten,
// and compensate the file on commit failure.
type UserServiceImpl struct {
	userRepo   ports.UserRepository
	fiatRepo   ports.FiatTransactionRepository
	cryptoRepo ports.CryptoTransactionRepository
	credStore  ports.CredentialStore
	transactor ports.DBTransactor
	hashSvc    ports.HashService
	log        zerolog.Logger
}

// NewUserService creates a new UserServiceImpl.
func NewUserService(
	userRepo ports.UserRepository,
	fiatRepo ports.FiatTransactionRepository,
	cryptoRepo ports.CryptoTransactionRepository,
	credStore ports.CredentialStore,
	transactor ports.DBTransactor,
	hashSvc ports.HashService,
	log zerolog.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userRepo:   userRepo,
		fiatRepo:   fiatRepo,
		cryptoRepo: cryptoRepo,
		credStore:  credStore,
		transactor: transactor,
		hashSvc:    hashSvc,
		log:        log,
	}
}

// List returns all users ordered by username.
func (s *UserServiceImpl) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// Create adds a user to both stores as a unit. Duplicates in either store
// are rejected before anything is written.
func (s *UserServiceImpl) Create(ctx context.Context, req ports.CreateUserRequest) (*domain.User, error) {
	if !req.Role.Valid() {
		return nil, apperror.Validation("role must be operator or admin")
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}
	_, found, err := s.credStore.Get(req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check credentials: %w", err))
	}
	if found {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		Username: req.Username,
		Name:     req.Name,
		Role:     req.Role,
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.Create(ctx, tx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user row: %w", err))
	}

	// The file write happens inside the open transaction: if it fails the
	// row is rolled back and neither store changed.
	if err := s.credStore.Put(req.Username, ports.CredentialEntry{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
	}); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("write credentials: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		// Compensate: the file already holds the entry, best-effort remove.
		if rmErr := s.credStore.Remove(req.Username); rmErr != nil {
			s.log.Error().Err(rmErr).Str("username", req.Username).
				Msg("failed to compensate credentials file after commit failure")
		}
		return nil, apperror.InternalError(fmt.Errorf("commit user create: %w", err))
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user created")
	return user, nil
}

// Delete removes a user from both stores. Self-deletion and users with
// ledger rows (fiat or crypto) are rejected.
func (s *UserServiceImpl) Delete(ctx context.Context, actingUsername, username string) error {
	if actingUsername == username {
		return apperror.ErrSelfDelete()
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrUserNotFound()
	}

	fiatCount, err := s.fiatRepo.CountByOperator(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count fiat transactions: %w", err))
	}
	cryptoCount, err := s.cryptoRepo.CountByOperator(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count crypto transactions: %w", err))
	}
	if fiatCount > 0 || cryptoCount > 0 {
		return apperror.ErrUserHasTransactions()
	}

	entry, hadEntry, err := s.credStore.Get(username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("read credentials: %w", err))
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.Delete(ctx, tx, username); err != nil {
		return apperror.InternalError(fmt.Errorf("delete user row: %w", err))
	}
	if err := s.credStore.Remove(username); err != nil {
		return apperror.InternalError(fmt.Errorf("remove credentials: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		// Compensate: restore the removed file entry, best-effort.
		if hadEntry {
			if putErr := s.credStore.Put(username, *entry); putErr != nil {
				s.log.Error().Err(putErr).Str("username", username).
					Msg("failed to restore credentials file after commit failure")
			}
		}
		return apperror.InternalError(fmt.Errorf("commit user delete: %w", err))
	}

	s.log.Info().Str("username", username).Str("deleted_by", actingUsername).Msg("user deleted")
	return nil
}
