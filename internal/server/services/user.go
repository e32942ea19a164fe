// Package services contains server-side business logic. This file implements
// UserService, which handles signup and credential verification.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vmatveev/registerd/internal/common"
	"github.com/vmatveev/registerd/internal/cryptox"
	"github.com/vmatveev/registerd/internal/server/models"
	"github.com/vmatveev/registerd/internal/server/repositories/repomanager"
)

// decoyPassword feeds the bcrypt compare that runs when a login names an
// unknown user, so the miss costs the same as a wrong password.
const decoyPassword = "registerd-decoy"

// UserService provides authentication-related operations:
// - SignUp: hash the password and create the user if the name is free
// - Authenticate: verify credentials and return the user id
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	decoyHash   string
}

// NewUserService constructs a UserService using the repository manager.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager) (*UserService, error) {
	decoyHash, err := cryptox.HashPassword(decoyPassword)
	if err != nil {
		return nil, err
	}
	return &UserService{db: db, repomanager: m, decoyHash: decoyHash}, nil
}

// SignUp creates a new user with the given username and password. The hash is
// computed before the insert; the store's unique constraint decides the winner
// under concurrent signups, surfacing as common.ErrUsernameTaken.
func (s *UserService) SignUp(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{Username: username, PasswordHash: hash}
	repo := s.repomanager.Users(s.db)

	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	return user, nil
}

// Authenticate verifies the username/password pair and returns the user id.
// An unknown username and a wrong password are indistinguishable to the
// caller: both return common.ErrInvalidCredentials, and the unknown-user path
// still burns a bcrypt compare so the two cannot be told apart by timing.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_, _ = cryptox.VerifyPassword(password, s.decoyHash)
			return 0, common.ErrInvalidCredentials
		}
		return 0, common.ErrInternal
	}

	ok, err := cryptox.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		// malformed stored hash is an operational fault, not a bad login
		return 0, common.ErrInternal
	}
	if !ok {
		return 0, common.ErrInvalidCredentials
	}

	return user.ID, nil
}
