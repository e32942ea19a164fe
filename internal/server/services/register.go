package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vmatveev/registerd/internal/common"
	"github.com/vmatveev/registerd/internal/server/models"
	"github.com/vmatveev/registerd/internal/server/repositories/repomanager"
)

// RegisterInput carries the client-supplied fields of a new register. The
// owner never travels in here; it comes from the authenticated session.
type RegisterInput struct {
	Register string
	Date     string
	Label    string
}

// RegisterService provides owner-scoped access to saved registers.
type RegisterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewRegisterService constructs a RegisterService using the repository manager.
func NewRegisterService(db *sql.DB, m repomanager.RepositoryManager) *RegisterService {
	return &RegisterService{db: db, repomanager: m}
}

// List returns all registers owned by userID in creation order.
func (s *RegisterService) List(ctx context.Context, userID int64) ([]*models.Register, error) {
	repo := s.repomanager.Registers(s.db)

	result, err := repo.SelectByUser(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

// Get returns the register with the given id if userID owns it;
// absent and foreign rows both come back as common.ErrNotFound.
func (s *RegisterService) Get(ctx context.Context, userID, id int64) (*models.Register, error) {
	repo := s.repomanager.Registers(s.db)

	register, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, common.ErrInternal
	}
	return register, nil
}

// Create stores a new register owned by userID and returns it with the
// server-assigned id.
func (s *RegisterService) Create(ctx context.Context, userID int64, input RegisterInput) (*models.Register, error) {
	repo := s.repomanager.Registers(s.db)

	register := &models.Register{
		UserID:   userID,
		Register: input.Register,
		Date:     input.Date,
		Label:    input.Label,
	}

	register, err := repo.Create(ctx, register)
	if err != nil {
		return nil, common.ErrInternal
	}
	return register, nil
}
