package registers

import (
	"context"

	"github.com/vmatveev/registerd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, register *models.Register) (*models.Register, error)
	GetByID(ctx context.Context, userID, id int64) (*models.Register, error)
	SelectByUser(ctx context.Context, userID int64) ([]*models.Register, error)
}
