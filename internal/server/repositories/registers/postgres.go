// Package registers provides the PostgreSQL-backed register store. Every
// query is scoped by the owning user id; rows belonging to other users are
// invisible, not forbidden.
package registers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vmatveev/registerd/internal/common"
	"github.com/vmatveev/registerd/internal/dbx"
	"github.com/vmatveev/registerd/internal/server/models"
)

// PostgresRepository implements register storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a register owned by register.UserID and returns it with the
// server-assigned id.
func (r *PostgresRepository) Create(ctx context.Context, register *models.Register) (*models.Register, error) {

	query :=
		`INSERT INTO registers (register, date, label, user_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		register.Register, register.Date, register.Label, register.UserID).Scan(&register.ID, &register.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return register, nil
}

// GetByID returns a single register constrained by id AND owner in one query,
// so a guessed foreign id reads as common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, userID, id int64) (*models.Register, error) {
	query :=
		`SELECT id, user_id, register, date, label, created_at FROM registers
		 WHERE id = $1 AND user_id = $2
		 `

	register := &models.Register{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&register.ID, &register.UserID, &register.Register, &register.Date, &register.Label, &register.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return register, nil
}

// SelectByUser returns all registers for userID in creation order.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID int64) ([]*models.Register, error) {
	query :=
		`SELECT id, user_id, register, date, label, created_at FROM registers
		 WHERE user_id = $1
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select registers: %w", err)
	}
	defer rows.Close()

	var result []*models.Register
	for rows.Next() {
		var item models.Register
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Register, &item.Date, &item.Label, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
