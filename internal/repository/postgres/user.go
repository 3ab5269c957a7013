package postgres

import (
	"context"
	"database/sql"

	domainUser "github.com/lettercounsel/lettercounsel/internal/domain/user"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/logger"
	"github.com/lettercounsel/lettercounsel/internal/postgres"
	"github.com/lettercounsel/lettercounsel/internal/types"
)

type userRepository struct {
	db  postgres.IDB
	log *logger.Logger
}

func NewUserRepository(db postgres.IDB, log *logger.Logger) domainUser.Repository {
	return &userRepository{db: db, log: log}
}

const userColumns = `id, email, full_name, role, status, created_at, updated_at, created_by, updated_by`

func (r *userRepository) Get(ctx context.Context, id string) (*domainUser.User, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND status != $2`,
		id, types.StatusDeleted,
	)
	return r.scanOne(row, map[string]interface{}{"user_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	row := r.db.Querier(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND status != $2`,
		email, types.StatusDeleted,
	)
	return r.scanOne(row, map[string]interface{}{"email": email})
}

func (r *userRepository) scanOne(row *sql.Row, details map[string]interface{}) (*domainUser.User, error) {
	var u domainUser.User
	err := row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role,
		&u.Status, &u.CreatedAt, &u.UpdatedAt, &u.CreatedBy, &u.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, ierr.NewError("user not found").
			WithHint("User not found").
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get user").
			Mark(ierr.ErrDatabase)
	}
	return &u, nil
}
