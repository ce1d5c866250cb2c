package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vibe-gaming/passwordless/internal/db"
	"github.com/vibe-gaming/passwordless/internal/domain"

	"github.com/jmoiron/sqlx"
)

type identityRepository struct {
	db *sqlx.DB
}

func newIdentityRepository(db *sqlx.DB) *identityRepository {
	return &identityRepository{
		db: db,
	}
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const op = "repository.identity.Create"

	const query = `
	INSERT INTO identity (id, email, name, email_verified, created_at, updated_at)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		identity.ID,
		identity.Email,
		identity.Name,
		identity.EmailVerified,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert identity failed: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected failed: %w", op, err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const op = "repository.identity.GetByEmail"

	const query = `
	SELECT id, email, name, email_verified, created_at, updated_at FROM identity WHERE email = ?;
	`
	var identity domain.Identity
	if err := r.db.GetContext(ctx, &identity, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select identity by email failed: %w", op, err)
	}

	return &identity, nil
}

func (r *identityRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	const op = "repository.identity.GetOneByID"

	const query = `
	SELECT id, email, name, email_verified, created_at, updated_at FROM identity WHERE id = uuid_to_bin(?);
	`
	var identity domain.Identity
	if err := r.db.GetContext(ctx, &identity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select identity by id failed: %w", op, err)
	}

	return &identity, nil
}
