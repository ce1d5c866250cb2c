package repository

import (
	"context"
	"fmt"

	"github.com/vibe-gaming/passwordless/internal/domain"

	"github.com/jmoiron/sqlx"
)

type sessionRepository struct {
	db *sqlx.DB
}

func newSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{
		db: db,
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	const query = `
				INSERT INTO session (id, identity_id, user_agent, ip, issued_at, expires_at)
				VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?)
				`
	_, err := r.db.ExecContext(ctx, query, session.ID, session.IdentityID, session.UserAgent, session.IP, session.IssuedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db insert session: %w", err)
	}

	return nil
}
