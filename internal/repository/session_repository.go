package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/openclass/portal-service/internal/models"
)

// SessionStore persists authenticated sessions server-side; the token
// handed to the client is an opaque key into this store.
type SessionStore interface {
	Save(ctx context.Context, session *models.Session) error
	Load(ctx context.Context, token string) (*models.Session, error)
	Clear(ctx context.Context, token string) error
	ClearExpired(ctx context.Context) (int64, error)
}

type sessionRepository struct {
	*PostgresRepository
}

func NewSessionRepository(db *sql.DB, logger zerolog.Logger) SessionStore {
	return &sessionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *sessionRepository) Save(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, email, is_admin, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.Email,
		session.IsAdmin,
		session.ExpiresAt,
		session.CreatedAt,
	)

	return err
}

func (r *sessionRepository) Load(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, email, is_admin, expires_at, created_at
		FROM sessions
		WHERE token = $1
	`

	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.Email,
		&session.IsAdmin,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return session, err
}

func (r *sessionRepository) Clear(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

func (r *sessionRepository) ClearExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`
	result, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
