package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
)

// VerificationTokenRepository handles database operations for email verification tokens
type VerificationTokenRepository struct {
	db DBTX
}

// NewVerificationTokenRepository creates a new VerificationTokenRepository
func NewVerificationTokenRepository(db DBTX) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *VerificationTokenRepository) WithTx(tx pgx.Tx) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: tx}
}

// CreateToken stores a verification token for a profile
func (r *VerificationTokenRepository) CreateToken(ctx context.Context, profileID, token string, expiresAt time.Time) error {
	query, args, err := psql.Insert("email_verification_tokens").
		Columns("profile_id", "token", "expires_at").
		Values(profileID, token, expiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("error creating verification token: %w", err)
	}
	return nil
}

// ConsumeToken deletes token and returns its profile id.
// Expired tokens are deleted too but reported as apperrors.ErrTokenExpired.
func (r *VerificationTokenRepository) ConsumeToken(ctx context.Context, token string, now time.Time) (string, error) {
	query, args, err := psql.Delete("email_verification_tokens").
		Where(squirrel.Eq{"token": token}).
		Suffix("RETURNING profile_id, expires_at").
		ToSql()
	if err != nil {
		return "", fmt.Errorf("error building SQL: %w", err)
	}

	var profileID string
	var expiresAt time.Time
	if err := r.db.QueryRow(ctx, query, args...).Scan(&profileID, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrInvalidEmailToken
		}
		return "", fmt.Errorf("error consuming verification token: %w", err)
	}
	if now.After(expiresAt) {
		return "", apperrors.ErrTokenExpired
	}
	return profileID, nil
}

// DeleteExpiredTokens deletes all tokens that expired before now
func (r *VerificationTokenRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := psql.Delete("email_verification_tokens").
		Where(squirrel.Lt{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
