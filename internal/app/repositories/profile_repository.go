package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/lecturealert/internal/app/models"
	"github.com/yigit/lecturealert/internal/pkg/apperrors"
	"github.com/yigit/lecturealert/internal/pkg/dberrors"
)

const profileEmailConstraint = "profiles_email_key"

var profileColumns = []string{
	"id", "email", "full_name", "role", "password_hash", "email_verified",
	"avatar_url", "created_at", "updated_at",
}

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db DBTX
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *ProfileRepository) WithTx(tx pgx.Tx) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

// Create inserts a profile. ID and timestamps are filled in when empty.
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.CreatedAt, p.UpdatedAt = now, now

	query, args, err := psql.Insert("profiles").
		Columns(profileColumns...).
		Values(p.ID, p.Email, p.FullName, string(p.Role), p.PasswordHash, p.EmailVerified,
			p.AvatarURL, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, profileEmailConstraint) || dberrors.IsUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating profile: %w", err)
	}
	return nil
}

// GetByEmail retrieves a profile by its (case-insensitive) email
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByID retrieves a profile by id
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *ProfileRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Profile, error) {
	query, args, err := psql.Select(profileColumns...).From("profiles").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	p := &models.Profile{}
	var role string
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Email, &p.FullName, &role, &p.PasswordHash, &p.EmailVerified,
		&p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting profile: %w", err)
	}
	p.Role = models.Role(role)
	return p, nil
}

// MarkEmailVerified flags the profile's email as confirmed
func (r *ProfileRepository) MarkEmailVerified(ctx context.Context, id string) error {
	query, args, err := psql.Update("profiles").
		Set("email_verified", true).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error verifying profile email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// CountByRole counts profiles holding role
func (r *ProfileRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	n, err := count(ctx, r.db, countByRoleQuery(role))
	if err != nil {
		return 0, fmt.Errorf("error counting %s profiles: %w", role, err)
	}
	return n, nil
}

func countByRoleQuery(role models.Role) squirrel.SelectBuilder {
	return psql.Select("COUNT(*)").From("profiles").Where(squirrel.Eq{"role": string(role)})
}
