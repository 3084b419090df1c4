package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/syedmusab/rvm-backend/internal/profile/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// Postgres persists profiles in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, profile *models.UserProfile) error {
	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = profile.CreatedAt
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (phone_number, user_name, age, gender, national_id, profile_pic, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		profile.PhoneNumber, profile.UserName, profile.Age, profile.Gender, profile.NationalID, profile.ProfilePic, profile.CreatedAt, updatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create profile: %w", translate(err))
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, phoneNumber string, update models.ProfileUpdate) (*models.UserProfile, error) {
	// Nil update fields come through as SQL NULLs; COALESCE keeps the
	// stored value for those.
	var p models.UserProfile
	err := s.db.QueryRowContext(ctx, `
		UPDATE user_profiles
		SET user_name   = COALESCE($2, user_name),
		    age         = COALESCE($3, age),
		    profile_pic = COALESCE($4, profile_pic),
		    updated_at  = $5
		WHERE phone_number = $1
		RETURNING phone_number, user_name, age, gender, national_id, profile_pic, created_at, updated_at`,
		phoneNumber, update.UserName, update.Age, update.ProfilePic, time.Now().UTC(),
	).Scan(&p.PhoneNumber, &p.UserName, &p.Age, &p.Gender, &p.NationalID, &p.ProfilePic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", translate(err))
	}
	return &p, nil
}

func (s *Postgres) FindByPhone(ctx context.Context, phoneNumber string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT phone_number, user_name, age, gender, national_id, profile_pic, created_at, updated_at
		FROM user_profiles
		WHERE phone_number = $1`, phoneNumber,
	).Scan(&p.PhoneNumber, &p.UserName, &p.Age, &p.Gender, &p.NationalID, &p.ProfilePic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", translate(err))
	}
	return &p, nil
}

func (s *Postgres) FindByPhones(ctx context.Context, phoneNumbers []string) ([]models.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT phone_number, user_name, age, gender, national_id, profile_pic, created_at, updated_at
		FROM user_profiles
		WHERE phone_number = ANY($1)`, pq.Array(phoneNumbers))
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", translate(err))
	}
	defer rows.Close()

	var out []models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.PhoneNumber, &p.UserName, &p.Age, &p.Gender, &p.NationalID, &p.ProfilePic, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", translate(err))
	}
	return out, nil
}

func (s *Postgres) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_profiles WHERE phone_number = $1)`, phoneNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check profile exists: %w", translate(err))
	}
	return exists, nil
}

func translate(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
