package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/syedmusab/rvm-backend/internal/feedback/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// Postgres persists feedback in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Insert(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedbacks (id, phone_number, feedback, created_at)
		VALUES ($1, $2, $3, $4)`,
		feedback.ID, feedback.PhoneNumber, feedback.Feedback, feedback.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", translate(err))
	}
	return nil
}

func (s *Postgres) ListByPhone(ctx context.Context, phoneNumber string) ([]models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, phone_number, feedback, created_at
		FROM feedbacks
		WHERE phone_number = $1
		ORDER BY created_at DESC, id DESC`, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", translate(err))
	}
	defer rows.Close()

	var out []models.Feedback
	for rows.Next() {
		var f models.Feedback
		if err := rows.Scan(&f.ID, &f.PhoneNumber, &f.Feedback, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", translate(err))
	}
	return out, nil
}

func translate(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
