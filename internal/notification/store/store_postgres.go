package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/syedmusab/rvm-backend/internal/notification/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// Postgres persists notifications in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Insert(ctx context.Context, notification *models.BinFullNotification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bin_full_notifications (id, bin_type, machine_id, occurred_at)
		VALUES ($1, $2, $3, $4)`,
		notification.ID, notification.BinType, notification.MachineID, notification.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", translate(err))
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, filter models.NotificationFilter) ([]models.BinFullNotification, error) {
	query := `
		SELECT id, bin_type, machine_id, occurred_at
		FROM bin_full_notifications`
	var (
		conds []string
		args  []any
	)
	if filter.BinType != "" {
		args = append(args, filter.BinType)
		conds = append(conds, fmt.Sprintf("bin_type = $%d", len(args)))
	}
	if filter.MachineID != "" {
		args = append(args, filter.MachineID)
		conds = append(conds, fmt.Sprintf("machine_id = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY occurred_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", translate(err))
	}
	defer rows.Close()

	var out []models.BinFullNotification
	for rows.Next() {
		var n models.BinFullNotification
		if err := rows.Scan(&n.ID, &n.BinType, &n.MachineID, &n.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", translate(err))
	}
	return out, nil
}

func translate(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
