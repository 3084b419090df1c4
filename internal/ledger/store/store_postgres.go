package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/syedmusab/rvm-backend/internal/ledger/models"
	"github.com/syedmusab/rvm-backend/pkg/platform/sentinel"
)

// Postgres persists the ledger in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Insert(ctx context.Context, event *models.RecyclingEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recycling_events (id, phone_number, user_name, bottles, cups, points, machine_id, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.PhoneNumber, event.UserName, event.Bottles, event.Cups, event.Points, event.MachineID, event.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", translate(err))
	}
	return nil
}

func (s *Postgres) ListByPhone(ctx context.Context, phone string) ([]models.RecyclingEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, phone_number, user_name, bottles, cups, points, machine_id, recorded_at
		FROM recycling_events
		WHERE phone_number = $1
		ORDER BY recorded_at DESC, id DESC`, phone)
	if err != nil {
		return nil, fmt.Errorf("list events by phone: %w", translate(err))
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Postgres) ListAll(ctx context.Context, filter models.EventFilter) ([]models.RecyclingEvent, error) {
	query := `
		SELECT id, phone_number, user_name, bottles, cups, points, machine_id, recorded_at
		FROM recycling_events`
	args := []any{}
	if filter.MachineID != "" {
		query += ` WHERE machine_id = $1`
		args = append(args, filter.MachineID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", translate(err))
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Postgres) FindLatestByPhone(ctx context.Context, phone string) (*models.RecyclingEvent, error) {
	var e models.RecyclingEvent
	err := s.db.QueryRowContext(ctx, `
		SELECT id, phone_number, user_name, bottles, cups, points, machine_id, recorded_at
		FROM recycling_events
		WHERE phone_number = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`, phone,
	).Scan(&e.ID, &e.PhoneNumber, &e.UserName, &e.Bottles, &e.Cups, &e.Points, &e.MachineID, &e.RecordedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find latest event: %w", translate(err))
	}
	return &e, nil
}

func (s *Postgres) BackfillUserName(ctx context.Context, phone, userName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recycling_events
		SET user_name = $2
		WHERE phone_number = $1 AND user_name = ''`, phone, userName)
	if err != nil {
		return 0, fmt.Errorf("backfill username: %w", translate(err))
	}
	return res.RowsAffected()
}

func (s *Postgres) RenameUserName(ctx context.Context, phone, userName string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE recycling_events
		SET user_name = $2
		WHERE phone_number = $1 AND user_name <> $2`, phone, userName)
	if err != nil {
		return 0, fmt.Errorf("rename username: %w", translate(err))
	}
	return res.RowsAffected()
}

func scanEvents(rows *sql.Rows) ([]models.RecyclingEvent, error) {
	var out []models.RecyclingEvent
	for rows.Next() {
		var e models.RecyclingEvent
		if err := rows.Scan(&e.ID, &e.PhoneNumber, &e.UserName, &e.Bottles, &e.Cups, &e.Points, &e.MachineID, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", translate(err))
	}
	return out, nil
}

// translate maps driver-level failures onto sentinels so services can tell
// transient store trouble from everything else.
func translate(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", sentinel.ErrUnavailable, err)
	}
	return err
}
