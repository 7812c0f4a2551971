package window

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tashiscool/alovoa-sub007/internal/pair"
)

// uniqueViolation is the PostgreSQL error code raised by the partial
// unique index on (user_a, user_b) over non-terminal statuses.
const uniqueViolation = "23505"

const windowColumns = `id, user_a, user_b, status, user_a_confirmed, user_b_confirmed,
	extension_count, extension_requested_by, COALESCE(prior_status, ''),
	reminder_sent, created_at, expires_at, updated_at`

// PostgresStore is the pgx implementation of Store over the
// match_windows table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWindow(row rowScanner) (*Window, error) {
	var (
		w           Window
		status      string
		priorStatus string
	)
	err := row.Scan(
		&w.ID, &w.UserA, &w.UserB, &status, &w.UserAConfirmed, &w.UserBConfirmed,
		&w.ExtensionCount, &w.ExtensionRequestedBy, &priorStatus,
		&w.ReminderSent, &w.CreatedAt, &w.ExpiresAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.Status = Status(status)
	w.PriorStatus = Status(priorStatus)
	return &w, nil
}

func (s *PostgresStore) Create(ctx context.Context, w Window) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_windows
		   (id, user_a, user_b, status, user_a_confirmed, user_b_confirmed,
		    extension_count, extension_requested_by, prior_status,
		    reminder_sent, created_at, expires_at, updated_at)
		 VALUES ($1, $2, $3, $4::match_window_status, $5, $6, $7, $8, NULLIF($9, ''), $10, $11, $12, $12)`,
		w.ID, w.UserA, w.UserB, string(w.Status), w.UserAConfirmed, w.UserBConfirmed,
		w.ExtensionCount, w.ExtensionRequestedBy, string(w.PriorStatus),
		w.ReminderSent, w.CreatedAt, w.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateWindow
		}
		return fmt.Errorf("match_windows insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Window, error) {
	w, err := scanWindow(s.pool.QueryRow(ctx,
		`SELECT `+windowColumns+` FROM match_windows WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("match_windows select: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) FindActive(ctx context.Context, key pair.Key) (*Window, error) {
	w, err := scanWindow(s.pool.QueryRow(ctx,
		`SELECT `+windowColumns+`
		 FROM match_windows
		 WHERE user_a = $1 AND user_b = $2
		   AND status IN ('PENDING_BOTH', 'PENDING_USER_A', 'PENDING_USER_B', 'EXTENSION_PENDING')`,
		key.Lo, key.Hi))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("match_windows active select: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*Window) error) (*Window, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	w, err := scanWindow(tx.QueryRow(ctx,
		`SELECT `+windowColumns+` FROM match_windows WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("match_windows select for update: %w", err)
	}

	if err := fn(w); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE match_windows
		 SET status                 = $1::match_window_status,
		     user_a_confirmed       = $2,
		     user_b_confirmed       = $3,
		     extension_count        = $4,
		     extension_requested_by = $5,
		     prior_status           = NULLIF($6, '')::match_window_status,
		     reminder_sent          = $7,
		     expires_at             = $8,
		     updated_at             = NOW()
		 WHERE id = $9`,
		string(w.Status), w.UserAConfirmed, w.UserBConfirmed,
		w.ExtensionCount, w.ExtensionRequestedBy, string(w.PriorStatus),
		w.ReminderSent, w.ExpiresAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("match_windows update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return w, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID int64, statuses ...Status) ([]Window, error) {
	query := `SELECT ` + windowColumns + `
		 FROM match_windows
		 WHERE (user_a = $1 OR user_b = $1)`
	args := []any{userID}
	if len(statuses) > 0 {
		strs := make([]string, len(statuses))
		for i, st := range statuses {
			strs[i] = string(st)
		}
		query += ` AND status = ANY($2::match_window_status[])`
		args = append(args, strs)
	}
	query += ` ORDER BY created_at DESC`

	return s.list(ctx, query, args...)
}

func (s *PostgresStore) ListExpired(ctx context.Context, now time.Time, limit int) ([]Window, error) {
	return s.list(ctx,
		`SELECT `+windowColumns+`
		 FROM match_windows
		 WHERE expires_at <= $1
		   AND status IN ('PENDING_BOTH', 'PENDING_USER_A', 'PENDING_USER_B', 'EXTENSION_PENDING')
		 ORDER BY expires_at ASC
		 LIMIT $2`,
		now, limit,
	)
}

func (s *PostgresStore) ListNeedingReminder(ctx context.Context, now, horizon time.Time, limit int) ([]Window, error) {
	return s.list(ctx,
		`SELECT `+windowColumns+`
		 FROM match_windows
		 WHERE expires_at > $1 AND expires_at <= $2
		   AND reminder_sent = false
		   AND status IN ('PENDING_BOTH', 'PENDING_USER_A', 'PENDING_USER_B')
		 ORDER BY expires_at ASC
		 LIMIT $3`,
		now, horizon, limit,
	)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Window, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("match_windows list: %w", err)
	}
	defer rows.Close()

	windows := make([]Window, 0)
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("match_windows scan: %w", err)
		}
		windows = append(windows, *w)
	}
	return windows, rows.Err()
}
