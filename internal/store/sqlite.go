package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/CKPleiser/WavePing-sub000/internal/domain"
)

// ErrAlreadyNotified marks a ledger insert that lost to an existing row.
// The uniqueness constraint on (user_id, session_id, offset_label) makes
// this the at-most-once guarantee even across overlapping windower runs.
var ErrAlreadyNotified = errors.New("notification already recorded")

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// UpsertSessions stores one scrape cycle's observations for the window
// [from, to]. Rows inside the window are first marked inactive, then every
// observed session is upserted back to active; sessions that vanished from
// the page stay inactive but keep their history.
func (r *SQLiteRepo) UpsertSessions(ctx context.Context, sessions []domain.Session, from, to string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE sessions SET active = 0
		WHERE date_iso >= ? AND date_iso <= ?`,
		from, to,
	); err != nil {
		return fmt.Errorf("deactivate window: %w", err)
	}

	now := time.Now().UTC().Unix()
	for _, s := range sessions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (
				id, date_iso, time24, name, level, side, spots,
				booking_url, active, first_seen_at, last_seen_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				level        = excluded.level,
				side         = excluded.side,
				spots        = excluded.spots,
				booking_url  = excluded.booking_url,
				active       = 1,
				last_seen_at = excluded.last_seen_at`,
			s.ID(), s.DateISO, s.Time24, s.Name, string(s.Level), string(s.Side),
			s.Spots, s.BookingURL, now, now,
		); err != nil {
			return fmt.Errorf("upsert session %s: %w", s.ID(), err)
		}
	}
	return tx.Commit()
}

// SessionsBetween returns active sessions starting within [from, to]
// inclusive, ordered by date then time. The zero-padded column encodings
// make lexicographic comparison on the concatenated key exact.
func (r *SQLiteRepo) SessionsBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_iso, time24, name, level, side, spots, booking_url
		FROM sessions
		WHERE active = 1
		  AND date_iso || ' ' || time24 >= ?
		  AND date_iso || ' ' || time24 <= ?
		ORDER BY date_iso ASC, time24 ASC`,
		from.Format("2006-01-02 15:04"), to.Format("2006-01-02 15:04"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.Session
	for rows.Next() {
		var (
			s           domain.Session
			level, side string
		)
		if err := rows.Scan(&s.DateISO, &s.Time24, &s.Name, &level, &side, &s.Spots, &s.BookingURL); err != nil {
			return nil, err
		}
		s.Level = domain.Level(level)
		s.Side = domain.Side(side)
		res = append(res, s)
	}
	return res, rows.Err()
}

// UpsertUser inserts or updates a user and rewrites their set-valued
// preference dimensions atomically.
func (r *SQLiteRepo) UpsertUser(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("nil user")
	}

	created := u.CreatedAt.UTC().Unix()
	if u.CreatedAt.IsZero() {
		created = time.Now().UTC().Unix()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (chat_id, enabled, min_spots, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			enabled   = excluded.enabled,
			min_spots = excluded.min_spots`,
		u.ChatID, boolToInt(u.Enabled), u.Constraints.MinSpots, created,
	); err != nil {
		return err
	}

	for _, table := range []string{"user_levels", "user_sides", "user_days", "user_windows", "user_offsets"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE chat_id = ?", u.ChatID); err != nil {
			return err
		}
	}
	for _, l := range u.Constraints.Levels {
		if _, err := tx.ExecContext(ctx, "INSERT INTO user_levels (chat_id, level) VALUES (?, ?)", u.ChatID, string(l)); err != nil {
			return err
		}
	}
	for _, s := range u.Constraints.Sides {
		if _, err := tx.ExecContext(ctx, "INSERT INTO user_sides (chat_id, side) VALUES (?, ?)", u.ChatID, string(s)); err != nil {
			return err
		}
	}
	for _, d := range u.Constraints.Days {
		if _, err := tx.ExecContext(ctx, "INSERT INTO user_days (chat_id, day) VALUES (?, ?)", u.ChatID, d); err != nil {
			return err
		}
	}
	for _, w := range u.Constraints.TimeWindows {
		if _, err := tx.ExecContext(ctx, "INSERT INTO user_windows (chat_id, start24, end24) VALUES (?, ?, ?)", u.ChatID, w.Start, w.End); err != nil {
			return err
		}
	}
	for _, o := range u.Constraints.Offsets {
		if _, err := tx.ExecContext(ctx, "INSERT INTO user_offsets (chat_id, offset_label) VALUES (?, ?)", u.ChatID, string(o)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetUser returns a user with their constraint set, or an error if not found.
func (r *SQLiteRepo) GetUser(ctx context.Context, chatID int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, enabled, min_spots, created_at
		FROM users WHERE chat_id = ?`, chatID)

	var (
		u          domain.User
		enabledInt int
		createdAt  int64
	)
	if err := row.Scan(&u.ChatID, &enabledInt, &u.Constraints.MinSpots, &createdAt); err != nil {
		return nil, err
	}
	u.Enabled = enabledInt != 0
	u.CreatedAt = time.Unix(createdAt, 0).UTC()

	if err := r.loadConstraints(ctx, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListSubscribers returns enabled users with their constraint sets loaded.
func (r *SQLiteRepo) ListSubscribers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT chat_id, enabled, min_spots, created_at
		FROM users WHERE enabled = 1 ORDER BY chat_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []domain.User
	for rows.Next() {
		var (
			u          domain.User
			enabledInt int
			createdAt  int64
		)
		if err := rows.Scan(&u.ChatID, &enabledInt, &u.Constraints.MinSpots, &createdAt); err != nil {
			return nil, err
		}
		u.Enabled = enabledInt != 0
		u.CreatedAt = time.Unix(createdAt, 0).UTC()
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range res {
		if err := r.loadConstraints(ctx, &res[i]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// SetEnabled toggles the enabled flag for a user.
func (r *SQLiteRepo) SetEnabled(ctx context.Context, chatID int64, enabled bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET enabled = ? WHERE chat_id = ?`,
		boolToInt(enabled), chatID)
	return err
}

// WasNotified reports whether a ledger row exists for the triple.
func (r *SQLiteRepo) WasNotified(ctx context.Context, chatID int64, sessionID string, offset domain.TimingOffset) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM notifications
		WHERE user_id = ? AND session_id = ? AND offset_label = ?`,
		chatID, sessionID, string(offset),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordNotification writes the ledger row for a delivered notification.
// INSERT OR IGNORE rides on the table's uniqueness constraint: a concurrent
// duplicate is rejected by SQLite and reported as ErrAlreadyNotified instead
// of surfacing as a constraint error or a second row.
func (r *SQLiteRepo) RecordNotification(ctx context.Context, chatID int64, sessionID string, offset domain.TimingOffset, sentAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO notifications (user_id, session_id, offset_label, sent_at)
		VALUES (?, ?, ?, ?)`,
		chatID, sessionID, string(offset), sentAt.UTC().Unix(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyNotified
	}
	return nil
}

func (r *SQLiteRepo) loadConstraints(ctx context.Context, u *domain.User) error {
	rows, err := r.db.QueryContext(ctx, "SELECT level FROM user_levels WHERE chat_id = ?", u.ChatID)
	if err != nil {
		return err
	}
	if err := scanStrings(rows, func(s string) { u.Constraints.Levels = append(u.Constraints.Levels, domain.Level(s)) }); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx, "SELECT side FROM user_sides WHERE chat_id = ?", u.ChatID)
	if err != nil {
		return err
	}
	if err := scanStrings(rows, func(s string) { u.Constraints.Sides = append(u.Constraints.Sides, domain.Side(s)) }); err != nil {
		return err
	}

	// The pool is capped at one connection, so every result set must be
	// fully drained and closed before the next query runs.
	dayRows, err := r.db.QueryContext(ctx, "SELECT day FROM user_days WHERE chat_id = ? ORDER BY day", u.ChatID)
	if err != nil {
		return err
	}
	for dayRows.Next() {
		var d int
		if err := dayRows.Scan(&d); err != nil {
			_ = dayRows.Close()
			return err
		}
		u.Constraints.Days = append(u.Constraints.Days, d)
	}
	if err := dayRows.Err(); err != nil {
		_ = dayRows.Close()
		return err
	}
	if err := dayRows.Close(); err != nil {
		return err
	}

	winRows, err := r.db.QueryContext(ctx, "SELECT start24, end24 FROM user_windows WHERE chat_id = ? ORDER BY start24", u.ChatID)
	if err != nil {
		return err
	}
	for winRows.Next() {
		var w domain.TimeWindow
		if err := winRows.Scan(&w.Start, &w.End); err != nil {
			_ = winRows.Close()
			return err
		}
		u.Constraints.TimeWindows = append(u.Constraints.TimeWindows, w)
	}
	if err := winRows.Err(); err != nil {
		_ = winRows.Close()
		return err
	}
	if err := winRows.Close(); err != nil {
		return err
	}

	rows, err = r.db.QueryContext(ctx, "SELECT offset_label FROM user_offsets WHERE chat_id = ?", u.ChatID)
	if err != nil {
		return err
	}
	return scanStrings(rows, func(s string) {
		if o, err := domain.ParseOffset(s); err == nil {
			u.Constraints.Offsets = append(u.Constraints.Offsets, o)
		}
	})
}

func scanStrings(rows *sql.Rows, fn func(string)) error {
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return err
		}
		fn(s)
	}
	return rows.Err()
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
