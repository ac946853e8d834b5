package store

import (
	"context"
	"time"

	"github.com/CKPleiser/WavePing-sub000/internal/domain"
)

// Repo defines storage operations for sessions, subscribers and the
// notification ledger.
type Repo interface {
	// UpsertSessions replaces the observed session set for the scraped
	// window [from, to] (ISO dates, inclusive): rows in the window absent
	// from the newest scrape are marked inactive, observed rows are
	// upserted by identity key.
	UpsertSessions(ctx context.Context, sessions []domain.Session, from, to string) error
	// SessionsBetween returns active sessions whose start instant falls in
	// [from, to] inclusive.
	SessionsBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error)

	UpsertUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, chatID int64) (*domain.User, error)
	// ListSubscribers returns enabled users with their constraint sets.
	ListSubscribers(ctx context.Context) ([]domain.User, error)
	SetEnabled(ctx context.Context, chatID int64, enabled bool) error

	// WasNotified reports whether a ledger row exists for the triple.
	WasNotified(ctx context.Context, chatID int64, sessionID string, offset domain.TimingOffset) (bool, error)
	// RecordNotification writes a ledger row; a pre-existing row yields
	// ErrAlreadyNotified rather than a duplicate.
	RecordNotification(ctx context.Context, chatID int64, sessionID string, offset domain.TimingOffset, sentAt time.Time) error

	Close() error
}
