package notifier

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/CKPleiser/WavePing-sub000/internal/domain"
	"github.com/CKPleiser/WavePing-sub000/internal/store"
)

// Tolerance is the half-width of the matching window around each notification
// target instant. A session starting at exactly now+offset is matched; one
// 20 minutes past the target is not.
const Tolerance = 15 * time.Minute

// Sender delivers one text message to a chat. The Telegram adapter
// implements this; tests substitute a fake.
type Sender interface {
	Send(chatID int64, text string) error
}

// Store is the slice of the repository the windower needs.
type Store interface {
	SessionsBetween(ctx context.Context, from, to time.Time) ([]domain.Session, error)
	ListSubscribers(ctx context.Context) ([]domain.User, error)
	WasNotified(ctx context.Context, chatID int64, sessionID string, offset domain.TimingOffset) (bool, error)
	RecordNotification(ctx context.Context, chatID int64, sessionID string, offset domain.TimingOffset, sentAt time.Time) error
}

// Windower finds sessions entering a notification window and delivers each
// (user, session, offset) alert at most once. It runs to completion per cron
// invocation; a failed run is simply retried by the next tick.
type Windower struct {
	store   Store
	sender  Sender
	log     *zap.Logger
	limiter *rate.Limiter
	now     func() time.Time
	loc     *time.Location
	offsets []domain.TimingOffset
}

// New creates a Windower. now is injectable for deterministic tests; pass
// nil for the wall clock. limiter paces outgoing sends against the transport
// rate limit; pass nil for unpaced delivery.
func New(st Store, sender Sender, log *zap.Logger, limiter *rate.Limiter, now func() time.Time, loc *time.Location) *Windower {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Windower{
		store:   st,
		sender:  sender,
		log:     log,
		limiter: limiter,
		now:     now,
		loc:     loc,
		offsets: domain.AllOffsets,
	}
}

// Run performs one windower cycle across every timing offset. Per-user
// delivery failures are logged and isolated so a single poisoned send never
// blocks the rest of the batch; only store-level failures abort the run.
func (w *Windower) Run(ctx context.Context) error {
	// Session rows store the lake's wall time, so the window bounds must be
	// computed in that zone; the process clock may run anywhere.
	now := w.now().In(w.loc)

	subscribers, err := w.store.ListSubscribers(ctx)
	if err != nil {
		return err
	}
	if len(subscribers) == 0 {
		return nil
	}

	var delivered, skipped, failed int
	for _, offset := range w.offsets {
		target := now.Add(offset.Duration())
		sessions, err := w.store.SessionsBetween(ctx, target.Add(-Tolerance), target.Add(Tolerance))
		if err != nil {
			return err
		}

		for _, session := range sessions {
			if session.IsFull() {
				continue
			}
			for _, user := range subscribers {
				if !w.eligible(user, session, offset) {
					continue
				}
				switch sent, err := w.notify(ctx, user.ChatID, session, offset); {
				case err != nil:
					failed++
					w.log.Error("notification delivery failed",
						zap.Int64("chatID", user.ChatID),
						zap.String("session", session.ID()),
						zap.String("offset", string(offset)),
						zap.Error(err),
					)
				case sent:
					delivered++
				default:
					skipped++
				}
			}
		}
	}

	w.log.Info("windower run complete",
		zap.Int("delivered", delivered),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

// eligible applies the notification matching rule: constraint match on
// level, side and minimum spots, plus subscription to this lead time.
// Day-of-week and time-window preferences govern browsing queries, not
// window matching.
func (w *Windower) eligible(user domain.User, session domain.Session, offset domain.TimingOffset) bool {
	if !user.Constraints.WantsOffset(offset) {
		return false
	}
	if session.Spots < max(user.Constraints.MinSpots, 1) {
		return false
	}
	matched := domain.FilterSessions(
		[]domain.Session{session},
		user.Constraints.Levels,
		user.Constraints.Sides,
		nil, true, nil,
	)
	return len(matched) == 1
}

// notify delivers one alert with the ledger as idempotence guard: check,
// send, record. The ledger row is written only after the transport confirmed
// delivery, and the record's uniqueness constraint settles the race when two
// overlapping runs pass the check simultaneously.
func (w *Windower) notify(ctx context.Context, chatID int64, session domain.Session, offset domain.TimingOffset) (bool, error) {
	already, err := w.store.WasNotified(ctx, chatID, session.ID(), offset)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}
	if err := w.sender.Send(chatID, FormatAlert(session, offset, w.loc)); err != nil {
		return false, err
	}

	if err := w.store.RecordNotification(ctx, chatID, session.ID(), offset, w.now()); err != nil {
		if errors.Is(err, store.ErrAlreadyNotified) {
			// Lost a race with a concurrent run after both passed the
			// check; the other run's delivery counts.
			return false, nil
		}
		return false, err
	}
	return true, nil
}
