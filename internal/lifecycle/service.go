package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/chorewheel/internal/badge"
	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/points"
	"github.com/dukerupert/chorewheel/internal/recurrence"
)

// ChoreRepository is the persistence surface the lifecycle needs for chores.
// Get returns (nil, nil) when the chore does not exist.
type ChoreRepository interface {
	Get(ctx context.Context, id string) (*model.Chore, error)
	Create(ctx context.Context, c *model.Chore) (*model.Chore, error)
	Update(ctx context.Context, c *model.Chore) error
	CountCompletedBy(ctx context.Context, userID string) (int, error)
}

// UserRepository is the persistence surface for users. AddBadges is
// append-only; re-adding an earned badge must be a no-op.
type UserRepository interface {
	Get(ctx context.Context, id string) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	AddBadges(ctx context.Context, userID string, keys []string) error
}

// Notifier delivers fire-and-forget notifications. Implementations must not
// return errors into the lifecycle; delivery failures are their own problem.
type Notifier interface {
	BadgeEarned(userID, badgeKey string)
	ChoreReminder(choreID, userID string, due time.Time)
}

// Clock supplies the current time, injected so period-boundary logic is
// testable.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Result carries everything a completion produced so the caller can refresh
// all dependent views in one pass.
type Result struct {
	Chore         *model.Chore `json:"chore"`
	PointsAwarded int          `json:"points_awarded"`
	NewBadges     []string     `json:"new_badges"`
	NextChore     *model.Chore `json:"next_chore,omitempty"`
}

// BadgeStatus reports a user's standing against one catalog badge.
type BadgeStatus struct {
	Badge    badge.Definition `json:"badge"`
	Earned   bool             `json:"earned"`
	Fraction float64          `json:"fraction"`
}

// Service orchestrates chore completion: state validation, point crediting,
// badge awards, and spawning the next occurrence of recurring chores.
type Service struct {
	chores ChoreRepository
	users  UserRepository
	notify Notifier
	clock  Clock
	logger *slog.Logger
}

func NewService(chores ChoreRepository, users UserRepository, notify Notifier, clock Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		chores: chores,
		users:  users,
		notify: notify,
		clock:  clock,
		logger: logger,
	}
}

// CompleteChore marks the chore completed by the given user, credits the
// chore's points, and awards any newly qualifying badges. When createNext is
// set and the chore recurs, it also creates the next pending occurrence.
//
// Validation failures (not found, already completed, invalid recurrence rule)
// happen before any write. Once the chore is marked completed it stays
// completed: later failures return the partial Result alongside an error
// wrapping ErrPointsCredit or ErrBadgeEvaluation so the caller can retry just
// the failed sub-step.
func (s *Service) CompleteChore(ctx context.Context, choreID, userID string, createNext bool) (*Result, error) {
	var (
		chore *model.Chore
		user  *model.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.chores.Get(gctx, choreID)
		if err != nil {
			return fmt.Errorf("load chore: %w", err)
		}
		if c == nil {
			return fmt.Errorf("%w: %s", ErrChoreNotFound, choreID)
		}
		chore = c
		return nil
	})
	g.Go(func() error {
		u, err := s.users.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		user = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if chore.IsCompleted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCompleted, choreID)
	}

	// Parse the recurrence rule up front so a broken rule fails the whole
	// operation before anything is written.
	var rule recurrence.Rule
	if chore.IsRecurring() {
		var err error
		rule, err = recurrence.Parse(chore.RecurrenceRule)
		if err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	chore.IsCompleted = true
	chore.CompletedAt = &now
	chore.CompletedBy = &userID
	if err := s.chores.Update(ctx, chore); err != nil {
		return nil, fmt.Errorf("complete chore: %w", err)
	}

	// The completion is durable from here on. Failures below surface to the
	// caller but never roll the chore back.
	result := &Result{Chore: chore}

	credited, err := points.Credit(*user, chore.PointValue, now)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrPointsCredit, err)
	}
	if err := s.users.Update(ctx, &credited); err != nil {
		return result, fmt.Errorf("%w: %w", ErrPointsCredit, err)
	}
	result.PointsAwarded = chore.PointValue

	newBadges, err := s.awardBadges(ctx, &credited)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrBadgeEvaluation, err)
	}
	result.NewBadges = newBadges

	if createNext && chore.IsRecurring() {
		next, err := rule.Next(*chore.Anchor())
		if err != nil {
			return result, err
		}
		if next == nil {
			// Past the rule's end date: the recurrence is finished.
			s.logger.Info("recurrence ended", "chore_id", chore.ID)
			return result, nil
		}

		spawned, err := s.chores.Create(ctx, &model.Chore{
			HouseholdID:    chore.HouseholdID,
			Title:          chore.Title,
			Description:    chore.Description,
			AssignedTo:     chore.AssignedTo,
			CreatedBy:      chore.CreatedBy,
			DueDate:        next,
			PointValue:     chore.PointValue,
			RecurrenceRule: chore.RecurrenceRule,
			NextOccurrence: next,
		})
		if err != nil {
			return result, fmt.Errorf("create next occurrence: %w", err)
		}
		result.NextChore = spawned
	}

	return result, nil
}

// awardBadges re-reads the user's completed-chore count, evaluates the
// catalog, persists new badges, and emits badge-earned notifications.
func (s *Service) awardBadges(ctx context.Context, u *model.User) ([]string, error) {
	count, err := s.chores.CountCompletedBy(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}

	newly := badge.Evaluate(badge.NewProgress(count, u.TotalPoints, u.Badges))
	if len(newly) == 0 {
		return nil, nil
	}

	keys := make([]string, len(newly))
	for i, d := range newly {
		keys[i] = d.Key
	}
	if err := s.users.AddBadges(ctx, u.ID, keys); err != nil {
		return nil, fmt.Errorf("add badges: %w", err)
	}
	u.Badges = append(u.Badges, keys...)

	for _, key := range keys {
		s.logger.Info("badge earned", "user_id", u.ID, "badge", key)
		if s.notify != nil {
			s.notify.BadgeEarned(u.ID, key)
		}
	}
	return keys, nil
}

// PreviewNext computes the next due date for a stored rule string without
// completing anything, so clients can show "next due" ahead of time.
func (s *Service) PreviewNext(rule string, anchor time.Time) (*time.Time, error) {
	return recurrence.NextAfter(rule, anchor)
}

// BadgeProgress reports the user's standing against every catalog badge.
func (s *Service) BadgeProgress(ctx context.Context, userID string) ([]BadgeStatus, error) {
	var (
		user  *model.User
		count int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.Get(gctx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if u == nil {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		n, err := s.chores.CountCompletedBy(gctx, userID)
		if err != nil {
			return fmt.Errorf("count completed: %w", err)
		}
		count = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	progress := badge.NewProgress(count, user.TotalPoints, user.Badges)
	defs := badge.Catalog()
	statuses := make([]BadgeStatus, len(defs))
	for i, d := range defs {
		statuses[i] = BadgeStatus{
			Badge:    d,
			Earned:   progress.Earned(d.Key),
			Fraction: badge.Fraction(d, progress),
		}
	}
	return statuses, nil
}
