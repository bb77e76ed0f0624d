package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/chorewheel/internal/model"
	"github.com/dukerupert/chorewheel/internal/store"
)

// ChoreNotifier delivers a due-chore reminder to one user's devices.
type ChoreNotifier interface {
	ChoreReminder(choreID, userID string, due time.Time)
}

// Scheduler periodically looks for chores due today and reminds the assigned
// users. Each chore is reminded at most once per day.
type Scheduler struct {
	mu       sync.RWMutex
	sender   Sender
	notify   ChoreNotifier
	push     *store.PushStore
	chores   *store.ChoreStore
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(sender Sender, notify ChoreNotifier, pushStore *store.PushStore, choreStore *store.ChoreStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sender:   sender,
		notify:   notify,
		push:     pushStore,
		chores:   choreStore,
		interval: 60 * time.Second,
		logger:   logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx, time.Now().UTC())
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick runs one reminder pass for the day containing now.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)
	sentOn := dayStart.Format("2006-01-02")

	due, err := s.chores.ListDueBetween(ctx, dayStart, dayEnd)
	if err != nil {
		s.logger.Error("reminder scheduler: list due chores", "error", err)
		return
	}

	for _, chore := range due {
		sent, err := s.push.WasSent(ctx, model.NotifTypeChoreDue, chore.ID, sentOn)
		if err != nil {
			s.logger.Error("reminder scheduler: check sent", "chore_id", chore.ID, "error", err)
			continue
		}
		if sent {
			continue
		}

		if err := s.remind(ctx, &chore); err != nil {
			s.logger.Warn("reminder scheduler: remind", "chore_id", chore.ID, "error", err)
			continue
		}
		if err := s.push.RecordSent(ctx, model.NotifTypeChoreDue, chore.ID, sentOn); err != nil {
			s.logger.Error("reminder scheduler: record sent", "chore_id", chore.ID, "error", err)
		}
	}
}

// remind notifies the assignee's devices through the dispatcher, or fans out
// to the whole household when the chore is unassigned.
func (s *Scheduler) remind(ctx context.Context, chore *model.Chore) error {
	if chore.AssignedTo != nil {
		s.notify.ChoreReminder(chore.ID, *chore.AssignedTo, *chore.DueDate)
		return nil
	}

	subs, err := s.push.ListByHousehold(ctx, chore.HouseholdID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}

	payload := Payload{
		Title: "Chore Due Today",
		Body:  fmt.Sprintf("%s is due today (%d points)", chore.Title, chore.PointValue),
		URL:   "/chores",
		Tag:   "chore-" + chore.ID,
	}

	for i := range subs {
		if err := s.sender.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(ctx, subs[i].Endpoint)
				continue
			}
			s.logger.Warn("reminder scheduler: send", "endpoint", subs[i].Endpoint, "error", err)
		}
	}
	return nil
}
