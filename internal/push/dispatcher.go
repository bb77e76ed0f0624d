package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/chorewheel/internal/badge"
	"github.com/dukerupert/chorewheel/internal/store"
)

// Dispatcher fans notifications out to a user's push subscriptions. Delivery
// is fire-and-forget: failures are logged and never propagate to the caller.
type Dispatcher struct {
	sender Sender
	subs   *store.PushStore
	chores *store.ChoreStore
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, subs *store.PushStore, chores *store.ChoreStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		subs:   subs,
		chores: chores,
		logger: logger,
	}
}

// Wait blocks until all in-flight deliveries finish. Used on shutdown and in
// tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(userID string, payload Payload) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sendToUser(userID, payload)
	}()
}

// BadgeEarned notifies the user's devices about a freshly earned badge.
func (d *Dispatcher) BadgeEarned(userID, badgeKey string) {
	title := "Badge Earned!"
	body := "You earned a new badge"
	if def, ok := badge.Lookup(badgeKey); ok {
		body = fmt.Sprintf("%s %s: %s", def.Icon, def.Name, def.Description)
	}

	d.dispatch(userID, Payload{
		Title: title,
		Body:  body,
		URL:   "/badges",
		Tag:   "badge-" + badgeKey,
	})
}

// ChoreReminder notifies a user that a chore is due.
func (d *Dispatcher) ChoreReminder(choreID, userID string, due time.Time) {
	body := fmt.Sprintf("A chore is due %s", due.Format("Mon Jan 2"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if chore, err := d.chores.Get(ctx, choreID); err == nil && chore != nil {
		body = fmt.Sprintf("%s is due today (%d points)", chore.Title, chore.PointValue)
	}

	d.dispatch(userID, Payload{
		Title: "Chore Due Today",
		Body:  body,
		URL:   "/chores",
		Tag:   "chore-" + choreID,
	})
}

func (d *Dispatcher) sendToUser(userID string, payload Payload) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subs, err := d.subs.ListByUser(ctx, userID)
	if err != nil {
		d.logger.Error("push dispatch: list subscriptions", "user_id", userID, "error", err)
		return
	}

	for i := range subs {
		if err := d.sender.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				d.subs.DeleteByEndpoint(ctx, subs[i].Endpoint)
				continue
			}
			d.logger.Warn("push dispatch: send", "user_id", userID, "error", err)
		}
	}
}
