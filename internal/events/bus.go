// Package events delivers change notifications from the managers to their in-memory observers.
package events

import "sync"

// Kind names what changed.
type Kind string

const (
	UsersChanged      Kind = "users.changed"
	SessionChanged    Kind = "session.changed"
	AccountDeleted    Kind = "account.deleted"
	ExpensesChanged   Kind = "expenses.changed"
	CommitteesChanged Kind = "committees.changed"
	MessagesChanged   Kind = "messages.changed"
	WinnersChanged    Kind = "winners.changed"
)

// Event is published after a mutation has been persisted.
type Event struct {
	Kind Kind
	// UserID is the user the change concerns, when there is one.
	UserID string
}

// Listener receives events synchronously on the publishing goroutine.
type Listener func(Event)

// Bus fans events out to subscribed listeners in subscription order.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns a function that removes it.
func (b *Bus) Subscribe(l Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = l
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish calls every listener with e. Listeners may publish or subscribe in turn.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	ls := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		ls = append(ls, b.listeners[id])
	}
	b.mu.Unlock()

	for _, l := range ls {
		l(e)
	}
}
