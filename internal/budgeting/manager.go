// Package budgeting manages expenses, savings committees, committee chat and
// winner draws. Each collection is mirrored in memory and rewritten as a whole
// in the store on every mutation.
package budgeting

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/events"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"
)

var (
	ErrCommitteeNotFound = errors.New("Committee not found")
	ErrNotMember         = errors.New("You are not a member of this committee")
)

// Manager holds the in-memory mirrors of the budgeting collections.
//
// Update and delete operations take an id and perform no ownership check;
// a missing id is a silent no-op reported only through the returned bool.
type Manager struct {
	mu      sync.Mutex
	store   *storage.Store
	bus     *events.Bus
	now     func() time.Time
	rand    finance.Rand
	logger  *slog.Logger
	pending []events.Event

	expenses   []models.Expense
	committees []models.Committee
	messages   []models.Message
	winners    []models.Winner
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRand sets the random source used by DrawWinner.
func WithRand(r finance.Rand) Option {
	return func(m *Manager) { m.rand = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithBus sets the bus that receives change events.
func WithBus(bus *events.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// NewManager creates a manager and loads the four collections from store.
func NewManager(store *storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		rand:   finance.DefaultRand(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.bus == nil {
		m.bus = events.NewBus()
	}
	if m.rand == nil {
		m.rand = finance.DefaultRand()
	}
	m.logger = m.logger.With(slog.String("component", "budgeting"))
	m.load()
	return m
}

func (m *Manager) load() {
	m.expenses = storage.Get(m.store, storage.KeyExpenses, []models.Expense{})
	m.committees = storage.Get(m.store, storage.KeyCommittees, []models.Committee{})
	m.messages = storage.Get(m.store, storage.KeyMessages, []models.Message{})
	m.winners = storage.Get(m.store, storage.KeyWinners, []models.Winner{})
}

// Reload re-reads every collection from the store, dropping the mirrors.
// Another writer, such as the auth cascade on account deletion, may have
// replaced a collection underneath the manager.
func (m *Manager) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load()
	m.logger.Debug("Collections reloaded",
		slog.Int("expenses", len(m.expenses)),
		slog.Int("committees", len(m.committees)))
}

// Bus returns the bus the manager publishes to.
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

func (m *Manager) publish(kind events.Kind, userID string) {
	m.pending = append(m.pending, events.Event{Kind: kind, UserID: userID})
}

func (m *Manager) flush() {
	m.mu.Lock()
	evs := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, e := range evs {
		m.bus.Publish(e)
	}
}

// Expenses returns every expense of every user.
func (m *Manager) Expenses() []models.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.expenses)
}

// Committees returns every committee.
func (m *Manager) Committees() []models.Committee {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneCommittees(m.committees)
}

// Messages returns every chat message in insertion order.
func (m *Manager) Messages() []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.messages)
}

// Winners returns the draw history in insertion order.
func (m *Manager) Winners() []models.Winner {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.winners)
}

func requireSession(sess *auth.Session) error {
	if !sess.Active() {
		return auth.ErrNotAuthenticated
	}
	return nil
}

// requireUser checks that the session user still exists, so a session that
// outlived its account cannot create records owned by nobody.
func (m *Manager) requireUser(sess *auth.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	users := storage.Get(m.store, storage.KeyUsers, []models.User{})
	if !slices.ContainsFunc(users, func(u models.User) bool { return u.ID == sess.UserID() }) {
		return auth.ErrUserNotFound
	}
	return nil
}
