// Package auth owns the users collection and the persisted login slot.
package auth

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"budget-tracker/internal/events"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"
)

// Errors returned by Manager. Their text is suitable for display next to the form.
var (
	ErrDuplicateEmail     = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUserNotFound       = errors.New("User not found")
	ErrNotAuthenticated   = errors.New("You must be logged in")
	ErrForbidden          = errors.New("Admin access required")
	ErrAccountBanned      = errors.New("This account has been banned")
)

// Session is an explicit login context passed to every budgeting call.
// A nil Session or one with a nil User is anonymous.
type Session struct {
	User *models.SessionUser
}

// NewSession wraps u in a Session.
func NewSession(u models.SessionUser) *Session {
	return &Session{User: &u}
}

// Active reports whether the session has a logged-in user.
func (s *Session) Active() bool {
	return s != nil && s.User != nil
}

// UserID returns the logged-in user's id, or "" for an anonymous session.
func (s *Session) UserID() string {
	if !s.Active() {
		return ""
	}
	return s.User.ID
}

// IsAdmin reports whether the logged-in user is an admin.
func (s *Session) IsAdmin() bool {
	return s.Active() && s.User.IsAdmin()
}

// Manager registers, authenticates and edits users. Operations on an account
// take the caller's Session. The manager also keeps the persisted login slot,
// restored from the store when the manager is created.
type Manager struct {
	mu      sync.Mutex
	store   *storage.Store
	bus     *events.Bus
	scheme  PasswordScheme
	now     func() time.Time
	logger  *slog.Logger
	current *models.SessionUser
	pending []events.Event
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithPasswordScheme sets how passwords are stored and compared.
func WithPasswordScheme(s PasswordScheme) Option {
	return func(m *Manager) { m.scheme = s }
}

// WithBus sets the bus that receives change events.
func WithBus(bus *events.Bus) Option {
	return func(m *Manager) { m.bus = bus }
}

// NewManager creates a manager over store and restores the persisted session.
func NewManager(store *storage.Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		scheme: plainScheme{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.bus == nil {
		m.bus = events.NewBus()
	}
	m.logger = m.logger.With(slog.String("component", "auth"))

	var su models.SessionUser
	if store.Load(storage.KeyCurrentUser, &su) && su.ID != "" {
		m.current = &su
	}
	return m
}

// Bus returns the bus the manager publishes to.
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

func (m *Manager) users() []models.User {
	return storage.Get(m.store, storage.KeyUsers, []models.User{})
}

// publish queues an event; callers hold mu.
func (m *Manager) publish(kind events.Kind, userID string) {
	m.pending = append(m.pending, events.Event{Kind: kind, UserID: userID})
}

// flush delivers queued events outside the lock so listeners may call back in.
func (m *Manager) flush() {
	m.mu.Lock()
	evs := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, e := range evs {
		m.bus.Publish(e)
	}
}

// Session returns a snapshot of the current session.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return &Session{}
	}
	u := *m.current
	return &Session{User: &u}
}

// IsAuthenticated reports whether someone is logged in.
func (m *Manager) IsAuthenticated() bool {
	return m.Session().Active()
}

// IsAdmin reports whether the logged-in user is an admin.
func (m *Manager) IsAdmin() bool {
	return m.Session().IsAdmin()
}

// Register creates a user. It does not log the user in.
func (m *Manager) Register(in models.RegisterInput) (models.SessionUser, error) {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	users := m.users()
	if slices.ContainsFunc(users, func(u models.User) bool { return u.Email == in.Email }) {
		m.logger.Info("Registration rejected", slog.String("email", in.Email), slog.String("reason", "duplicate email"))
		return models.SessionUser{}, ErrDuplicateEmail
	}

	password, err := m.scheme.Encode(in.Password)
	if err != nil {
		m.logger.Error("Failed to encode password", slog.String("error", err.Error()))
		return models.SessionUser{}, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		ID:            "user_" + finance.GenerateID(),
		Name:          in.Name,
		Email:         in.Email,
		Password:      password,
		Role:          role,
		MonthlyIncome: in.MonthlyIncome,
		CreatedAt:     m.now(),
	}

	m.store.Set(storage.KeyUsers, append(users, user))
	m.logger.Info("User registered", slog.String("user_id", user.ID), slog.String("email", user.Email))
	m.publish(events.UsersChanged, user.ID)

	return user.Session(), nil
}

// Login checks the credentials and makes the matching user the current session.
func (m *Manager) Login(email, password string) (*Session, error) {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	users := m.users()
	i := slices.IndexFunc(users, func(u models.User) bool {
		return u.Email == email && m.scheme.Matches(password, u.Password)
	})
	if i < 0 {
		m.logger.Info("Login failed", slog.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if users[i].IsBanned() {
		m.logger.Info("Login refused", slog.String("email", email), slog.String("reason", "banned"))
		return nil, ErrAccountBanned
	}

	su := users[i].Session()
	m.setCurrent(&su)
	m.logger.Info("User logged in", slog.String("user_id", su.ID))

	return NewSession(su), nil
}

func (m *Manager) setCurrent(su *models.SessionUser) {
	m.current = su
	if su == nil {
		m.store.Remove(storage.KeyCurrentUser)
	} else {
		m.store.Set(storage.KeyCurrentUser, su)
	}
	m.publish(events.SessionChanged, "")
}

// Logout ends the current session. Logging out twice is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()
	m.logout()
}

func (m *Manager) logout() {
	if m.current != nil {
		m.logger.Info("User logged out", slog.String("user_id", m.current.ID))
	}
	m.setCurrent(nil)
}

// UpdateProfile merges patch into the session user's record and refreshes
// sess. The persisted login is refreshed too when it belongs to the same user.
func (m *Manager) UpdateProfile(sess *Session, patch models.ProfilePatch) (models.SessionUser, error) {
	if !sess.Active() {
		return models.SessionUser{}, ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	users := m.users()
	i := slices.IndexFunc(users, func(u models.User) bool { return u.ID == sess.UserID() })
	if i < 0 {
		return models.SessionUser{}, ErrUserNotFound
	}

	if patch.Email != nil && *patch.Email != users[i].Email {
		if slices.ContainsFunc(users, func(u models.User) bool { return u.Email == *patch.Email }) {
			return models.SessionUser{}, ErrDuplicateEmail
		}
	}

	if patch.Password != nil {
		encoded, err := m.scheme.Encode(*patch.Password)
		if err != nil {
			m.logger.Error("Failed to encode password", slog.String("error", err.Error()))
			return models.SessionUser{}, err
		}
		patch.Password = &encoded
	}

	patch.Apply(&users[i])
	m.store.Set(storage.KeyUsers, users)

	su := users[i].Session()
	refreshed := su
	sess.User = &refreshed
	if m.current != nil && m.current.ID == su.ID {
		m.setCurrent(&su)
	}
	m.publish(events.UsersChanged, su.ID)

	return su, nil
}

// DeleteAccount removes the session user and their expenses. The persisted
// login ends when it belongs to that user. Committee memberships, messages and
// winners that reference the user are kept.
func (m *Manager) DeleteAccount(sess *Session) error {
	if !sess.Active() {
		return ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	id := sess.UserID()
	if !slices.ContainsFunc(m.users(), func(u models.User) bool { return u.ID == id }) {
		return ErrUserNotFound
	}

	m.purge(id)
	if m.current != nil && m.current.ID == id {
		m.logout()
	}
	m.logger.Info("Account deleted", slog.String("user_id", id))
	m.publish(events.AccountDeleted, id)
	return nil
}

// purge removes the user record and cascades to the user's expenses.
func (m *Manager) purge(userID string) {
	users := slices.DeleteFunc(m.users(), func(u models.User) bool { return u.ID == userID })
	m.store.Set(storage.KeyUsers, users)

	expenses := storage.Get(m.store, storage.KeyExpenses, []models.Expense{})
	expenses = slices.DeleteFunc(expenses, func(e models.Expense) bool { return e.UserID == userID })
	m.store.Set(storage.KeyExpenses, expenses)

	m.publish(events.UsersChanged, userID)
}
