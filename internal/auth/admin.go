package auth

import (
	"log/slog"
	"slices"

	"budget-tracker/internal/events"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"
)

// Users lists every account without passwords. Admin only.
func (m *Manager) Users(sess *Session) ([]models.SessionUser, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users := m.users()
	out := make([]models.SessionUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Session())
	}
	return out, nil
}

// ToggleBan flips a user between active and banned. Admin only.
func (m *Manager) ToggleBan(sess *Session, userID string) (models.SessionUser, error) {
	if !sess.IsAdmin() {
		return models.SessionUser{}, ErrForbidden
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	users := m.users()
	i := slices.IndexFunc(users, func(u models.User) bool { return u.ID == userID })
	if i < 0 {
		return models.SessionUser{}, ErrUserNotFound
	}

	if users[i].IsBanned() {
		users[i].Status = models.UserStatusActive
	} else {
		users[i].Status = models.UserStatusBanned
	}
	m.store.Set(storage.KeyUsers, users)
	m.logger.Info("User status changed",
		slog.String("admin_id", sess.UserID()),
		slog.String("user_id", userID),
		slog.String("status", string(users[i].Status)))
	m.publish(events.UsersChanged, userID)

	return users[i].Session(), nil
}

// DeleteUser removes another user's account and expenses. Admin only. When
// the deleted user is the current session, the session ends.
func (m *Manager) DeleteUser(sess *Session, userID string) error {
	if !sess.IsAdmin() {
		return ErrForbidden
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	if !slices.ContainsFunc(m.users(), func(u models.User) bool { return u.ID == userID }) {
		return ErrUserNotFound
	}

	m.purge(userID)
	if m.current != nil && m.current.ID == userID {
		m.logout()
	}
	m.logger.Info("User deleted by admin", slog.String("admin_id", sess.UserID()), slog.String("user_id", userID))
	m.publish(events.AccountDeleted, userID)
	return nil
}
