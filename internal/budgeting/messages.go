package budgeting

import (
	"slices"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/events"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"
)

// SendMessage posts text to a committee's chat as the session user. Content
// and membership checks belong to the caller.
func (m *Manager) SendMessage(sess *auth.Session, committeeID, text string) (models.Message, error) {
	if err := m.requireUser(sess); err != nil {
		return models.Message{}, err
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	msg := models.Message{
		ID:          finance.GenerateID(),
		CommitteeID: committeeID,
		UserID:      sess.UserID(),
		UserName:    sess.User.Name,
		Message:     text,
		Timestamp:   m.now(),
	}

	m.saveMessages(append(slices.Clone(m.messages), msg))
	m.publish(events.MessagesChanged, msg.UserID)
	return msg, nil
}

// GetCommitteeMessages returns a committee's chat in the order it was posted.
func (m *Manager) GetCommitteeMessages(committeeID string) []models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Message{}
	for _, msg := range m.messages {
		if msg.CommitteeID == committeeID {
			out = append(out, msg)
		}
	}
	return out
}

// DeleteMessage removes a message regardless of who posted it.
func (m *Manager) DeleteMessage(id string) bool {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.messages, func(msg models.Message) bool { return msg.ID == id })
	if i < 0 {
		return false
	}

	m.saveMessages(slices.Delete(slices.Clone(m.messages), i, i+1))
	m.publish(events.MessagesChanged, "")
	return true
}

func (m *Manager) saveMessages(messages []models.Message) {
	m.store.Set(storage.KeyMessages, messages)
	m.messages = messages
}
