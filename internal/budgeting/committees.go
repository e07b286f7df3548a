package budgeting

import (
	"log/slog"
	"slices"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/events"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"
)

func cloneCommittees(cs []models.Committee) []models.Committee {
	out := slices.Clone(cs)
	for i := range out {
		out[i].Members = slices.Clone(out[i].Members)
	}
	return out
}

func (m *Manager) committeeIndex(id string) int {
	return slices.IndexFunc(m.committees, func(c models.Committee) bool { return c.ID == id })
}

func (m *Manager) saveCommittees(committees []models.Committee) {
	m.store.Set(storage.KeyCommittees, committees)
	m.committees = committees
}

// Committee returns the committee with the given id.
func (m *Manager) Committee(id string) (models.Committee, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.committeeIndex(id)
	if i < 0 {
		return models.Committee{}, false
	}
	c := m.committees[i]
	c.Members = slices.Clone(c.Members)
	return c, true
}

// CreateCommittee creates a pending committee with the session user as its
// creator and only member.
func (m *Manager) CreateCommittee(sess *auth.Session, in models.CommitteeInput) (models.Committee, error) {
	if err := m.requireUser(sess); err != nil {
		return models.Committee{}, err
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	c := models.Committee{
		ID:            finance.GenerateID(),
		Name:          in.Name,
		Description:   in.Description,
		Type:          in.Type,
		GoalAmount:    in.GoalAmount,
		CurrentAmount: 0,
		Members:       []string{sess.UserID()},
		CreatedBy:     sess.UserID(),
		CreatedAt:     m.now(),
		Status:        models.CommitteePending,
	}
	if in.NextDrawDate != nil {
		d := *in.NextDrawDate
		c.NextDrawDate = &d
	}

	m.saveCommittees(append(cloneCommittees(m.committees), c))
	m.logger.Info("Committee created", slog.String("committee_id", c.ID), slog.String("user_id", c.CreatedBy))
	m.publish(events.CommitteesChanged, c.CreatedBy)

	out := c
	out.Members = slices.Clone(c.Members)
	return out, nil
}

// JoinCommittee adds the session user to the committee's members. Joining a
// committee twice, or one that does not exist, changes nothing.
func (m *Manager) JoinCommittee(sess *auth.Session, id string) error {
	if err := m.requireUser(sess); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	i := m.committeeIndex(id)
	if i < 0 || m.committees[i].HasMember(sess.UserID()) {
		return nil
	}

	updated := cloneCommittees(m.committees)
	updated[i].Members = append(updated[i].Members, sess.UserID())
	m.saveCommittees(updated)
	m.logger.Info("Committee joined", slog.String("committee_id", id), slog.String("user_id", sess.UserID()))
	m.publish(events.CommitteesChanged, sess.UserID())
	return nil
}

// UpdateCommittee merges patch into the committee. Any status may be set.
func (m *Manager) UpdateCommittee(id string, patch models.CommitteePatch) bool {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	i := m.committeeIndex(id)
	if i < 0 {
		return false
	}

	updated := cloneCommittees(m.committees)
	patch.Apply(&updated[i])
	m.saveCommittees(updated)
	m.publish(events.CommitteesChanged, "")
	return true
}

// DeleteCommittee removes the committee. Its messages and winners are kept.
func (m *Manager) DeleteCommittee(id string) bool {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	i := m.committeeIndex(id)
	if i < 0 {
		return false
	}

	m.saveCommittees(slices.Delete(cloneCommittees(m.committees), i, i+1))
	m.logger.Info("Committee deleted", slog.String("committee_id", id))
	m.publish(events.CommitteesChanged, "")
	return true
}

// ApproveCommittee activates a pending committee.
func (m *Manager) ApproveCommittee(id string) bool {
	return m.UpdateCommittee(id, models.StatusPatch(models.CommitteeActive))
}

// RejectCommittee discards a committee.
func (m *Manager) RejectCommittee(id string) bool {
	return m.DeleteCommittee(id)
}

// GetUserCommittees returns the committees the session user belongs to.
func (m *Manager) GetUserCommittees(sess *auth.Session) []models.Committee {
	if !sess.Active() {
		return []models.Committee{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Committee{}
	for _, c := range m.committees {
		if c.HasMember(sess.UserID()) {
			c.Members = slices.Clone(c.Members)
			out = append(out, c)
		}
	}
	return out
}

// RequireMember checks that the session user belongs to the committee.
func (m *Manager) RequireMember(sess *auth.Session, committeeID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	c, ok := m.Committee(committeeID)
	if !ok {
		return ErrCommitteeNotFound
	}
	if !c.HasMember(sess.UserID()) {
		return ErrNotMember
	}
	return nil
}

// resolveMembers maps member ids to user records, dropping ids that no
// longer resolve.
func (m *Manager) resolveMembers(c models.Committee) []models.User {
	users := storage.Get(m.store, storage.KeyUsers, []models.User{})

	resolved := make([]models.User, 0, len(c.Members))
	for _, id := range c.Members {
		if i := slices.IndexFunc(users, func(u models.User) bool { return u.ID == id }); i >= 0 {
			resolved = append(resolved, users[i])
		}
	}
	return resolved
}

// CommitteeMembers returns the committee's members that still exist, in join order.
func (m *Manager) CommitteeMembers(id string) []models.SessionUser {
	c, ok := m.Committee(id)
	if !ok {
		return nil
	}

	users := m.resolveMembers(c)
	out := make([]models.SessionUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Session())
	}
	return out
}

// DrawWinner picks one resolvable member uniformly at random and records the
// payout of the committee's goal amount. It returns false, recording nothing,
// when the committee does not exist or has no resolvable member.
//
// The committee's status is left unchanged. Callers mark it completed with a
// separate UpdateCommittee call; until then another draw is possible.
func (m *Manager) DrawWinner(committeeID string) (models.Winner, bool) {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	i := m.committeeIndex(committeeID)
	if i < 0 {
		return models.Winner{}, false
	}
	c := m.committees[i]

	picked, ok := finance.SelectRandomWinner(m.rand, m.resolveMembers(c))
	if !ok {
		m.logger.Warn("Draw skipped", slog.String("committee_id", c.ID), slog.String("reason", "no resolvable members"))
		return models.Winner{}, false
	}

	w := models.Winner{
		ID:            finance.GenerateID(),
		CommitteeID:   c.ID,
		CommitteeName: c.Name,
		UserID:        picked.ID,
		UserName:      picked.Name,
		Amount:        c.GoalAmount,
		Date:          m.now(),
	}

	winners := append(slices.Clone(m.winners), w)
	m.store.Set(storage.KeyWinners, winners)
	m.winners = winners

	m.logger.Info("Winner drawn",
		slog.String("committee_id", c.ID),
		slog.String("user_id", w.UserID),
		slog.Float64("amount", w.Amount))
	m.publish(events.WinnersChanged, w.UserID)
	return w, true
}
