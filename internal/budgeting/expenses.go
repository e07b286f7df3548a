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

// AddExpense records an expense for the session user. A zero date means now.
func (m *Manager) AddExpense(sess *auth.Session, in models.ExpenseInput) (models.Expense, error) {
	if err := m.requireUser(sess); err != nil {
		return models.Expense{}, err
	}

	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	date := in.Date
	if date.IsZero() {
		date = m.now()
	}

	e := models.Expense{
		ID:          finance.GenerateID(),
		UserID:      sess.UserID(),
		Title:       in.Title,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        date,
		Description: in.Description,
	}

	m.saveExpenses(append(slices.Clone(m.expenses), e))
	m.logger.Debug("Expense added", slog.String("expense_id", e.ID), slog.String("user_id", e.UserID))
	m.publish(events.ExpensesChanged, e.UserID)
	return e, nil
}

// UpdateExpense merges patch into the expense with the given id.
func (m *Manager) UpdateExpense(id string, patch models.ExpensePatch) bool {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.expenses, func(e models.Expense) bool { return e.ID == id })
	if i < 0 {
		return false
	}

	updated := slices.Clone(m.expenses)
	patch.Apply(&updated[i])
	m.saveExpenses(updated)
	m.publish(events.ExpensesChanged, updated[i].UserID)
	return true
}

// DeleteExpense removes the expense with the given id.
func (m *Manager) DeleteExpense(id string) bool {
	m.mu.Lock()
	defer m.flush()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.expenses, func(e models.Expense) bool { return e.ID == id })
	if i < 0 {
		return false
	}

	owner := m.expenses[i].UserID
	m.saveExpenses(slices.Delete(slices.Clone(m.expenses), i, i+1))
	m.publish(events.ExpensesChanged, owner)
	return true
}

// GetUserExpenses returns the session user's expenses. An anonymous session has none.
func (m *Manager) GetUserExpenses(sess *auth.Session) []models.Expense {
	if !sess.Active() {
		return []models.Expense{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.Expense{}
	for _, e := range m.expenses {
		if e.UserID == sess.UserID() {
			out = append(out, e)
		}
	}
	return out
}

func (m *Manager) saveExpenses(expenses []models.Expense) {
	m.store.Set(storage.KeyExpenses, expenses)
	m.expenses = expenses
}
