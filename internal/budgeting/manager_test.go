package budgeting

import (
	"testing"
	"time"

	"budget-tracker/internal/auth"
	"budget-tracker/internal/events"
	"budget-tracker/internal/finance"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// firstRand always picks index 0.
type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

type BudgetingTestSuite struct {
	suite.Suite
	store   *storage.Store
	bus     *events.Bus
	manager *Manager
	now     time.Time
	u1      *auth.Session
	u2      *auth.Session
}

func (suite *BudgetingTestSuite) SetupTest() {
	store, err := storage.NewDB(":memory:", nil)
	require.NoError(suite.T(), err, "failed to create test store")
	suite.store = store
	suite.bus = events.NewBus()
	suite.now = time.Date(2025, time.March, 15, 9, 30, 0, 0, time.UTC)

	users := []models.User{
		{ID: "u1", Name: "Una", Email: "u1@example.com", Password: "pw1", Role: models.RoleUser},
		{ID: "u2", Name: "Two", Email: "u2@example.com", Password: "pw2", Role: models.RoleUser},
	}
	store.Set(storage.KeyUsers, users)
	suite.u1 = auth.NewSession(users[0].Session())
	suite.u2 = auth.NewSession(users[1].Session())

	suite.manager = suite.newManager(finance.NewSeededRand(1))
}

func (suite *BudgetingTestSuite) TearDownTest() {
	if suite.store != nil {
		suite.store.Close()
	}
}

func (suite *BudgetingTestSuite) newManager(r finance.Rand) *Manager {
	return NewManager(suite.store,
		WithClock(func() time.Time { return suite.now }),
		WithRand(r),
		WithBus(suite.bus))
}

func (suite *BudgetingTestSuite) storedCommittees() []models.Committee {
	return storage.Get(suite.store, storage.KeyCommittees, []models.Committee{})
}

func (suite *BudgetingTestSuite) TestAddExpenseBindsSessionUser() {
	e, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "Lunch", Amount: 12.5, Category: "Food & Dining"})
	require.NoError(suite.T(), err)

	assert.NotEmpty(suite.T(), e.ID)
	assert.Equal(suite.T(), "u1", e.UserID)
	assert.Equal(suite.T(), suite.now, e.Date, "missing date defaults to now")

	dated := time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)
	e2, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "Bus", Amount: 2, Date: dated})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), dated, e2.Date)

	stored := storage.Get(suite.store, storage.KeyExpenses, []models.Expense{})
	require.Len(suite.T(), stored, 2)
	assert.Equal(suite.T(), e.ID, stored[0].ID)
}

func (suite *BudgetingTestSuite) TestAddExpenseRequiresSession() {
	_, err := suite.manager.AddExpense(&auth.Session{}, models.ExpenseInput{Title: "x", Amount: 1})
	assert.ErrorIs(suite.T(), err, auth.ErrNotAuthenticated)
	assert.Empty(suite.T(), suite.manager.Expenses())
}

func (suite *BudgetingTestSuite) TestGetUserExpensesFiltersBySession() {
	_, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "a", Amount: 1})
	require.NoError(suite.T(), err)
	_, err = suite.manager.AddExpense(suite.u2, models.ExpenseInput{Title: "b", Amount: 2})
	require.NoError(suite.T(), err)

	mine := suite.manager.GetUserExpenses(suite.u1)
	require.Len(suite.T(), mine, 1)
	assert.Equal(suite.T(), "a", mine[0].Title)
	assert.Empty(suite.T(), suite.manager.GetUserExpenses(nil))
}

func (suite *BudgetingTestSuite) TestUpdateAndDeleteExpense() {
	e, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "a", Amount: 1, Category: "Travel"})
	require.NoError(suite.T(), err)

	amount := 99.0
	assert.True(suite.T(), suite.manager.UpdateExpense(e.ID, models.ExpensePatch{Amount: &amount}))

	got := suite.manager.Expenses()[0]
	assert.Equal(suite.T(), 99.0, got.Amount)
	assert.Equal(suite.T(), "Travel", got.Category, "unpatched fields are kept")

	assert.True(suite.T(), suite.manager.DeleteExpense(e.ID))
	assert.Empty(suite.T(), storage.Get(suite.store, storage.KeyExpenses, []models.Expense{}))
}

func (suite *BudgetingTestSuite) TestMissingIDsAreNoOps() {
	_, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "a", Amount: 1})
	require.NoError(suite.T(), err)
	before := suite.manager.Expenses()

	amount := 5.0
	assert.False(suite.T(), suite.manager.UpdateExpense("missing", models.ExpensePatch{Amount: &amount}))
	assert.False(suite.T(), suite.manager.DeleteExpense("missing"))
	assert.False(suite.T(), suite.manager.UpdateCommittee("missing", models.StatusPatch(models.CommitteeActive)))
	assert.False(suite.T(), suite.manager.DeleteCommittee("missing"))
	assert.False(suite.T(), suite.manager.DeleteMessage("missing"))
	assert.NoError(suite.T(), suite.manager.JoinCommittee(suite.u1, "missing"))

	assert.Equal(suite.T(), before, suite.manager.Expenses())
	assert.Empty(suite.T(), suite.manager.Committees())
}

func (suite *BudgetingTestSuite) TestNoOwnershipCheckOnDelete() {
	e, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "a", Amount: 1})
	require.NoError(suite.T(), err)

	// Any caller holding the id may delete it; gating is done above this layer.
	assert.True(suite.T(), suite.manager.DeleteExpense(e.ID))
	assert.Empty(suite.T(), suite.manager.GetUserExpenses(suite.u1))
}

func (suite *BudgetingTestSuite) TestCreateCommittee() {
	next := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	c, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{
		Name: "Savers", Type: models.CommitteeMonthly, GoalAmount: 500, NextDrawDate: &next,
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), []string{"u1"}, c.Members)
	assert.Equal(suite.T(), "u1", c.CreatedBy)
	assert.Equal(suite.T(), models.CommitteePending, c.Status)
	assert.Zero(suite.T(), c.CurrentAmount)
	assert.Equal(suite.T(), suite.now, c.CreatedAt)
	require.NotNil(suite.T(), c.NextDrawDate)
	assert.Equal(suite.T(), next, *c.NextDrawDate)

	stored := suite.storedCommittees()
	require.Len(suite.T(), stored, 1)
	assert.Equal(suite.T(), c.ID, stored[0].ID)

	_, err = suite.manager.CreateCommittee(nil, models.CommitteeInput{Name: "x"})
	assert.ErrorIs(suite.T(), err, auth.ErrNotAuthenticated)
}

func (suite *BudgetingTestSuite) TestJoinCommitteeIsIdempotent() {
	c, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "Savers", GoalAmount: 100})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.manager.JoinCommittee(suite.u2, c.ID))
	require.NoError(suite.T(), suite.manager.JoinCommittee(suite.u2, c.ID))
	require.NoError(suite.T(), suite.manager.JoinCommittee(suite.u1, c.ID))

	got, ok := suite.manager.Committee(c.ID)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), []string{"u1", "u2"}, got.Members)
	assert.Equal(suite.T(), []string{"u1", "u2"}, suite.storedCommittees()[0].Members)

	mine := suite.manager.GetUserCommittees(suite.u2)
	require.Len(suite.T(), mine, 1)
	assert.Equal(suite.T(), c.ID, mine[0].ID)
}

func (suite *BudgetingTestSuite) TestReturnedCommitteesAreCopies() {
	c, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "Savers"})
	require.NoError(suite.T(), err)

	all := suite.manager.Committees()
	all[0].Members[0] = "mallory"

	got, _ := suite.manager.Committee(c.ID)
	assert.Equal(suite.T(), []string{"u1"}, got.Members)
}

func (suite *BudgetingTestSuite) TestUpdateCommitteeAcceptsAnyStatus() {
	c, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "Savers"})
	require.NoError(suite.T(), err)

	require.True(suite.T(), suite.manager.UpdateCommittee(c.ID, models.StatusPatch(models.CommitteeCompleted)))
	require.True(suite.T(), suite.manager.UpdateCommittee(c.ID, models.StatusPatch(models.CommitteePending)))

	got, _ := suite.manager.Committee(c.ID)
	assert.Equal(suite.T(), models.CommitteePending, got.Status)
}

func (suite *BudgetingTestSuite) TestApproveAndRejectCommittee() {
	a, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "A"})
	require.NoError(suite.T(), err)
	b, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "B"})
	require.NoError(suite.T(), err)

	assert.True(suite.T(), suite.manager.ApproveCommittee(a.ID))
	assert.True(suite.T(), suite.manager.RejectCommittee(b.ID))

	committees := suite.manager.Committees()
	require.Len(suite.T(), committees, 1)
	assert.Equal(suite.T(), models.CommitteeActive, committees[0].Status)
}

func (suite *BudgetingTestSuite) TestRequireMember() {
	c, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "Savers"})
	require.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.manager.RequireMember(suite.u1, c.ID))
	assert.ErrorIs(suite.T(), suite.manager.RequireMember(suite.u2, c.ID), ErrNotMember)
	assert.ErrorIs(suite.T(), suite.manager.RequireMember(suite.u1, "missing"), ErrCommitteeNotFound)
	assert.ErrorIs(suite.T(), suite.manager.RequireMember(nil, c.ID), auth.ErrNotAuthenticated)
}

func (suite *BudgetingTestSuite) activeCommittee(members ...string) {
	suite.store.Set(storage.KeyCommittees, []models.Committee{{
		ID: "c1", Name: "Pool", GoalAmount: 100, Members: members,
		CreatedBy: members[0], Status: models.CommitteeActive,
	}})
	suite.manager.Reload()
}

func (suite *BudgetingTestSuite) TestDrawThenComplete() {
	suite.activeCommittee("u1", "u2")

	w, ok := suite.manager.DrawWinner("c1")
	require.True(suite.T(), ok)

	assert.Contains(suite.T(), []string{"u1", "u2"}, w.UserID)
	assert.Equal(suite.T(), 100.0, w.Amount)
	assert.Equal(suite.T(), "Pool", w.CommitteeName)
	assert.Equal(suite.T(), suite.now, w.Date)

	c, _ := suite.manager.Committee("c1")
	assert.Equal(suite.T(), models.CommitteeActive, c.Status, "draw alone does not complete the committee")

	// Interrupted before completion: a second draw is still possible.
	_, ok = suite.manager.DrawWinner("c1")
	assert.True(suite.T(), ok)
	assert.Len(suite.T(), suite.manager.Winners(), 2)

	require.True(suite.T(), suite.manager.UpdateCommittee("c1", models.StatusPatch(models.CommitteeCompleted)))
	c, _ = suite.manager.Committee("c1")
	assert.Equal(suite.T(), models.CommitteeCompleted, c.Status)

	stored := storage.Get(suite.store, storage.KeyWinners, []models.Winner{})
	assert.Len(suite.T(), stored, 2)
}

func (suite *BudgetingTestSuite) TestDrawSnapshotsWinnerName() {
	suite.manager = suite.newManager(firstRand{})
	suite.activeCommittee("u2", "u1")

	w, ok := suite.manager.DrawWinner("c1")
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "u2", w.UserID)
	assert.Equal(suite.T(), "Two", w.UserName)
}

func (suite *BudgetingTestSuite) TestDrawDropsDanglingMembers() {
	suite.manager = suite.newManager(firstRand{})
	suite.activeCommittee("gone", "u2")

	w, ok := suite.manager.DrawWinner("c1")
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "u2", w.UserID)

	members := suite.manager.CommitteeMembers("c1")
	require.Len(suite.T(), members, 1)
	assert.Equal(suite.T(), "Two", members[0].Name)
}

func (suite *BudgetingTestSuite) TestDrawWithoutResolvableMembers() {
	suite.activeCommittee("gone", "also-gone")

	_, ok := suite.manager.DrawWinner("c1")
	assert.False(suite.T(), ok)
	assert.Empty(suite.T(), suite.manager.Winners())
	assert.False(suite.T(), suite.store.Has(storage.KeyWinners))

	_, ok = suite.manager.DrawWinner("missing")
	assert.False(suite.T(), ok)
}

func (suite *BudgetingTestSuite) TestMessagesKeepInsertionOrder() {
	first, err := suite.manager.SendMessage(suite.u1, "c1", "hello")
	require.NoError(suite.T(), err)
	_, err = suite.manager.SendMessage(suite.u2, "c2", "elsewhere")
	require.NoError(suite.T(), err)
	_, err = suite.manager.SendMessage(suite.u2, "c1", "hi back")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), "Una", first.UserName)
	assert.Equal(suite.T(), suite.now, first.Timestamp)

	msgs := suite.manager.GetCommitteeMessages("c1")
	require.Len(suite.T(), msgs, 2)
	assert.Equal(suite.T(), "hello", msgs[0].Message)
	assert.Equal(suite.T(), "hi back", msgs[1].Message)

	assert.True(suite.T(), suite.manager.DeleteMessage(first.ID))
	assert.Len(suite.T(), suite.manager.GetCommitteeMessages("c1"), 1)
	assert.Len(suite.T(), storage.Get(suite.store, storage.KeyMessages, []models.Message{}), 2)

	_, err = suite.manager.SendMessage(nil, "c1", "anon")
	assert.ErrorIs(suite.T(), err, auth.ErrNotAuthenticated)
}

func (suite *BudgetingTestSuite) TestDeleteAccountCascadeAsymmetry() {
	authManager := auth.NewManager(suite.store, auth.WithBus(suite.bus))
	unsubscribe := suite.bus.Subscribe(func(e events.Event) {
		if e.Kind == events.AccountDeleted {
			suite.manager.Reload()
		}
	})
	defer unsubscribe()

	_, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "a", Amount: 1})
	require.NoError(suite.T(), err)
	_, err = suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "b", Amount: 2})
	require.NoError(suite.T(), err)
	_, err = suite.manager.AddExpense(suite.u2, models.ExpenseInput{Title: "c", Amount: 3})
	require.NoError(suite.T(), err)
	c, err := suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "Savers"})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.manager.JoinCommittee(suite.u2, c.ID))

	sess, err := authManager.Login("u1@example.com", "pw1")
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), authManager.DeleteAccount(sess))

	assert.Empty(suite.T(), suite.manager.GetUserExpenses(suite.u1))
	for _, e := range storage.Get(suite.store, storage.KeyExpenses, []models.Expense{}) {
		assert.NotEqual(suite.T(), "u1", e.UserID)
	}
	assert.Len(suite.T(), suite.manager.Expenses(), 1)

	got, _ := suite.manager.Committee(c.ID)
	assert.Equal(suite.T(), []string{"u1", "u2"}, got.Members, "memberships are not cascaded")
}

func (suite *BudgetingTestSuite) TestSessionOfDeletedAccountCannotCreateRecords() {
	authManager := auth.NewManager(suite.store, auth.WithBus(suite.bus))
	c, err := suite.manager.CreateCommittee(suite.u2, models.CommitteeInput{Name: "Savers"})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), authManager.DeleteAccount(suite.u1))
	require.True(suite.T(), suite.u1.Active(), "the caller still holds the old session")

	_, err = suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "late", Amount: 1})
	assert.ErrorIs(suite.T(), err, auth.ErrUserNotFound)
	_, err = suite.manager.CreateCommittee(suite.u1, models.CommitteeInput{Name: "Ghosts"})
	assert.ErrorIs(suite.T(), err, auth.ErrUserNotFound)
	assert.ErrorIs(suite.T(), suite.manager.JoinCommittee(suite.u1, c.ID), auth.ErrUserNotFound)
	_, err = suite.manager.SendMessage(suite.u1, c.ID, "hello?")
	assert.ErrorIs(suite.T(), err, auth.ErrUserNotFound)

	assert.Empty(suite.T(), suite.manager.Expenses())
	assert.Len(suite.T(), suite.manager.Committees(), 1)
	got, _ := suite.manager.Committee(c.ID)
	assert.Equal(suite.T(), []string{"u2"}, got.Members)
	assert.Empty(suite.T(), suite.manager.Messages())

	_, err = suite.manager.AddExpense(suite.u2, models.ExpenseInput{Title: "fine", Amount: 1})
	assert.NoError(suite.T(), err)
}

func (suite *BudgetingTestSuite) TestEventsPublishedAfterPersist() {
	var persisted []int
	unsubscribe := suite.bus.Subscribe(func(e events.Event) {
		if e.Kind == events.ExpensesChanged {
			persisted = append(persisted, len(storage.Get(suite.store, storage.KeyExpenses, []models.Expense{})))
			// Listeners may read back through the manager.
			_ = suite.manager.Expenses()
		}
	})
	defer unsubscribe()

	_, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "a", Amount: 1})
	require.NoError(suite.T(), err)
	_, err = suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "b", Amount: 1})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), []int{1, 2}, persisted)
}

func (suite *BudgetingTestSuite) TestMirrorsLoadedAtStart() {
	_, err := suite.manager.AddExpense(suite.u1, models.ExpenseInput{Title: "a", Amount: 1})
	require.NoError(suite.T(), err)

	reopened := suite.newManager(nil)
	assert.Len(suite.T(), reopened.Expenses(), 1)
}

func TestBudgetingSuite(t *testing.T) {
	suite.Run(t, new(BudgetingTestSuite))
}
