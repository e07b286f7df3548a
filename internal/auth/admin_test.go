package auth

import (
	"budget-tracker/internal/events"
	"budget-tracker/internal/models"
	"budget-tracker/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *AuthTestSuite) adminSession() *Session {
	_, err := suite.manager.Register(models.RegisterInput{
		Name: "Admin", Email: "admin@example.com", Password: "admin123", Role: models.RoleAdmin,
	})
	require.NoError(suite.T(), err)
	sess, err := suite.manager.Login("admin@example.com", "admin123")
	require.NoError(suite.T(), err)
	require.True(suite.T(), sess.IsAdmin())
	return sess
}

func (suite *AuthTestSuite) TestAdminOperationsForbidden() {
	alice := suite.register("Alice", "alice@example.com", "secret1")
	sess, err := suite.manager.Login("alice@example.com", "secret1")
	require.NoError(suite.T(), err)

	for name, s := range map[string]*Session{"nil": nil, "anonymous": {}, "user": sess} {
		suite.Run(name, func() {
			_, err := suite.manager.Users(s)
			assert.ErrorIs(suite.T(), err, ErrForbidden)
			_, err = suite.manager.ToggleBan(s, alice.ID)
			assert.ErrorIs(suite.T(), err, ErrForbidden)
			assert.ErrorIs(suite.T(), suite.manager.DeleteUser(s, alice.ID), ErrForbidden)
		})
	}
	assert.Len(suite.T(), suite.users(), 1)
}

func (suite *AuthTestSuite) TestUsersOmitsPasswords() {
	suite.register("Alice", "alice@example.com", "secret1")
	admin := suite.adminSession()

	users, err := suite.manager.Users(admin)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), users, 2)
	assert.Equal(suite.T(), "Alice", users[0].Name)
	assert.True(suite.T(), users[1].IsAdmin())
}

func (suite *AuthTestSuite) TestToggleBan() {
	alice := suite.register("Alice", "alice@example.com", "secret1")
	admin := suite.adminSession()

	su, err := suite.manager.ToggleBan(admin, alice.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.UserStatusBanned, su.Status)

	_, err = suite.manager.Login("alice@example.com", "secret1")
	assert.ErrorIs(suite.T(), err, ErrAccountBanned)

	su, err = suite.manager.ToggleBan(admin, alice.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.UserStatusActive, su.Status)

	_, err = suite.manager.ToggleBan(admin, "missing")
	assert.ErrorIs(suite.T(), err, ErrUserNotFound)
}

func (suite *AuthTestSuite) TestDeleteUser() {
	alice := suite.register("Alice", "alice@example.com", "secret1")
	suite.store.Set(storage.KeyExpenses, []models.Expense{{ID: "e1", UserID: alice.ID}})
	admin := suite.adminSession()

	var deleted []string
	unsubscribe := suite.bus.Subscribe(func(e events.Event) {
		if e.Kind == events.AccountDeleted {
			deleted = append(deleted, e.UserID)
		}
	})
	defer unsubscribe()

	require.NoError(suite.T(), suite.manager.DeleteUser(admin, alice.ID))

	assert.Len(suite.T(), suite.users(), 1)
	assert.Empty(suite.T(), storage.Get(suite.store, storage.KeyExpenses, []models.Expense{}))
	assert.Equal(suite.T(), []string{alice.ID}, deleted)
	assert.True(suite.T(), suite.manager.IsAuthenticated(), "admin stays logged in")

	assert.ErrorIs(suite.T(), suite.manager.DeleteUser(admin, alice.ID), ErrUserNotFound)
}

func (suite *AuthTestSuite) TestDeleteUserSelfEndsSession() {
	admin := suite.adminSession()

	require.NoError(suite.T(), suite.manager.DeleteUser(admin, admin.UserID()))

	assert.False(suite.T(), suite.manager.IsAuthenticated())
	assert.Empty(suite.T(), suite.users())
}
