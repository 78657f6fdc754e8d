package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmduarte/taskhub-be/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegisterStoresLowercasedEmail(t *testing.T) {
	users := NewUserService(newTestDB(t))

	user, err := users.Register("Jane", "Jane@Test.COM", "password123")
	require.NoError(t, err)

	assert.Equal(t, "jane@test.com", user.Email)
	assert.Equal(t, "jane@test.com", user.Username)
	assert.Equal(t, "Jane", user.DisplayName)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.Empty(t, user.PasswordHash)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	_, err := users.Register("User1", "user1@test.com", "password123")
	require.NoError(t, err)

	_, err = users.Register("Impostor", "USER1@test.com", "password456")
	assert.ErrorIs(t, err, ErrEmailTaken)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM users").Scan(&count))
	assert.Equal(t, 1, count, "no new identity should be created")
}

func TestAuthenticate(t *testing.T) {
	users := NewUserService(newTestDB(t))

	registered, err := users.Register("Jane", "jane@test.com", "password123")
	require.NoError(t, err)

	user, err := users.Authenticate("jane@test.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	// Mixed-case email still authenticates.
	_, err = users.Authenticate("Jane@Test.com", "password123")
	assert.NoError(t, err)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	users := NewUserService(newTestDB(t))

	_, err := users.Register("Jane", "jane@test.com", "password123")
	require.NoError(t, err)

	// Unknown user and wrong password must be indistinguishable.
	_, errUnknown := users.Authenticate("nobody@test.com", "password123")
	_, errWrongPw := users.Authenticate("jane@test.com", "wrongpassword")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	user, err := users.Register("Jane", "jane@test.com", "password123")
	require.NoError(t, err)

	_, err = db.Exec("UPDATE users SET is_active = 0 WHERE id = ?", user.ID)
	require.NoError(t, err)

	_, err = users.Authenticate("jane@test.com", "password123")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestGetUserByID(t *testing.T) {
	users := NewUserService(newTestDB(t))

	registered, err := users.Register("Jane", "jane@test.com", "password123")
	require.NoError(t, err)

	user, err := users.GetUserByID(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@test.com", user.Username)

	_, err = users.GetUserByID("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	require.NoError(t, users.EnsureAdmin("admin@test.com", "adminpass"))
	require.NoError(t, users.EnsureAdmin("admin@test.com", "adminpass"))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", "admin@test.com").Scan(&count))
	assert.Equal(t, 1, count)

	admin, err := users.Authenticate("admin@test.com", "adminpass")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperuser)
}
