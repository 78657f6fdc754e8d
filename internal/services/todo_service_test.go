package services

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmduarte/taskhub-be/internal/models"
)

func registerUser(t *testing.T, db *sql.DB, name, email string) models.User {
	t.Helper()
	user, err := NewUserService(db).Register(name, email, "password123")
	require.NoError(t, err)
	return user
}

func makeSuperuser(t *testing.T, db *sql.DB, user models.User) models.User {
	t.Helper()
	_, err := db.Exec("UPDATE users SET is_superuser = 1 WHERE id = ?", user.ID)
	require.NoError(t, err)
	user.IsSuperuser = true
	return user
}

func TestCreateForcesOwnerAndDefaults(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	todo, err := todos.Create(user, "Buy milk", "Two liters")
	require.NoError(t, err)

	assert.NotEmpty(t, todo.ID)
	assert.Equal(t, user.ID, todo.OwnerID)
	assert.False(t, todo.Completed)
	assert.WithinDuration(t, time.Now().UTC(), todo.CreatedAt, 5*time.Second)
}

func TestVisibilityScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user1 := registerUser(t, db, "User1", "user1@test.com")
	user2 := registerUser(t, db, "User2", "user2@test.com")

	_, err := todos.Create(user1, "User 1 Task", "desc")
	require.NoError(t, err)
	_, err = todos.Create(user2, "User 2 Task", "desc")
	require.NoError(t, err)

	page, err := todos.List(user1, models.TodoListOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "User 1 Task", page.Results[0].Title)
}

func TestSuperuserSeesAllTodos(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user1 := registerUser(t, db, "User1", "user1@test.com")
	user2 := registerUser(t, db, "User2", "user2@test.com")
	admin := makeSuperuser(t, db, registerUser(t, db, "Admin", "admin@test.com"))

	_, err := todos.Create(user1, "User 1 Task", "desc")
	require.NoError(t, err)
	_, err = todos.Create(user2, "User 2 Task", "desc")
	require.NoError(t, err)

	page, err := todos.List(admin, models.TodoListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)
}

func TestForeignTodoIndistinguishableFromMissing(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user1 := registerUser(t, db, "User1", "user1@test.com")
	user2 := registerUser(t, db, "User2", "user2@test.com")

	task, err := todos.Create(user2, "User 2 Task", "desc")
	require.NoError(t, err)

	_, err = todos.GetTodoByID(user1, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = todos.Update(user1, task.ID, "hacked", "hacked", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	err = todos.Delete(user1, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = todos.ToggleComplete(user1, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The row is untouched.
	kept, err := todos.GetTodoByID(user2, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "User 2 Task", kept.Title)
	assert.False(t, kept.Completed)
}

func TestDeleteMissingTodoIsNotANoOpSuccess(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	err := todos.Delete(user, "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleCompleteTwiceRestoresOriginal(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	task, err := todos.Create(user, "Task", "desc")
	require.NoError(t, err)
	require.False(t, task.Completed)

	toggled, err := todos.ToggleComplete(user, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	toggled, err = todos.ToggleComplete(user, task.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Completed)
}

func TestUpdateReplacesFields(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	task, err := todos.Create(user, "Old title", "Old desc")
	require.NoError(t, err)

	// Nil completed leaves the flag unchanged.
	updated, err := todos.Update(user, task.ID, "New title", "New desc", nil)
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "New desc", updated.Description)
	assert.False(t, updated.Completed)
	assert.Equal(t, task.OwnerID, updated.OwnerID)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)

	completed := true
	updated, err = todos.Update(user, task.ID, "New title", "New desc", &completed)
	require.NoError(t, err)
	assert.True(t, updated.Completed)
}

func TestListCompletedFilter(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	done, err := todos.Create(user, "Done task", "desc")
	require.NoError(t, err)
	_, err = todos.Create(user, "Pending task", "desc")
	require.NoError(t, err)
	_, err = todos.ToggleComplete(user, done.ID)
	require.NoError(t, err)

	completed := true
	page, err := todos.List(user, models.TodoListOptions{Completed: &completed})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, done.ID, page.Results[0].ID)

	completed = false
	page, err = todos.List(user, models.TodoListOptions{Completed: &completed})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Pending task", page.Results[0].Title)
}

func TestListSubstringFilters(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	_, err := todos.Create(user, "Buy milk", "from the corner shop")
	require.NoError(t, err)
	_, err = todos.Create(user, "Walk the dog", "around the park")
	require.NoError(t, err)

	// Case-insensitive title match.
	page, err := todos.List(user, models.TodoListOptions{TitleSearch: "MILK"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Buy milk", page.Results[0].Title)

	page, err = todos.List(user, models.TodoListOptions{DescriptionSearch: "park"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Walk the dog", page.Results[0].Title)

	// Free-text search spans title and description.
	page, err = todos.List(user, models.TodoListOptions{Search: "the"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Count)

	page, err = todos.List(user, models.TodoListOptions{Search: "corner"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "Buy milk", page.Results[0].Title)
}

func TestListOrdering(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, title := range []string{"banana", "apple", "cherry"} {
		task, err := todos.Create(user, title, "desc")
		require.NoError(t, err)
		// Pin distinct creation times so the default ordering is deterministic.
		_, err = db.Exec("UPDATE todos SET created_at = ? WHERE id = ?", base.Add(time.Duration(i)*time.Minute).UnixNano(), task.ID)
		require.NoError(t, err)
	}

	titles := func(page models.TodoPage) []string {
		out := make([]string, 0, len(page.Results))
		for _, task := range page.Results {
			out = append(out, task.Title)
		}
		return out
	}

	// Default: newest first.
	page, err := todos.List(user, models.TodoListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry", "apple", "banana"}, titles(page))

	page, err = todos.List(user, models.TodoListOptions{Ordering: "created_at"})
	require.NoError(t, err)
	assert.Equal(t, []string{"banana", "apple", "cherry"}, titles(page))

	page, err = todos.List(user, models.TodoListOptions{Ordering: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "cherry"}, titles(page))

	page, err = todos.List(user, models.TodoListOptions{Ordering: "-title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry", "banana", "apple"}, titles(page))

	// Unknown column falls back to the default.
	page, err = todos.List(user, models.TodoListOptions{Ordering: "owner_id; DROP TABLE todos"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cherry", "apple", "banana"}, titles(page))
}

func TestListPagination(t *testing.T) {
	db := newTestDB(t)
	todos := NewTodoService(db)
	user := registerUser(t, db, "User1", "user1@test.com")

	for i := 0; i < 15; i++ {
		_, err := todos.Create(user, fmt.Sprintf("Task %02d", i), "desc")
		require.NoError(t, err)
	}

	page, err := todos.List(user, models.TodoListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 15, page.Count)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Len(t, page.Results, 10)

	page, err = todos.List(user, models.TodoListOptions{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 15, page.Count)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Results, 5)

	page, err = todos.List(user, models.TodoListOptions{Page: 1, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.PageSize)
	assert.Len(t, page.Results, 15)
}
