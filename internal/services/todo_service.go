package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jmduarte/taskhub-be/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// TodoServiceProvider defines the interface for todo services. Every
// operation takes the caller so visibility can be enforced in one place.
type TodoServiceProvider interface {
	List(caller models.User, opts models.TodoListOptions) (models.TodoPage, error)
	Create(caller models.User, title, description string) (models.Todo, error)
	GetTodoByID(caller models.User, id string) (models.Todo, error)
	Update(caller models.User, id, title, description string, completed *bool) (models.Todo, error)
	Delete(caller models.User, id string) error
	ToggleComplete(caller models.User, id string) (models.Todo, error)
}

// TodoService provides business logic for todo management.
type TodoService struct {
	db *sql.DB
}

// NewTodoService creates a new TodoService.
func NewTodoService(db *sql.DB) *TodoService {
	return &TodoService{db: db}
}

// scopeForCaller returns the mandatory visibility predicate appended to every
// todo query: owners see only their own rows, superusers see everything.
func scopeForCaller(caller models.User) (string, []any) {
	if caller.IsSuperuser {
		return "1 = 1", nil
	}
	return "owner_id = ?", []any{caller.ID}
}

// Columns the list endpoint may order by.
var orderColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"completed":  "completed",
}

func orderClause(ordering string) string {
	if ordering == "" {
		ordering = "-created_at"
	}
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		ordering = ordering[1:]
	}
	col, ok := orderColumns[ordering]
	if !ok {
		col, dir = "created_at", "DESC"
	}
	// Secondary key keeps pagination stable across equal values.
	return col + " " + dir + ", id ASC"
}

// List returns the caller-visible todos matching every supplied filter,
// sorted and paginated.
func (s *TodoService) List(caller models.User, opts models.TodoListOptions) (models.TodoPage, error) {
	scope, args := scopeForCaller(caller)
	where := []string{scope}

	if opts.TitleSearch != "" {
		where = append(where, "title LIKE ?")
		args = append(args, "%"+opts.TitleSearch+"%")
	}
	if opts.DescriptionSearch != "" {
		where = append(where, "description LIKE ?")
		args = append(args, "%"+opts.DescriptionSearch+"%")
	}
	if opts.Completed != nil {
		where = append(where, "completed = ?")
		args = append(args, *opts.Completed)
	}
	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		args = append(args, "%"+opts.Search+"%", "%"+opts.Search+"%")
	}

	whereClause := strings.Join(where, " AND ")

	var count int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM todos WHERE "+whereClause, args...).Scan(&count); err != nil {
		return models.TodoPage{}, err
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := "SELECT id, title, description, completed, owner_id, created_at FROM todos WHERE " +
		whereClause + " ORDER BY " + orderClause(opts.Ordering) + " LIMIT ? OFFSET ?"
	rows, err := s.db.Query(query, append(args, pageSize, (page-1)*pageSize)...)
	if err != nil {
		return models.TodoPage{}, err
	}
	defer rows.Close()

	results := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return models.TodoPage{}, err
		}
		results = append(results, todo)
	}
	if err := rows.Err(); err != nil {
		return models.TodoPage{}, err
	}

	return models.TodoPage{Count: count, Page: page, PageSize: pageSize, Results: results}, nil
}

// Create stores a new todo. The owner is always the caller, regardless of
// anything the request body claimed.
func (s *TodoService) Create(caller models.User, title, description string) (models.Todo, error) {
	todo := models.Todo{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		OwnerID:     caller.ID,
		CreatedAt:   time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO todos(id, title, description, completed, owner_id, created_at) VALUES(?, ?, ?, 0, ?, ?)")
	if err != nil {
		return models.Todo{}, err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(todo.ID, todo.Title, todo.Description, todo.OwnerID, todo.CreatedAt.UnixNano()); err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}

// GetTodoByID retrieves a single caller-visible todo. A row owned by someone
// else yields ErrNotFound, same as a missing row.
func (s *TodoService) GetTodoByID(caller models.User, id string) (models.Todo, error) {
	scope, args := scopeForCaller(caller)
	row := s.db.QueryRow(
		"SELECT id, title, description, completed, owner_id, created_at FROM todos WHERE id = ? AND "+scope,
		append([]any{id}, args...)...,
	)
	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, ErrNotFound
		}
		return models.Todo{}, err
	}
	return todo, nil
}

// Update replaces a todo's mutable fields. A nil completed leaves the flag
// unchanged. The owner and creation time are immutable.
func (s *TodoService) Update(caller models.User, id, title, description string, completed *bool) (models.Todo, error) {
	current, err := s.GetTodoByID(caller, id)
	if err != nil {
		return models.Todo{}, err
	}

	newCompleted := current.Completed
	if completed != nil {
		newCompleted = *completed
	}

	if _, err := s.db.Exec(
		"UPDATE todos SET title = ?, description = ?, completed = ? WHERE id = ?",
		title, description, newCompleted, current.ID,
	); err != nil {
		return models.Todo{}, err
	}

	current.Title = title
	current.Description = description
	current.Completed = newCompleted
	return current, nil
}

// Delete permanently removes a caller-visible todo. Deleting a missing or
// foreign todo reports ErrNotFound, never a silent no-op.
func (s *TodoService) Delete(caller models.User, id string) error {
	scope, args := scopeForCaller(caller)
	res, err := s.db.Exec("DELETE FROM todos WHERE id = ? AND "+scope, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleComplete flips the completed flag. The flip happens in a single
// UPDATE so concurrent toggles serialize inside the store.
func (s *TodoService) ToggleComplete(caller models.User, id string) (models.Todo, error) {
	scope, args := scopeForCaller(caller)
	res, err := s.db.Exec("UPDATE todos SET completed = NOT completed WHERE id = ? AND "+scope, append([]any{id}, args...)...)
	if err != nil {
		return models.Todo{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Todo{}, err
	}
	if n == 0 {
		return models.Todo{}, ErrNotFound
	}
	return s.GetTodoByID(caller, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (models.Todo, error) {
	var todo models.Todo
	var createdAt int64
	if err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &todo.OwnerID, &createdAt); err != nil {
		return models.Todo{}, err
	}
	todo.CreatedAt = time.Unix(0, createdAt).UTC()
	return todo, nil
}
