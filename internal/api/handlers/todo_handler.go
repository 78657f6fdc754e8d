package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/rs/zerolog/log"

	"github.com/jmduarte/taskhub-be/internal/auth"
	"github.com/jmduarte/taskhub-be/internal/models"
	"github.com/jmduarte/taskhub-be/internal/services"
)

// TodoHandler handles HTTP requests for the todo resource.
type TodoHandler struct {
	todos  services.TodoServiceProvider
	users  services.UserServiceProvider
	events services.EventServiceProvider
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todos services.TodoServiceProvider, users services.UserServiceProvider, events services.EventServiceProvider) *TodoHandler {
	return &TodoHandler{todos: todos, users: users, events: events}
}

// TodoPayload defines the structure for create and update requests. Any
// owner supplied by the client is ignored; the owner is always the caller.
type TodoPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   *bool  `json:"completed,omitempty"`
}

// Validate runs the todo validation rules.
func (p TodoPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.Description, validation.Required),
	)
}

// todoSummary is the short representation returned by the toggle endpoint.
type todoSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// caller resolves the authenticated user from the request context. The
// middleware guarantees claims exist; the account may still have vanished or
// been disabled since the token was issued.
func (h *TodoHandler) caller(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return models.User{}, false
	}
	user, err := h.users.GetUserByID(claims.UserID)
	if err != nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "invalid auth token")
		return models.User{}, false
	}
	return user, true
}

// List handles the filtered, sorted, paginated list request.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	opts := models.TodoListOptions{
		TitleSearch:       q.Get("title_search"),
		DescriptionSearch: q.Get("description_search"),
		Search:            q.Get("search"),
		Ordering:          q.Get("ordering"),
	}
	if v := q.Get("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			writeFieldErrors(w, validation.Errors{"completed": errors.New("must be true or false")})
			return
		}
		opts.Completed = &completed
	}
	if v := q.Get("page"); v != "" {
		opts.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("page_size"); v != "" {
		opts.PageSize, _ = strconv.Atoi(v)
	}

	page, err := h.todos.List(user, opts)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to list todos")
		writeError(w, http.StatusInternalServerError, "failed to list todos")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Create handles the request to create a new todo owned by the caller.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload TodoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeFieldErrors(w, err)
		return
	}

	todo, err := h.todos.Create(user, payload.Title, payload.Description)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create todo")
		writeError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}

	if err := h.events.Record("todo.created", "info", user.DisplayLabel()+" created \""+todo.Title+"\"", &user.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record todo event")
	}

	writeJSON(w, http.StatusCreated, todo)
}

// Get handles the request to retrieve a single todo.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	todo, err := h.todos.GetTodoByID(user, chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrError(w, err, user.ID, "retrieve")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// Update handles the full-replace update request.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload TodoPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeFieldErrors(w, err)
		return
	}

	todo, err := h.todos.Update(user, chi.URLParam(r, "id"), payload.Title, payload.Description, payload.Completed)
	if err != nil {
		h.notFoundOrError(w, err, user.ID, "update")
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// Delete handles the request to permanently remove a todo.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.todos.Delete(user, chi.URLParam(r, "id")); err != nil {
		h.notFoundOrError(w, err, user.ID, "delete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleComplete flips a todo's completed flag and returns the short
// representation.
func (h *TodoHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	todo, err := h.todos.ToggleComplete(user, chi.URLParam(r, "id"))
	if err != nil {
		h.notFoundOrError(w, err, user.ID, "toggle")
		return
	}

	writeJSON(w, http.StatusOK, todoSummary{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
	})
}

func (h *TodoHandler) notFoundOrError(w http.ResponseWriter, err error, userID, op string) {
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	log.Error().Err(err).Str("user_id", userID).Str("op", op).Msg("Todo operation failed")
	writeError(w, http.StatusInternalServerError, "operation failed")
}
