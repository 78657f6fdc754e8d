package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/rs/zerolog/log"

	"github.com/jmduarte/taskhub-be/internal/auth"
	"github.com/jmduarte/taskhub-be/internal/services"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	users  services.UserServiceProvider
	events services.EventServiceProvider
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, events services.EventServiceProvider, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, events: events, tokens: tokens}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs the registration validation rules.
func (p RegisterPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 150)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs the login validation rules.
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// RefreshPayload defines the structure for token refresh requests.
type RefreshPayload struct {
	Refresh string `json:"refresh"`
}

// Validate runs the refresh validation rules.
func (p RefreshPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Refresh, validation.Required),
	)
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeFieldErrors(w, err)
		return
	}

	user, err := h.users.Register(payload.Name, payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeFieldErrors(w, validation.Errors{"email": err})
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	if err := h.events.Record("user.registered", "info", user.DisplayLabel()+" registered", &user.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record registration event")
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"name":  user.DisplayName,
		"email": user.Email,
	})
}

// Login handles email+password authentication and issues the token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeFieldErrors(w, err)
		return
	}

	user, err := h.users.Authenticate(payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountDisabled):
			writeError(w, http.StatusUnauthorized, "account disabled")
		case errors.Is(err, services.ErrInvalidCredentials):
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			writeError(w, http.StatusUnauthorized, "authentication failed")
		default:
			log.Error().Err(err).Msg("Authentication lookup failed")
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	access, refresh, err := h.tokens.IssuePair(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token pair")
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}

	if err := h.events.Record("user.login", "info", user.DisplayLabel()+" logged in", &user.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record login event")
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access":  access,
		"refresh": refresh,
	})
}

// Refresh mints a new access token from a valid refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload RefreshPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeFieldErrors(w, err)
		return
	}

	userID, err := h.tokens.ParseRefreshToken(payload.Refresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	user, err := h.users.GetUserByID(userID)
	if err != nil || !user.IsActive {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	access, err := h.tokens.IssueAccessToken(user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue access token")
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}
