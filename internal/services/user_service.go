package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmduarte/taskhub-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(displayName, email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	EnsureAdmin(email, password string) error
}

// UserService provides business logic for registration and authentication.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// normalizeEmail lower-cases an email once at the boundary; the stored
// username and email are always the normalized form, so the uniqueness check
// is a plain unique index.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account with username = lower-cased email. A
// duplicate email, compared case-insensitively, yields ErrEmailTaken.
func (s *UserService) Register(displayName, email, password string) (models.User, error) {
	email = normalizeEmail(email)

	var count int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", email).Scan(&count); err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:          uuid.New().String(),
		Username:    email,
		Email:       email,
		DisplayName: displayName,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, email, display_name, password_hash, is_active, is_superuser, created_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Username, user.Email, user.DisplayName, string(hashed), user.IsActive, user.IsSuperuser, user.CreatedAt.UnixNano())
	if err != nil {
		// The unique index catches the race between check and insert.
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	return user, nil
}

// Authenticate verifies a user's credentials. Unknown user and wrong password
// produce the same error; a disabled account is only reported after the
// password verified.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, hash, err := s.getByUsername(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return models.User{}, ErrAccountDisabled
	}

	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	var createdAt int64
	row := s.db.QueryRow("SELECT id, username, email, display_name, is_active, is_superuser, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName, &user.IsActive, &user.IsSuperuser, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, nil
}

// EnsureAdmin creates the bootstrap superuser if no account with that email
// exists yet. Safe to call on every startup.
func (s *UserService) EnsureAdmin(email, password string) error {
	email = normalizeEmail(email)

	var count int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", email).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO users(id, username, email, display_name, password_hash, is_active, is_superuser, created_at) VALUES(?, ?, ?, ?, ?, 1, 1, ?)",
		uuid.New().String(), email, email, "Admin", string(hashed), time.Now().UTC().UnixNano(),
	)
	return err
}

func (s *UserService) getByUsername(username string) (models.User, string, error) {
	var user models.User
	var hash string
	var createdAt int64
	row := s.db.QueryRow("SELECT id, username, email, display_name, password_hash, is_active, is_superuser, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName, &hash, &user.IsActive, &user.IsSuperuser, &createdAt)
	if err != nil {
		return models.User{}, "", err
	}
	user.CreatedAt = time.Unix(0, createdAt).UTC()
	return user, hash, nil
}
