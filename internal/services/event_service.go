package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jmduarte/taskhub-be/internal/models"
)

// EventServiceProvider defines the interface for the activity log.
type EventServiceProvider interface {
	Record(eventType, level, message string, userID *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records and reads the activity log.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// Record appends an entry to the activity log.
func (s *EventService) Record(eventType, level, message string, userID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt.UnixNano())
	return err
}

// GetRecentEvents retrieves the most recent entries, newest first.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		var createdAt int64
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &createdAt); err != nil {
			return nil, err
		}
		event.CreatedAt = time.Unix(0, createdAt).UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}
