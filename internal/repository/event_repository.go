package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"revenue-split-engine/internal/model"
)

// EventRepository provides data access methods for the event table. Events
// are append-only notifications; nothing in the engine reads them back.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository with the provided database connection.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Emit appends one event. The payload is marshalled to JSON; emission runs
// inside the operation's transaction so a failed call emits nothing.
func (r *EventRepository) Emit(ctx context.Context, q Querier, engineAddress, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	query := `
          INSERT INTO event (id, engine_address, type, payload, created_at)
          VALUES (?, ?, ?, ?, ?)
      `
	_, err = q.ExecContext(ctx, query,
		uuid.New().String(),
		engineAddress,
		eventType,
		string(body),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetEvents retrieves the events of one engine, oldest first.
func (r *EventRepository) GetEvents(ctx context.Context, engineAddress string) ([]model.Event, error) {
	query := `
          SELECT id, engine_address, type, payload, created_at
          FROM event
          WHERE engine_address = ?
          ORDER BY created_at, id
      `

	rows, err := r.db.QueryContext(ctx, query, engineAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to query event table: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.EngineAddress, &e.Type, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event table results: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event table: %w", err)
	}

	return events, nil
}
