// Package events publishes reservation lifecycle notifications after a
// mutation has committed. Publishing never affects the mutation outcome.
package events

import (
	"context"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
)

type Type string

const (
	ReservationCreated       Type = "reservation.created"
	ReservationUpdated       Type = "reservation.updated"
	ReservationStatusChanged Type = "reservation.status_changed"
	ReservationCanceled      Type = "reservation.canceled"
	ReservationDeleted       Type = "reservation.deleted"
	ReservationOverdue       Type = "reservation.overdue"
)

// Event is the JSON payload sent to consumers. It carries enough context
// for notification or analytics without reading the store.
type Event struct {
	Type           Type                     `json:"type"`
	ReservationID  string                   `json:"reservation_id"`
	VehicleID      string                   `json:"vehicle_id"`
	RenterID       string                   `json:"renter_id"`
	Status         domain.ReservationStatus `json:"status"`
	PreviousStatus domain.ReservationStatus `json:"previous_status,omitempty"`
	VehicleStatus  domain.VehicleStatus     `json:"vehicle_status,omitempty"`
	StartAt        time.Time                `json:"start_at"`
	EndAt          time.Time                `json:"end_at"`
	OccurredAt     time.Time                `json:"occurred_at"`
}

// NewEvent builds an event describing r.
func NewEvent(t Type, r domain.Reservation) Event {
	return Event{
		Type:          t,
		ReservationID: r.ID,
		VehicleID:     r.VehicleID,
		RenterID:      r.RenterID,
		Status:        r.Status,
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		OccurredAt:    time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the structured log.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

func (LogPublisher) Publish(ctx context.Context, e Event) error {
	logger.InfoContext(ctx, "Reservation event",
		"type", e.Type,
		"reservation_id", e.ReservationID,
		"vehicle_id", e.VehicleID,
		"status", e.Status,
		"previous_status", e.PreviousStatus,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
