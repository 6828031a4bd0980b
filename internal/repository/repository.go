package repository

import (
	"context"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

// ReservationStore is the keyed reservation and vehicle-status collection.
// It performs no conflict checking of its own; the reservation service
// enforces the no-overlap invariant before writing. Missing records are
// reported as *domain.NotFoundError.
type ReservationStore interface {
	// ListReservations returns the reservations of vehicleID, or all of
	// them when vehicleID is empty.
	ListReservations(ctx context.Context, vehicleID string) ([]domain.Reservation, error)
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	InsertReservation(ctx context.Context, r *domain.Reservation) error
	ReplaceReservation(ctx context.Context, id string, r *domain.Reservation) error
	DeleteReservation(ctx context.Context, id string) error

	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	SetVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) error
	DeleteVehicle(ctx context.Context, id string) error
}

// Gateway is the store entry point used by the reservation service.
// Atomically runs fn against a transactional view scoped to vehicleID:
// every write made through tx becomes visible together when fn returns
// nil and none does when it returns an error.
type Gateway interface {
	ReservationStore
	Atomically(ctx context.Context, vehicleID string, fn func(ctx context.Context, tx ReservationStore) error) error
}

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	// UpdateDetails writes everything except status.
	UpdateDetails(ctx context.Context, v *domain.Vehicle) error
	List(ctx context.Context) ([]domain.Vehicle, error)
}

type RenterRepository interface {
	Create(ctx context.Context, r *domain.Renter) error
	GetByID(ctx context.Context, id string) (*domain.Renter, error)
	Update(ctx context.Context, r *domain.Renter) error
	List(ctx context.Context) ([]domain.Renter, error)
}

type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, d *domain.Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	ListExpiredPending(ctx context.Context, now time.Time) ([]domain.Document, error)
}
