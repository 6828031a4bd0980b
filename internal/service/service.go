package service

import (
	"context"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/utils"
)

type ReservationService interface {
	CheckAvailability(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (*domain.AvailabilityResult, error)
	FindNextAvailable(ctx context.Context, vehicleID string, from time.Time, bufferHours *float64) (time.Time, error)
	BlockedRanges(ctx context.Context, vehicleID string) ([]domain.TimeRange, error)
	CreateReservation(ctx context.Context, candidate *domain.Reservation) (*domain.Reservation, error)
	UpdateReservation(ctx context.Context, id string, patch domain.ReservationPatch) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, id string) (*domain.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	ListReservations(ctx context.Context, vehicleID string) ([]domain.Reservation, error)
	QuoteReservation(ctx context.Context, id string) (*utils.QuoteBreakdown, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

type VehicleService interface {
	RegisterVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, update domain.VehicleUpdate) (*domain.Vehicle, error)
	ChangeStatus(ctx context.Context, id string, status domain.VehicleStatus) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
}

type RenterService interface {
	RegisterRenter(ctx context.Context, r *domain.Renter) (*domain.Renter, error)
	GetRenter(ctx context.Context, id string) (*domain.Renter, error)
	UpdateRenter(ctx context.Context, id string, update domain.RenterUpdate) (*domain.Renter, error)
	ListRenters(ctx context.Context) ([]domain.Renter, error)
}

type DocumentService interface {
	RequestUpload(ctx context.Context, reservationID string, kind domain.DocumentKind, fileName, mime string) (*domain.Document, string, error) // returns document, uploadURL
	ConfirmUpload(ctx context.Context, id string) (*domain.Document, string, error)                                                         // returns document, downloadURL
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	CleanupExpired(ctx context.Context, now time.Time) (int, error)
}
