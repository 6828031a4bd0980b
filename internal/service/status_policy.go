package service

import (
	"fmt"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

// StatusPolicy decides the vehicle status written when a reservation stops
// blocking its vehicle, which happens on cancel, return and delete.
type StatusPolicy interface {
	Name() string
	// AfterRelease receives the released reservation and the vehicle's
	// reservations as they will be after the write.
	AfterRelease(released domain.Reservation, remaining []domain.Reservation) domain.VehicleStatus
}

// LastWriterWins always frees the vehicle, even when another reservation on
// it is still active.
type LastWriterWins struct{}

func (LastWriterWins) Name() string { return "last_writer_wins" }

func (LastWriterWins) AfterRelease(domain.Reservation, []domain.Reservation) domain.VehicleStatus {
	return domain.VehicleStatusAvailable
}

// ReconcileWithActive keeps the vehicle RENTED or RESERVED while another
// blocking reservation remains. A checked-out reservation wins over a
// reserved one.
type ReconcileWithActive struct{}

func (ReconcileWithActive) Name() string { return "reconcile" }

func (ReconcileWithActive) AfterRelease(released domain.Reservation, remaining []domain.Reservation) domain.VehicleStatus {
	status := domain.VehicleStatusAvailable
	for _, r := range remaining {
		if r.ID == released.ID || r.VehicleID != released.VehicleID {
			continue
		}
		switch r.Status {
		case domain.ReservationStatusCheckedOut:
			return domain.VehicleStatusRented
		case domain.ReservationStatusReserved:
			status = domain.VehicleStatusReserved
		}
	}
	return status
}

// ParseStatusPolicy maps the configured policy name to its implementation.
func ParseStatusPolicy(name string) (StatusPolicy, error) {
	switch name {
	case "", "last_writer_wins":
		return LastWriterWins{}, nil
	case "reconcile":
		return ReconcileWithActive{}, nil
	}
	return nil, fmt.Errorf("unsupported status policy: %s", name)
}
