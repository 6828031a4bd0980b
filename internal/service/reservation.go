package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yassirbousseta123/car-rent-v1/internal/availability"
	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/events"
	"github.com/yassirbousseta123/car-rent-v1/internal/lock"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
	"github.com/yassirbousseta123/car-rent-v1/internal/utils"
)

// reservationService is the only writer of reservations and of the vehicle
// status projection. Every check-then-write runs under the vehicle lock and
// inside one store transaction.
type reservationService struct {
	store       repository.Gateway
	renterRepo  repository.RenterRepository
	locker      lock.Locker
	publisher   events.Publisher
	bufferHours float64
	policy      StatusPolicy
	now         func() time.Time
}

func NewReservationService(
	store repository.Gateway,
	renterRepo repository.RenterRepository,
	locker lock.Locker,
	publisher events.Publisher,
	bufferHours float64,
	policy StatusPolicy,
) ReservationService {
	if policy == nil {
		policy = LastWriterWins{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &reservationService{
		store:       store,
		renterRepo:  renterRepo,
		locker:      locker,
		publisher:   publisher,
		bufferHours: bufferHours,
		policy:      policy,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *reservationService) bufferFor(v *domain.Vehicle) time.Duration {
	if v.BufferHours != nil {
		return availability.BufferFromHours(*v.BufferHours)
	}
	return availability.BufferFromHours(s.bufferHours)
}

// withVehicle serializes fn against every other mutation of vehicleID.
func (s *reservationService) withVehicle(ctx context.Context, vehicleID string, fn func(ctx context.Context, tx repository.ReservationStore) error) error {
	log := logger.WithVehicle(vehicleID)
	unlock, err := s.locker.Lock(ctx, vehicleID)
	if err != nil {
		log.WarnContext(ctx, "Vehicle lock not acquired", "error", err)
		return fmt.Errorf("failed to lock vehicle %s: %w", vehicleID, err)
	}
	defer unlock()
	log.DebugContext(ctx, "Vehicle lock acquired")
	return s.store.Atomically(ctx, vehicleID, fn)
}

// releaseStatus is the vehicle status written when r no longer blocks.
func (s *reservationService) releaseStatus(ctx context.Context, tx repository.ReservationStore, r domain.Reservation) (domain.VehicleStatus, error) {
	remaining, err := tx.ListReservations(ctx, r.VehicleID)
	if err != nil {
		return "", err
	}
	return s.policy.AfterRelease(r, remaining), nil
}

func (s *reservationService) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		logger.WarnContext(ctx, "Failed to publish reservation event", "type", e.Type, "reservation_id", e.ReservationID, "error", err)
	}
}

func (s *reservationService) CheckAvailability(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) (*domain.AvailabilityResult, error) {
	if !start.Before(end) {
		return nil, domain.NewValidationError("end", "must be after start")
	}
	v, err := s.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListReservations(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	conflicts := availability.GetConflicts(list, start, end, vehicleID, s.bufferFor(v), excludeID)
	return &domain.AvailabilityResult{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

func (s *reservationService) FindNextAvailable(ctx context.Context, vehicleID string, from time.Time, bufferHours *float64) (time.Time, error) {
	if bufferHours != nil {
		if err := domain.ValidateBufferHours("buffer_hours", *bufferHours); err != nil {
			return time.Time{}, err
		}
	}
	if from.IsZero() {
		from = s.now()
	}
	v, err := s.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return time.Time{}, err
	}
	list, err := s.store.ListReservations(ctx, vehicleID)
	if err != nil {
		return time.Time{}, err
	}
	buffer := s.bufferFor(v)
	if bufferHours != nil {
		buffer = availability.BufferFromHours(*bufferHours)
	}
	return availability.NextAvailableStart(list, vehicleID, from.UTC(), buffer), nil
}

func (s *reservationService) BlockedRanges(ctx context.Context, vehicleID string) ([]domain.TimeRange, error) {
	v, err := s.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListReservations(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return availability.BlockedRanges(list, vehicleID, s.bufferFor(v)), nil
}

func (s *reservationService) CreateReservation(ctx context.Context, candidate *domain.Reservation) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CreateReservation", "vehicleID", candidate.VehicleID, "renterID", candidate.RenterID)

	r := *candidate
	r.StartAt = r.StartAt.UTC()
	r.EndAt = r.EndAt.UTC()
	if err := r.Validate(); err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, true)
		return nil, err
	}
	if _, err := s.renterRepo.GetByID(ctx, r.RenterID); err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, isExpected(err), "renterID", r.RenterID)
		return nil, err
	}

	now := s.now()
	r.ID = uuid.NewString()
	r.Status = domain.ReservationStatusReserved
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Fees == nil {
		r.Fees = []domain.Fee{}
	}

	err := s.withVehicle(ctx, r.VehicleID, func(ctx context.Context, tx repository.ReservationStore) error {
		v, err := tx.GetVehicle(ctx, r.VehicleID)
		if err != nil {
			return err
		}
		existing, err := tx.ListReservations(ctx, r.VehicleID)
		if err != nil {
			return err
		}
		if conflicts := availability.GetConflicts(existing, r.StartAt, r.EndAt, r.VehicleID, s.bufferFor(v), ""); len(conflicts) > 0 {
			return &domain.ConflictError{VehicleID: r.VehicleID, Conflicts: conflicts}
		}
		if err := tx.InsertReservation(ctx, &r); err != nil {
			return err
		}
		return tx.SetVehicleStatus(ctx, r.VehicleID, domain.VehicleStatusReserved)
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.CreateReservation", err, isExpected(err), "vehicleID", r.VehicleID)
		return nil, err
	}

	e := events.NewEvent(events.ReservationCreated, r)
	e.VehicleStatus = domain.VehicleStatusReserved
	s.publish(ctx, e)

	logger.ExitMethod("reservationService.CreateReservation", "reservationID", r.ID)
	return &r, nil
}

func (s *reservationService) UpdateReservation(ctx context.Context, id string, patch domain.ReservationPatch) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.UpdateReservation", "reservationID", id)

	if err := patch.Validate(); err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, true)
		return nil, err
	}
	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, isExpected(err))
		return nil, err
	}

	var updated domain.Reservation
	var previous domain.ReservationStatus
	var vehicleStatus domain.VehicleStatus
	err = s.withVehicle(ctx, current.VehicleID, func(ctx context.Context, tx repository.ReservationStore) error {
		cur, err := tx.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		next, err := patch.ApplyTo(*cur)
		if err != nil {
			return err
		}
		if patch.TouchesRange() && next.Status.BlocksVehicle() {
			v, err := tx.GetVehicle(ctx, next.VehicleID)
			if err != nil {
				return err
			}
			existing, err := tx.ListReservations(ctx, next.VehicleID)
			if err != nil {
				return err
			}
			if conflicts := availability.GetConflicts(existing, next.StartAt, next.EndAt, next.VehicleID, s.bufferFor(v), id); len(conflicts) > 0 {
				return &domain.ConflictError{VehicleID: next.VehicleID, Conflicts: conflicts}
			}
		}

		next.UpdatedAt = s.now()
		if err := tx.ReplaceReservation(ctx, id, &next); err != nil {
			return err
		}
		if next.Status != cur.Status {
			vehicleStatus = next.Status.VehicleStatusFor()
			if !next.Status.BlocksVehicle() {
				if vehicleStatus, err = s.releaseStatus(ctx, tx, next); err != nil {
					return err
				}
			}
			if err := tx.SetVehicleStatus(ctx, next.VehicleID, vehicleStatus); err != nil {
				return err
			}
		}
		updated = next
		previous = cur.Status
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.UpdateReservation", err, isExpected(err), "reservationID", id)
		return nil, err
	}

	if updated.Status != previous {
		t := events.ReservationStatusChanged
		if updated.Status == domain.ReservationStatusCanceled {
			t = events.ReservationCanceled
		}
		e := events.NewEvent(t, updated)
		e.PreviousStatus = previous
		e.VehicleStatus = vehicleStatus
		s.publish(ctx, e)
	} else {
		s.publish(ctx, events.NewEvent(events.ReservationUpdated, updated))
	}

	logger.ExitMethod("reservationService.UpdateReservation", "reservationID", id, "status", updated.Status)
	return &updated, nil
}

// CancelReservation is idempotent for already canceled reservations.
func (s *reservationService) CancelReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	logger.EnterMethod("reservationService.CancelReservation", "reservationID", id)

	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.CancelReservation", err, isExpected(err))
		return nil, err
	}

	var canceled domain.Reservation
	var previous domain.ReservationStatus
	var vehicleStatus domain.VehicleStatus
	err = s.withVehicle(ctx, current.VehicleID, func(ctx context.Context, tx repository.ReservationStore) error {
		cur, err := tx.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		previous = cur.Status
		canceled = *cur
		if cur.Status == domain.ReservationStatusCanceled {
			return nil
		}
		if !cur.Status.CanTransitionTo(domain.ReservationStatusCanceled) {
			return domain.NewValidationError("status", "a "+string(cur.Status)+" reservation cannot be canceled")
		}

		canceled.Status = domain.ReservationStatusCanceled
		canceled.UpdatedAt = s.now()
		if err := tx.ReplaceReservation(ctx, id, &canceled); err != nil {
			return err
		}
		if vehicleStatus, err = s.releaseStatus(ctx, tx, canceled); err != nil {
			return err
		}
		return tx.SetVehicleStatus(ctx, canceled.VehicleID, vehicleStatus)
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.CancelReservation", err, isExpected(err), "reservationID", id)
		return nil, err
	}

	if previous != domain.ReservationStatusCanceled {
		e := events.NewEvent(events.ReservationCanceled, canceled)
		e.PreviousStatus = previous
		e.VehicleStatus = vehicleStatus
		s.publish(ctx, e)
	}

	logger.ExitMethod("reservationService.CancelReservation", "reservationID", id)
	return &canceled, nil
}

func (s *reservationService) DeleteReservation(ctx context.Context, id string) error {
	logger.EnterMethod("reservationService.DeleteReservation", "reservationID", id)

	current, err := s.store.GetReservation(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("reservationService.DeleteReservation", err, isExpected(err))
		return err
	}

	var deleted domain.Reservation
	var vehicleStatus domain.VehicleStatus
	err = s.withVehicle(ctx, current.VehicleID, func(ctx context.Context, tx repository.ReservationStore) error {
		cur, err := tx.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteReservation(ctx, id); err != nil {
			return err
		}
		deleted = *cur
		if vehicleStatus, err = s.releaseStatus(ctx, tx, deleted); err != nil {
			return err
		}
		return tx.SetVehicleStatus(ctx, cur.VehicleID, vehicleStatus)
	})
	if err != nil {
		logger.ExitMethodWithError("reservationService.DeleteReservation", err, isExpected(err), "reservationID", id)
		return err
	}

	e := events.NewEvent(events.ReservationDeleted, deleted)
	e.VehicleStatus = vehicleStatus
	s.publish(ctx, e)

	logger.ExitMethod("reservationService.DeleteReservation", "reservationID", id)
	return nil
}

func (s *reservationService) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *reservationService) ListReservations(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	return s.store.ListReservations(ctx, vehicleID)
}

func (s *reservationService) QuoteReservation(ctx context.Context, id string) (*utils.QuoteBreakdown, error) {
	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	q := utils.CalculateQuote(*r)
	return &q, nil
}

// ListOverdue returns checked-out reservations whose end has passed.
func (s *reservationService) ListOverdue(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	all, err := s.store.ListReservations(ctx, "")
	if err != nil {
		return nil, err
	}
	overdue := []domain.Reservation{}
	for _, r := range all {
		if r.Status == domain.ReservationStatusCheckedOut && r.EndAt.Before(now) {
			overdue = append(overdue, r)
		}
	}
	return overdue, nil
}

// isExpected reports whether err is a caller mistake rather than a fault.
func isExpected(err error) bool {
	if domain.IsValidation(err) {
		return true
	}
	if _, ok := domain.AsConflict(err); ok {
		return true
	}
	if _, ok := domain.AsInUse(err); ok {
		return true
	}
	return errors.Is(err, domain.ErrNotFound)
}
