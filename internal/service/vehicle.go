package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/lock"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

// vehicleService owns the registry side of vehicles. Status changes and
// removal run under the same vehicle lock and store transaction as the
// reservation service.
type vehicleService struct {
	vehicleRepo repository.VehicleRepository
	store       repository.Gateway
	locker      lock.Locker
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, store repository.Gateway, locker lock.Locker) VehicleService {
	return &vehicleService{vehicleRepo: vehicleRepo, store: store, locker: locker}
}

func (s *vehicleService) withVehicle(ctx context.Context, vehicleID string, fn func(ctx context.Context, tx repository.ReservationStore) error) error {
	unlock, err := s.locker.Lock(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to lock vehicle %s: %w", vehicleID, err)
	}
	defer unlock()
	return s.store.Atomically(ctx, vehicleID, fn)
}

// RegisterVehicle stores a new vehicle. The initial status may only be an
// administrative one; RESERVED and RENTED are reached through reservations.
func (s *vehicleService) RegisterVehicle(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	created := *v
	if created.Status == "" {
		created.Status = domain.VehicleStatusAvailable
	}
	if err := created.Validate(); err != nil {
		return nil, err
	}
	if !created.Status.Administrative() {
		return nil, domain.NewValidationError("status", "must be AVAILABLE, MAINTENANCE or INACTIVE at registration")
	}

	now := time.Now().UTC()
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Images == nil {
		created.Images = []string{}
	}
	if err := s.vehicleRepo.Create(ctx, &created); err != nil {
		return nil, err
	}
	logger.Info("Vehicle registered", "vehicle_id", created.ID, "plate", created.Plate, "status", created.Status)
	return &created, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

// UpdateVehicle changes descriptive fields only. The stored status is left
// as the reservation lifecycle last wrote it.
func (s *vehicleService) UpdateVehicle(ctx context.Context, id string, update domain.VehicleUpdate) (*domain.Vehicle, error) {
	v, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(v)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.UpdatedAt = time.Now().UTC()
	if err := s.vehicleRepo.UpdateDetails(ctx, v); err != nil {
		return nil, err
	}
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *vehicleService) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.vehicleRepo.List(ctx)
}

// ChangeStatus is the administrative status change. Only AVAILABLE,
// MAINTENANCE and INACTIVE may be set, and only while no reservation
// blocks the vehicle.
func (s *vehicleService) ChangeStatus(ctx context.Context, id string, status domain.VehicleStatus) (*domain.Vehicle, error) {
	logger.EnterMethod("vehicleService.ChangeStatus", "vehicleID", id, "status", status)

	if !status.Administrative() {
		err := domain.NewValidationError("status", "must be AVAILABLE, MAINTENANCE or INACTIVE")
		logger.ExitMethodWithError("vehicleService.ChangeStatus", err, true)
		return nil, err
	}

	var previous domain.VehicleStatus
	err := s.withVehicle(ctx, id, func(ctx context.Context, tx repository.ReservationStore) error {
		v, err := tx.GetVehicle(ctx, id)
		if err != nil {
			return err
		}
		previous = v.Status
		list, err := tx.ListReservations(ctx, id)
		if err != nil {
			return err
		}
		var blocking []string
		for _, r := range list {
			if r.Status.BlocksVehicle() {
				blocking = append(blocking, r.ID)
			}
		}
		if len(blocking) > 0 {
			return &domain.InUseError{VehicleID: id, ReservationIDs: blocking}
		}
		return tx.SetVehicleStatus(ctx, id, status)
	})
	if err != nil {
		logger.ExitMethodWithError("vehicleService.ChangeStatus", err, isExpected(err), "vehicleID", id)
		return nil, err
	}

	logger.WithVehicle(id).Info("Vehicle status changed", "from", previous, "to", status)
	logger.ExitMethod("vehicleService.ChangeStatus", "vehicleID", id)
	return s.vehicleRepo.GetByID(ctx, id)
}

// DeleteVehicle removes a vehicle that no reservation references, whatever
// the reservation's status.
func (s *vehicleService) DeleteVehicle(ctx context.Context, id string) error {
	logger.EnterMethod("vehicleService.DeleteVehicle", "vehicleID", id)

	err := s.withVehicle(ctx, id, func(ctx context.Context, tx repository.ReservationStore) error {
		if _, err := tx.GetVehicle(ctx, id); err != nil {
			return err
		}
		list, err := tx.ListReservations(ctx, id)
		if err != nil {
			return err
		}
		if len(list) > 0 {
			ids := make([]string, 0, len(list))
			for _, r := range list {
				ids = append(ids, r.ID)
			}
			return &domain.InUseError{VehicleID: id, ReservationIDs: ids}
		}
		return tx.DeleteVehicle(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("vehicleService.DeleteVehicle", err, isExpected(err), "vehicleID", id)
		return err
	}

	logger.WithVehicle(id).Info("Vehicle deleted")
	logger.ExitMethod("vehicleService.DeleteVehicle", "vehicleID", id)
	return nil
}
