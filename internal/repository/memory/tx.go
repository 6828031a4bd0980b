package memory

import (
	"context"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

// tx stages writes over the committed maps. A nil staged reservation
// marks a delete.
type tx struct {
	g               *gateway
	reservations    map[string]*domain.Reservation
	statuses        map[string]domain.VehicleStatus
	deletedVehicles map[string]bool
}

func newTx(g *gateway) *tx {
	return &tx{
		g:               g,
		reservations:    make(map[string]*domain.Reservation),
		statuses:        make(map[string]domain.VehicleStatus),
		deletedVehicles: make(map[string]bool),
	}
}

func (t *tx) ListReservations(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	base, err := t.g.ListReservations(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]domain.Reservation, len(base))
	for _, r := range base {
		merged[r.ID] = r
	}
	for id, staged := range t.reservations {
		if staged == nil {
			delete(merged, id)
			continue
		}
		if vehicleID == "" || staged.VehicleID == vehicleID {
			merged[id] = copyReservation(*staged)
		}
	}
	out := make([]domain.Reservation, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sortReservations(out)
	return out, nil
}

func (t *tx) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	if staged, ok := t.reservations[id]; ok {
		if staged == nil {
			return nil, domain.NewNotFoundError("reservation", id)
		}
		c := copyReservation(*staged)
		return &c, nil
	}
	return t.g.GetReservation(ctx, id)
}

func (t *tx) InsertReservation(ctx context.Context, r *domain.Reservation) error {
	c := copyReservation(*r)
	t.reservations[r.ID] = &c
	return nil
}

func (t *tx) ReplaceReservation(ctx context.Context, id string, r *domain.Reservation) error {
	if _, err := t.GetReservation(ctx, id); err != nil {
		return err
	}
	c := copyReservation(*r)
	c.ID = id
	t.reservations[id] = &c
	return nil
}

func (t *tx) DeleteReservation(ctx context.Context, id string) error {
	if _, err := t.GetReservation(ctx, id); err != nil {
		return err
	}
	t.reservations[id] = nil
	return nil
}

func (t *tx) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	if t.deletedVehicles[id] {
		return nil, domain.NewNotFoundError("vehicle", id)
	}
	v, err := t.g.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}
	if status, ok := t.statuses[id]; ok {
		v.Status = status
	}
	return v, nil
}

func (t *tx) SetVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	if _, err := t.GetVehicle(ctx, id); err != nil {
		return err
	}
	t.statuses[id] = status
	return nil
}

func (t *tx) DeleteVehicle(ctx context.Context, id string) error {
	if _, err := t.GetVehicle(ctx, id); err != nil {
		return err
	}
	delete(t.statuses, id)
	t.deletedVehicles[id] = true
	return nil
}

// commit applies every staged write under one critical section so readers
// see all of them or none.
func (t *tx) commit() error {
	d := t.g.db
	d.mu.Lock()
	defer d.mu.Unlock()

	for id := range t.statuses {
		if _, ok := d.vehicles[id]; !ok {
			return domain.NewNotFoundError("vehicle", id)
		}
	}

	now := time.Now().UTC()
	for id, staged := range t.reservations {
		if staged == nil {
			delete(d.reservations, id)
			continue
		}
		d.reservations[id] = *staged
	}
	for id, status := range t.statuses {
		v := d.vehicles[id]
		v.Status = status
		v.UpdatedAt = now
		d.vehicles[id] = v
	}
	for id := range t.deletedVehicles {
		delete(d.vehicles, id)
	}
	return nil
}
