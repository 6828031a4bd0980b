// Package memory is the in-process reference store. All data lives in maps
// behind one RWMutex; reservation writes go through a per-vehicle lock and
// are staged until the surrounding Atomically call commits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/lock"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

type db struct {
	mu           sync.RWMutex
	vehicles     map[string]domain.Vehicle
	renters      map[string]domain.Renter
	reservations map[string]domain.Reservation
	documents    map[string]domain.Document
}

type Store struct {
	repository.Gateway
	repository.VehicleRepository
	repository.RenterRepository
	repository.DocumentRepository
}

func NewStore() *Store {
	d := &db{
		vehicles:     make(map[string]domain.Vehicle),
		renters:      make(map[string]domain.Renter),
		reservations: make(map[string]domain.Reservation),
		documents:    make(map[string]domain.Document),
	}
	return &Store{
		Gateway:            &gateway{db: d, locks: lock.NewKeyedMutex()},
		VehicleRepository:  &vehicleRepository{db: d},
		RenterRepository:   &renterRepository{db: d},
		DocumentRepository: &documentRepository{db: d},
	}
}

func copyReservation(r domain.Reservation) domain.Reservation {
	if r.Fees != nil {
		r.Fees = append([]domain.Fee(nil), r.Fees...)
	}
	return r
}

func sortReservations(list []domain.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartAt.Equal(list[j].StartAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].StartAt.Before(list[j].StartAt)
	})
}

type gateway struct {
	db    *db
	locks *lock.KeyedMutex
}

func (g *gateway) ListReservations(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	g.db.mu.RLock()
	defer g.db.mu.RUnlock()
	out := []domain.Reservation{}
	for _, r := range g.db.reservations {
		if vehicleID == "" || r.VehicleID == vehicleID {
			out = append(out, copyReservation(r))
		}
	}
	sortReservations(out)
	return out, nil
}

func (g *gateway) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	g.db.mu.RLock()
	defer g.db.mu.RUnlock()
	r, ok := g.db.reservations[id]
	if !ok {
		return nil, domain.NewNotFoundError("reservation", id)
	}
	c := copyReservation(r)
	return &c, nil
}

func (g *gateway) InsertReservation(ctx context.Context, r *domain.Reservation) error {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()
	g.db.reservations[r.ID] = copyReservation(*r)
	return nil
}

func (g *gateway) ReplaceReservation(ctx context.Context, id string, r *domain.Reservation) error {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()
	if _, ok := g.db.reservations[id]; !ok {
		return domain.NewNotFoundError("reservation", id)
	}
	c := copyReservation(*r)
	c.ID = id
	g.db.reservations[id] = c
	return nil
}

func (g *gateway) DeleteReservation(ctx context.Context, id string) error {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()
	if _, ok := g.db.reservations[id]; !ok {
		return domain.NewNotFoundError("reservation", id)
	}
	delete(g.db.reservations, id)
	return nil
}

func (g *gateway) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	g.db.mu.RLock()
	defer g.db.mu.RUnlock()
	v, ok := g.db.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("vehicle", id)
	}
	return &v, nil
}

func (g *gateway) SetVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()
	v, ok := g.db.vehicles[id]
	if !ok {
		return domain.NewNotFoundError("vehicle", id)
	}
	v.Status = status
	v.UpdatedAt = time.Now().UTC()
	g.db.vehicles[id] = v
	return nil
}

func (g *gateway) DeleteVehicle(ctx context.Context, id string) error {
	g.db.mu.Lock()
	defer g.db.mu.Unlock()
	if _, ok := g.db.vehicles[id]; !ok {
		return domain.NewNotFoundError("vehicle", id)
	}
	delete(g.db.vehicles, id)
	return nil
}

func (g *gateway) Atomically(ctx context.Context, vehicleID string, fn func(ctx context.Context, tx repository.ReservationStore) error) error {
	unlock, err := g.locks.Lock(ctx, vehicleID)
	if err != nil {
		return err
	}
	defer unlock()

	tx := newTx(g)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}
