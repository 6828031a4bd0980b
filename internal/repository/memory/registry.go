package memory

import (
	"context"
	"sort"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

type vehicleRepository struct {
	db *db
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.vehicles[v.ID] = *v
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	v, ok := r.db.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("vehicle", id)
	}
	return &v, nil
}

func (r *vehicleRepository) UpdateDetails(ctx context.Context, v *domain.Vehicle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	current, ok := r.db.vehicles[v.ID]
	if !ok {
		return domain.NewNotFoundError("vehicle", v.ID)
	}
	updated := *v
	updated.Status = current.Status
	updated.CreatedAt = current.CreatedAt
	r.db.vehicles[v.ID] = updated
	return nil
}

func (r *vehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.Vehicle, 0, len(r.db.vehicles))
	for _, v := range r.db.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type renterRepository struct {
	db *db
}

func (r *renterRepository) Create(ctx context.Context, rt *domain.Renter) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.renters[rt.ID] = *rt
	return nil
}

func (r *renterRepository) GetByID(ctx context.Context, id string) (*domain.Renter, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	rt, ok := r.db.renters[id]
	if !ok {
		return nil, domain.NewNotFoundError("renter", id)
	}
	return &rt, nil
}

func (r *renterRepository) Update(ctx context.Context, rt *domain.Renter) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	current, ok := r.db.renters[rt.ID]
	if !ok {
		return domain.NewNotFoundError("renter", rt.ID)
	}
	updated := *rt
	updated.CreatedAt = current.CreatedAt
	r.db.renters[rt.ID] = updated
	return nil
}

func (r *renterRepository) List(ctx context.Context) ([]domain.Renter, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.Renter, 0, len(r.db.renters))
	for _, rt := range r.db.renters {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName == out[j].LastName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}

type documentRepository struct {
	db *db
}

func (r *documentRepository) Create(ctx context.Context, d *domain.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.documents[d.ID] = *d
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	d, ok := r.db.documents[id]
	if !ok {
		return nil, domain.NewNotFoundError("document", id)
	}
	return &d, nil
}

func (r *documentRepository) Update(ctx context.Context, d *domain.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.documents[d.ID]; !ok {
		return domain.NewNotFoundError("document", d.ID)
	}
	r.db.documents[d.ID] = *d
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.documents[id]; !ok {
		return domain.NewNotFoundError("document", id)
	}
	delete(r.db.documents, id)
	return nil
}

func (r *documentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Document{}
	for _, d := range r.db.documents {
		if filter.ReservationID != "" && d.ReservationID != filter.ReservationID {
			continue
		}
		if filter.VehicleID != "" && d.VehicleID != filter.VehicleID {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *documentRepository) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.Document, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []domain.Document{}
	for _, d := range r.db.documents {
		if d.Status == domain.DocumentStatusPending && d.ExpiresAt != nil && d.ExpiresAt.Before(now) {
			out = append(out, d)
		}
	}
	return out, nil
}
