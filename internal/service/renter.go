package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

type renterService struct {
	renterRepo repository.RenterRepository
}

func NewRenterService(renterRepo repository.RenterRepository) RenterService {
	return &renterService{renterRepo: renterRepo}
}

func (s *renterService) RegisterRenter(ctx context.Context, r *domain.Renter) (*domain.Renter, error) {
	created := *r
	if err := created.Validate(); err != nil {
		return nil, err
	}
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now().UTC()
	if err := s.renterRepo.Create(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *renterService) GetRenter(ctx context.Context, id string) (*domain.Renter, error) {
	return s.renterRepo.GetByID(ctx, id)
}

// UpdateRenter applies a partial update and revalidates the whole record.
func (s *renterService) UpdateRenter(ctx context.Context, id string, update domain.RenterUpdate) (*domain.Renter, error) {
	rt, err := s.renterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(rt)
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	if err := s.renterRepo.Update(ctx, rt); err != nil {
		return nil, err
	}
	return s.renterRepo.GetByID(ctx, id)
}

func (s *renterService) ListRenters(ctx context.Context) ([]domain.Renter, error) {
	return s.renterRepo.List(ctx)
}
