package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

const renterColumns = `id, first_name, last_name, email, phone, date_of_birth, id_number, address, created_at`

type renterRepository struct {
	db *sql.DB
}

func NewRenterRepository(db *sql.DB) repository.RenterRepository {
	return &renterRepository{db: db}
}

func scanRenter(row rowScanner) (*domain.Renter, error) {
	rt := &domain.Renter{}
	err := row.Scan(&rt.ID, &rt.FirstName, &rt.LastName, &rt.Email, &rt.Phone, &rt.DateOfBirth, &rt.IDNumber, &rt.Address, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *renterRepository) Create(ctx context.Context, rt *domain.Renter) error {
	query := `INSERT INTO renters (` + renterColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, rt.ID, rt.FirstName, rt.LastName, rt.Email, rt.Phone, rt.DateOfBirth, rt.IDNumber, rt.Address, rt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert renter: %w", err)
	}
	return nil
}

func (r *renterRepository) GetByID(ctx context.Context, id string) (*domain.Renter, error) {
	rt, err := scanRenter(r.db.QueryRowContext(ctx, `SELECT `+renterColumns+` FROM renters WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("renter", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get renter %s: %w", id, err)
	}
	return rt, nil
}

func (r *renterRepository) Update(ctx context.Context, rt *domain.Renter) error {
	query := `UPDATE renters SET first_name=$1, last_name=$2, email=$3, phone=$4, date_of_birth=$5, id_number=$6, address=$7 WHERE id=$8`
	res, err := r.db.ExecContext(ctx, query, rt.FirstName, rt.LastName, rt.Email, rt.Phone, rt.DateOfBirth, rt.IDNumber, rt.Address, rt.ID)
	if err != nil {
		return fmt.Errorf("failed to update renter %s: %w", rt.ID, err)
	}
	return expectOneRow(res, "renter", rt.ID)
}

func (r *renterRepository) List(ctx context.Context) ([]domain.Renter, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+renterColumns+` FROM renters ORDER BY last_name, first_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list renters: %w", err)
	}
	defer rows.Close()

	out := []domain.Renter{}
	for rows.Next() {
		rt, err := scanRenter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan renter: %w", err)
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}
