package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

const vehicleColumns = `id, make, model, year, plate, vin, odometer, images, notes, buffer_hours, status, created_at, updated_at`

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Plate, &v.VIN, &v.Odometer, pq.Array(&v.Images), &v.Notes, &v.BufferHours, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	return v, nil
}

func getVehicle(ctx context.Context, q querier, id string) (*domain.Vehicle, error) {
	v, err := scanVehicle(q.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("vehicle", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle %s: %w", id, err)
	}
	return v, nil
}

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (` + vehicleColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query, v.ID, v.Make, v.Model, v.Year, v.Plate, v.VIN, v.Odometer, pq.Array(v.Images), v.Notes, v.BufferHours, v.Status, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	return getVehicle(ctx, r.db, id)
}

func (r *vehicleRepository) UpdateDetails(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles SET make=$1, model=$2, year=$3, plate=$4, vin=$5, odometer=$6, images=$7, notes=$8, buffer_hours=$9, updated_at=$10 WHERE id=$11`
	res, err := r.db.ExecContext(ctx, query, v.Make, v.Model, v.Year, v.Plate, v.VIN, v.Odometer, pq.Array(v.Images), v.Notes, v.BufferHours, time.Now().UTC(), v.ID)
	if err != nil {
		return fmt.Errorf("failed to update vehicle %s: %w", v.ID, err)
	}
	return expectOneRow(res, "vehicle", v.ID)
}

func (r *vehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	out := []domain.Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
