package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

const reservationColumns = `id, vehicle_id, renter_id, start_at, end_at, status, daily_rate_cents, deposit_cents, fees, pickup_location, dropoff_location, notes, created_at, updated_at`

type reservationStore struct {
	q querier
}

type gateway struct {
	db *sql.DB
	reservationStore
}

func NewGateway(db *sql.DB) repository.Gateway {
	return &gateway{db: db, reservationStore: reservationStore{q: db}}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	r := &domain.Reservation{}
	var fees []byte
	err := row.Scan(&r.ID, &r.VehicleID, &r.RenterID, &r.StartAt, &r.EndAt, &r.Status, &r.DailyRateCents, &r.DepositCents, &fees, &r.PickupLocation, &r.DropoffLocation, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(fees) > 0 {
		if err := json.Unmarshal(fees, &r.Fees); err != nil {
			return nil, fmt.Errorf("failed to decode fees of reservation %s: %w", r.ID, err)
		}
	}
	if r.Fees == nil {
		r.Fees = []domain.Fee{}
	}
	r.StartAt = r.StartAt.UTC()
	r.EndAt = r.EndAt.UTC()
	return r, nil
}

func encodeFees(fees []domain.Fee) ([]byte, error) {
	if fees == nil {
		fees = []domain.Fee{}
	}
	return json.Marshal(fees)
}

func (s *reservationStore) ListReservations(ctx context.Context, vehicleID string) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var args []any
	if vehicleID != "" {
		query += ` WHERE vehicle_id = $1`
		args = append(args, vehicleID)
	}
	query += ` ORDER BY start_at, id`

	logger.DatabaseCall("SELECT", "reservations", "vehicle_id", vehicleID)
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	out := []domain.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	logger.DatabaseResult("SELECT", int64(len(out)), nil)
	return out, nil
}

func (s *reservationStore) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	r, err := scanReservation(s.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("reservation", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation %s: %w", id, err)
	}
	return r, nil
}

func (s *reservationStore) InsertReservation(ctx context.Context, r *domain.Reservation) error {
	fees, err := encodeFees(r.Fees)
	if err != nil {
		return err
	}
	query := `INSERT INTO reservations (` + reservationColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = s.q.ExecContext(ctx, query, r.ID, r.VehicleID, r.RenterID, r.StartAt, r.EndAt, r.Status, r.DailyRateCents, r.DepositCents, fees, r.PickupLocation, r.DropoffLocation, r.Notes, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert reservation %s: %w", r.ID, err)
	}
	return nil
}

func (s *reservationStore) ReplaceReservation(ctx context.Context, id string, r *domain.Reservation) error {
	fees, err := encodeFees(r.Fees)
	if err != nil {
		return err
	}
	query := `UPDATE reservations SET start_at=$1, end_at=$2, status=$3, daily_rate_cents=$4, deposit_cents=$5, fees=$6,
	          pickup_location=$7, dropoff_location=$8, notes=$9, updated_at=$10 WHERE id=$11`
	res, err := s.q.ExecContext(ctx, query, r.StartAt, r.EndAt, r.Status, r.DailyRateCents, r.DepositCents, fees, r.PickupLocation, r.DropoffLocation, r.Notes, r.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update reservation %s: %w", id, err)
	}
	return expectOneRow(res, "reservation", id)
}

func (s *reservationStore) DeleteReservation(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reservation %s: %w", id, err)
	}
	return expectOneRow(res, "reservation", id)
}

func (s *reservationStore) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	return getVehicle(ctx, s.q, id)
}

func (s *reservationStore) SetVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	res, err := s.q.ExecContext(ctx, `UPDATE vehicles SET status=$1, updated_at=$2 WHERE id=$3`, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set status of vehicle %s: %w", id, err)
	}
	return expectOneRow(res, "vehicle", id)
}

func (s *reservationStore) DeleteVehicle(ctx context.Context, id string) error {
	logger.DatabaseCall("DELETE", "vehicles", "vehicle_id", id)
	res, err := s.q.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err)
		return fmt.Errorf("failed to delete vehicle %s: %w", id, err)
	}
	return expectOneRow(res, "vehicle", id)
}

// Atomically runs fn inside one transaction holding the vehicle row lock,
// which serializes writers for the same vehicle across every instance.
func (g *gateway) Atomically(ctx context.Context, vehicleID string, fn func(ctx context.Context, tx repository.ReservationStore) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, vehicleID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFoundError("vehicle", vehicleID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock vehicle %s: %w", vehicleID, err)
	}

	if err := fn(ctx, &reservationStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func expectOneRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError(entity, id)
	}
	return nil
}
