package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

const documentColumns = `id, reservation_id, vehicle_id, renter_id, kind, file_name, mime, storage_key, file_size, status, expires_at, created_at, confirmed_at`

type documentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	d := &domain.Document{}
	err := row.Scan(&d.ID, &d.ReservationID, &d.VehicleID, &d.RenterID, &d.Kind, &d.FileName, &d.Mime, &d.StorageKey, &d.FileSize, &d.Status, &d.ExpiresAt, &d.CreatedAt, &d.ConfirmedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *documentRepository) Create(ctx context.Context, d *domain.Document) error {
	query := `INSERT INTO documents (` + documentColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.ReservationID, d.VehicleID, d.RenterID, d.Kind, d.FileName, d.Mime, d.StorageKey, d.FileSize, d.Status, d.ExpiresAt, d.CreatedAt, d.ConfirmedAt)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("document", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return d, nil
}

func (r *documentRepository) Update(ctx context.Context, d *domain.Document) error {
	query := `UPDATE documents SET file_size=$1, status=$2, expires_at=$3, confirmed_at=$4 WHERE id=$5`
	res, err := r.db.ExecContext(ctx, query, d.FileSize, d.Status, d.ExpiresAt, d.ConfirmedAt, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", d.ID, err)
	}
	return expectOneRow(res, "document", d.ID)
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	return expectOneRow(res, "document", id)
}

func (r *documentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE 1=1`
	var args []any
	if filter.ReservationID != "" {
		args = append(args, filter.ReservationID)
		query += fmt.Sprintf(" AND reservation_id = $%d", len(args))
	}
	if filter.VehicleID != "" {
		args = append(args, filter.VehicleID)
		query += fmt.Sprintf(" AND vehicle_id = $%d", len(args))
	}
	query += " ORDER BY created_at"
	return r.query(ctx, query, args...)
}

func (r *documentRepository) ListExpiredPending(ctx context.Context, now time.Time) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE status = $1 AND expires_at < $2`
	return r.query(ctx, query, domain.DocumentStatusPending, now)
}

func (r *documentRepository) query(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	out := []domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
