package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same queries run
// inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.Gateway
	repository.VehicleRepository
	repository.RenterRepository
	repository.DocumentRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		Gateway:            NewGateway(db),
		VehicleRepository:  NewVehicleRepository(db),
		RenterRepository:   NewRenterRepository(db),
		DocumentRepository: NewDocumentRepository(db),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
