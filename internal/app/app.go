// Package app assembles the store, lock, event publisher, blob store and
// services selected by configuration. Both binaries start from here.
package app

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/yassirbousseta123/car-rent-v1/internal/config"
	"github.com/yassirbousseta123/car-rent-v1/internal/events"
	"github.com/yassirbousseta123/car-rent-v1/internal/lock"
	"github.com/yassirbousseta123/car-rent-v1/internal/logger"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository/memory"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository/postgres"
	"github.com/yassirbousseta123/car-rent-v1/internal/service"
	"github.com/yassirbousseta123/car-rent-v1/internal/storage"
)

type App struct {
	Config *config.Config

	Vehicles     service.VehicleService
	Renters      service.RenterService
	Reservations service.ReservationService
	Documents    service.DocumentService

	Blobs     storage.BlobStore
	Publisher events.Publisher

	closers []func() error
}

type stores struct {
	gateway   repository.Gateway
	vehicles  repository.VehicleRepository
	renters   repository.RenterRepository
	documents repository.DocumentRepository
}

// New builds every dependency named by cfg. On error, anything already
// opened is closed before returning.
func New(cfg *config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	st, err := a.openStore(cfg.Database)
	if err != nil {
		return nil, err
	}

	locker, err := a.openLocker(cfg)
	if err != nil {
		return nil, err
	}

	a.Publisher, err = a.openPublisher(cfg.Events)
	if err != nil {
		return nil, err
	}

	a.Blobs, err = storage.New(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	logger.Info("Blob storage ready", "type", cfg.Storage.Type, "upload_dir", cfg.Storage.UploadDir)

	policy, err := service.ParseStatusPolicy(cfg.Availability.StatusPolicy)
	if err != nil {
		return nil, err
	}

	a.Vehicles = service.NewVehicleService(st.vehicles, st.gateway, locker)
	a.Renters = service.NewRenterService(st.renters)
	a.Reservations = service.NewReservationService(st.gateway, st.renters, locker, a.Publisher, *cfg.Availability.BufferHours, policy)
	a.Documents = service.NewDocumentService(st.documents, st.gateway, a.Blobs, cfg.Storage)

	logger.Info("Services initialized", "buffer_hours", *cfg.Availability.BufferHours, "status_policy", policy.Name())
	return a, nil
}

func (a *App) openStore(cfg config.DatabaseConfig) (*stores, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		s := memory.NewStore()
		return &stores{gateway: s.Gateway, vehicles: s.VehicleRepository, renters: s.RenterRepository, documents: s.DocumentRepository}, nil

	case "postgres":
		logger.Info("Connecting to database...", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database, "user", cfg.User)
		db, err := sql.Open("postgres", a.Config.GetDatabaseConnectionString())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")

		s := postgres.NewStore(db)
		a.closers = append(a.closers, s.Close)
		return &stores{gateway: s.Gateway, vehicles: s.VehicleRepository, renters: s.RenterRepository, documents: s.DocumentRepository}, nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}

func (a *App) openLocker(cfg *config.Config) (lock.Locker, error) {
	if cfg.Lock.Type != "redis" {
		return lock.NewKeyedMutex(), nil
	}
	client, err := lock.NewRedisClient(cfg.Lock.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, client.Close)
	logger.Info("Using redis vehicle locks", "addr", cfg.Lock.Redis.Addr, "ttl", cfg.LockTTL())
	return lock.NewRedisLocker(client, cfg.LockTTL()), nil
}

func (a *App) openPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Type {
	case "none":
		return events.NoopPublisher{}, nil
	case "rabbitmq":
		p, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		logger.Info("Publishing events to rabbitmq", "exchange", cfg.Exchange)
		return p, nil
	}
	return events.NewLogPublisher(), nil
}

// LocalTransfer returns the blob store as a LocalTransfer when it serves
// its own upload and download URLs.
func (a *App) LocalTransfer() (storage.LocalTransfer, bool) {
	lt, ok := a.Blobs.(storage.LocalTransfer)
	return lt, ok
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
