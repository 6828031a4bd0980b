package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yassirbousseta123/car-rent-v1/internal/config"
	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
	"github.com/yassirbousseta123/car-rent-v1/internal/events"
	"github.com/yassirbousseta123/car-rent-v1/internal/lock"
	"github.com/yassirbousseta123/car-rent-v1/internal/repository/memory"
	"github.com/yassirbousseta123/car-rent-v1/internal/service"
)

type MockDocumentService struct {
	service.DocumentService
	mock.Mock
}

func (m *MockDocumentService) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func seedCheckedOut(t *testing.T, svc service.ReservationService, store *memory.Store, start, end time.Time) *domain.Reservation {
	t.Helper()
	ctx := context.Background()
	v, err := service.NewVehicleService(store.VehicleRepository, store, lock.NewKeyedMutex()).RegisterVehicle(ctx, &domain.Vehicle{
		Make: "Hyundai", Model: "i10", Year: 2020, Plate: "900-H-1",
	})
	require.NoError(t, err)
	rt, err := service.NewRenterService(store.RenterRepository).RegisterRenter(ctx, &domain.Renter{
		FirstName: "Omar", LastName: "Fassi", DateOfBirth: "1985-06-30", IDNumber: "C556677",
	})
	require.NoError(t, err)

	r, err := svc.CreateReservation(ctx, &domain.Reservation{
		VehicleID: v.ID, RenterID: rt.ID, StartAt: start, EndAt: end, DailyRateCents: 25000,
	})
	require.NoError(t, err)
	out := domain.ReservationStatusCheckedOut
	r, err = svc.UpdateReservation(ctx, r.ID, domain.ReservationPatch{Status: &out})
	require.NoError(t, err)
	return r
}

func TestReportOverdueReservations(t *testing.T) {
	store := memory.NewStore()
	reservations := service.NewReservationService(store, store.RenterRepository, lock.NewKeyedMutex(), nil, 2, nil)
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	r := seedCheckedOut(t, reservations, store, start, start.Add(48*time.Hour))

	t.Run("Not yet due", func(t *testing.T) {
		published := &recordingPublisher{}
		runner := NewJobRunner(&Services{Reservations: reservations}, published, &config.Config{})
		runner.now = func() time.Time { return start.Add(24 * time.Hour) }

		runner.ReportOverdueReservations()
		assert.Empty(t, published.events)
	})

	t.Run("Overdue publishes event", func(t *testing.T) {
		published := &recordingPublisher{}
		runner := NewJobRunner(&Services{Reservations: reservations}, published, &config.Config{})
		runner.now = func() time.Time { return start.Add(72 * time.Hour) }

		runner.ReportOverdueReservations()
		require.Len(t, published.events, 1)
		assert.Equal(t, events.ReservationOverdue, published.events[0].Type)
		assert.Equal(t, r.ID, published.events[0].ReservationID)

		got, err := reservations.GetReservation(context.Background(), r.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusCheckedOut, got.Status)
	})

	t.Run("Publish failure does not abort", func(t *testing.T) {
		published := &recordingPublisher{err: errors.New("broker down")}
		runner := NewJobRunner(&Services{Reservations: reservations}, published, &config.Config{})
		runner.now = func() time.Time { return start.Add(72 * time.Hour) }

		assert.NotPanics(t, runner.ReportOverdueReservations)
	})
}

func TestCleanupExpiredDocuments(t *testing.T) {
	now := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		docs := new(MockDocumentService)
		docs.On("CleanupExpired", mock.Anything, now).Return(3, nil)

		runner := NewJobRunner(&Services{Documents: docs}, nil, &config.Config{})
		runner.now = func() time.Time { return now }
		runner.CleanupExpiredDocuments()

		docs.AssertExpectations(t)
	})

	t.Run("Failure is logged", func(t *testing.T) {
		docs := new(MockDocumentService)
		docs.On("CleanupExpired", mock.Anything, now).Return(1, errors.New("blob store unreachable"))

		runner := NewJobRunner(&Services{Documents: docs}, nil, &config.Config{})
		runner.now = func() time.Time { return now }
		assert.NotPanics(t, runner.CleanupExpiredDocuments)
		docs.AssertExpectations(t)
	})
}

func TestRunWithRecovery(t *testing.T) {
	runner := NewJobRunner(&Services{}, nil, &config.Config{})

	assert.NotPanics(t, func() {
		runner.runWithRecovery("Exploding", func(ctx context.Context) {
			panic("boom")
		})
	})

	var deadline bool
	runner.runWithRecovery("Bounded", func(ctx context.Context) {
		_, deadline = ctx.Deadline()
	})
	assert.True(t, deadline)
}
