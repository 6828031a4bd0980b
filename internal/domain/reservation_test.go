package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ReservationStatus
		allowed  bool
	}{
		{ReservationStatusReserved, ReservationStatusCheckedOut, true},
		{ReservationStatusReserved, ReservationStatusCanceled, true},
		{ReservationStatusReserved, ReservationStatusReturned, false},
		{ReservationStatusCheckedOut, ReservationStatusReturned, true},
		{ReservationStatusCheckedOut, ReservationStatusCanceled, true},
		{ReservationStatusCheckedOut, ReservationStatusReserved, false},
		{ReservationStatusReturned, ReservationStatusCheckedOut, false},
		{ReservationStatusCanceled, ReservationStatusReserved, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}

	assert.True(t, ReservationStatusReserved.BlocksVehicle())
	assert.True(t, ReservationStatusCheckedOut.BlocksVehicle())
	assert.False(t, ReservationStatusReturned.BlocksVehicle())
	assert.False(t, ReservationStatusCanceled.BlocksVehicle())

	assert.Equal(t, VehicleStatusReserved, ReservationStatusReserved.VehicleStatusFor())
	assert.Equal(t, VehicleStatusRented, ReservationStatusCheckedOut.VehicleStatusFor())
	assert.Equal(t, VehicleStatusAvailable, ReservationStatusReturned.VehicleStatusFor())
	assert.Equal(t, VehicleStatusAvailable, ReservationStatusCanceled.VehicleStatusFor())
}

func TestReservationValidate(t *testing.T) {
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	valid := func() Reservation {
		return Reservation{VehicleID: "v1", RenterID: "r1", StartAt: start, EndAt: start.Add(24 * time.Hour)}
	}
	negative := int64(-5)

	cases := []struct {
		name   string
		mutate func(r *Reservation)
		field  string
	}{
		{"Missing vehicle", func(r *Reservation) { r.VehicleID = "" }, "vehicle_id"},
		{"Missing renter", func(r *Reservation) { r.RenterID = "" }, "renter_id"},
		{"Zero start", func(r *Reservation) { r.StartAt = time.Time{} }, "start_at"},
		{"Empty range", func(r *Reservation) { r.EndAt = r.StartAt }, "end_at"},
		{"Negative rate", func(r *Reservation) { r.DailyRateCents = -1 }, "daily_rate_cents"},
		{"Negative deposit", func(r *Reservation) { r.DepositCents = &negative }, "deposit_cents"},
		{"Unnamed fee", func(r *Reservation) { r.Fees = []Fee{{AmountCents: 100}} }, "fees"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid()
			tc.mutate(&r)
			var ve *ValidationError
			require.True(t, errors.As(r.Validate(), &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	r := valid()
	assert.NoError(t, r.Validate())
}

func TestReservationPatchApplyTo(t *testing.T) {
	start := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	current := Reservation{
		ID: "res-1", VehicleID: "v1", RenterID: "r1",
		StartAt: start, EndAt: start.Add(48 * time.Hour),
		Status: ReservationStatusReserved, DailyRateCents: 4000,
		Fees: []Fee{{Name: "child seat", AmountCents: 500}},
	}

	t.Run("Moves range in UTC", func(t *testing.T) {
		casablanca := time.FixedZone("WEST", 3600)
		newEnd := time.Date(2025, 1, 13, 11, 0, 0, 0, casablanca)
		next, err := ReservationPatch{EndAt: &newEnd}.ApplyTo(current)
		require.NoError(t, err)
		assert.Equal(t, time.UTC, next.EndAt.Location())
		assert.True(t, next.EndAt.Equal(newEnd))
		assert.Equal(t, current.StartAt, next.StartAt)
	})

	t.Run("Inverted range", func(t *testing.T) {
		newEnd := start.Add(-time.Hour)
		_, err := ReservationPatch{EndAt: &newEnd}.ApplyTo(current)
		assert.True(t, IsValidation(err))
	})

	t.Run("Reassignment rejected", func(t *testing.T) {
		other := "v2"
		_, err := ReservationPatch{VehicleID: &other}.ApplyTo(current)
		assert.True(t, IsValidation(err))

		same := "v1"
		_, err = ReservationPatch{VehicleID: &same}.ApplyTo(current)
		assert.NoError(t, err)
	})

	t.Run("Terminal dates are frozen", func(t *testing.T) {
		done := current
		done.Status = ReservationStatusReturned
		newStart := start.Add(time.Hour)
		_, err := ReservationPatch{StartAt: &newStart}.ApplyTo(done)
		assert.True(t, IsValidation(err))

		notes := "keys in drop box"
		next, err := ReservationPatch{Notes: &notes}.ApplyTo(done)
		require.NoError(t, err)
		assert.Equal(t, notes, *next.Notes)
	})

	t.Run("Illegal transition", func(t *testing.T) {
		returned := ReservationStatusReturned
		_, err := ReservationPatch{Status: &returned}.ApplyTo(current)
		assert.True(t, IsValidation(err))
	})

	t.Run("Fees are copied", func(t *testing.T) {
		fees := []Fee{{Name: "gps", AmountCents: 300}}
		next, err := ReservationPatch{Fees: &fees}.ApplyTo(current)
		require.NoError(t, err)
		fees[0].AmountCents = 9999
		assert.Equal(t, int64(300), next.Fees[0].AmountCents)
		assert.Equal(t, int64(500), current.Fees[0].AmountCents)
	})

	t.Run("Unknown status", func(t *testing.T) {
		lost := ReservationStatus("LOST")
		assert.True(t, IsValidation(ReservationPatch{Status: &lost}.Validate()))
	})
}

func TestErrors(t *testing.T) {
	nf := NewNotFoundError("vehicle", "v9")
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.Equal(t, "vehicle v9 not found", nf.Error())

	ce := &ConflictError{VehicleID: "v1", Conflicts: []Reservation{{ID: "a"}, {ID: "b"}}}
	got, ok := AsConflict(errors.Join(errors.New("wrapped"), ce))
	require.True(t, ok)
	assert.Len(t, got.Conflicts, 2)
	assert.Contains(t, ce.Error(), "a, b")

	_, ok = AsConflict(nf)
	assert.False(t, ok)
}
