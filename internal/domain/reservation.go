package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusReserved   ReservationStatus = "RESERVED"
	ReservationStatusCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationStatusReturned   ReservationStatus = "RETURNED"
	ReservationStatusCanceled   ReservationStatus = "CANCELED"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusReserved, ReservationStatusCheckedOut,
		ReservationStatusReturned, ReservationStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusReturned || s == ReservationStatusCanceled
}

// BlocksVehicle reports whether a reservation in status s takes part in
// conflict computation. Returned and canceled reservations are history.
func (s ReservationStatus) BlocksVehicle() bool {
	return s == ReservationStatusReserved || s == ReservationStatusCheckedOut
}

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusReserved:   {ReservationStatusCheckedOut, ReservationStatusCanceled},
	ReservationStatusCheckedOut: {ReservationStatusReturned, ReservationStatusCanceled},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// VehicleStatusFor is the vehicle projection written alongside a
// reservation entering status s.
func (s ReservationStatus) VehicleStatusFor() VehicleStatus {
	switch s {
	case ReservationStatusReserved:
		return VehicleStatusReserved
	case ReservationStatusCheckedOut:
		return VehicleStatusRented
	default:
		return VehicleStatusAvailable
	}
}

type Fee struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

type Reservation struct {
	ID              string            `json:"id"`
	VehicleID       string            `json:"vehicle_id"`
	RenterID        string            `json:"renter_id"`
	StartAt         time.Time         `json:"start_at"`
	EndAt           time.Time         `json:"end_at"`
	Status          ReservationStatus `json:"status"`
	DailyRateCents  int64             `json:"daily_rate_cents"`
	DepositCents    *int64            `json:"deposit_cents,omitempty"`
	Fees            []Fee             `json:"fees"`
	PickupLocation  *string           `json:"pickup_location,omitempty"`
	DropoffLocation *string           `json:"dropoff_location,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Validate checks a reservation candidate before it reaches the store.
func (r *Reservation) Validate() error {
	if r.VehicleID == "" {
		return NewValidationError("vehicle_id", "is required")
	}
	if r.RenterID == "" {
		return NewValidationError("renter_id", "is required")
	}
	if err := validateRange(r.StartAt, r.EndAt); err != nil {
		return err
	}
	return validateCharges(&r.DailyRateCents, r.DepositCents, r.Fees)
}

func validateRange(start, end time.Time) error {
	if start.IsZero() {
		return NewValidationError("start_at", "is required")
	}
	if end.IsZero() {
		return NewValidationError("end_at", "is required")
	}
	if !start.Before(end) {
		return NewValidationError("end_at", "must be after start_at")
	}
	return nil
}

func validateCharges(dailyRate, deposit *int64, fees []Fee) error {
	if dailyRate != nil && *dailyRate < 0 {
		return NewValidationError("daily_rate_cents", "must not be negative")
	}
	if deposit != nil && *deposit < 0 {
		return NewValidationError("deposit_cents", "must not be negative")
	}
	for _, f := range fees {
		if f.Name == "" {
			return NewValidationError("fees", "fee name is required")
		}
		if f.AmountCents < 0 {
			return NewValidationError("fees", "fee amount must not be negative")
		}
	}
	return nil
}

// ReservationPatch is a partial update. Nil fields are left unchanged.
// VehicleID and RenterID are accepted only so that attempts to reassign a
// reservation can be rejected explicitly.
type ReservationPatch struct {
	VehicleID       *string
	RenterID        *string
	StartAt         *time.Time
	EndAt           *time.Time
	Status          *ReservationStatus
	DailyRateCents  *int64
	DepositCents    *int64
	Fees            *[]Fee
	PickupLocation  *string
	DropoffLocation *string
	Notes           *string
}

// TouchesRange reports whether the patch edits the reserved interval.
func (p ReservationPatch) TouchesRange() bool {
	return p.StartAt != nil || p.EndAt != nil
}

// Validate checks the patch shape in isolation.
func (p ReservationPatch) Validate() error {
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "unknown reservation status")
	}
	var fees []Fee
	if p.Fees != nil {
		fees = *p.Fees
	}
	return validateCharges(p.DailyRateCents, p.DepositCents, fees)
}

// ApplyTo validates the patch against the current reservation and returns
// the patched copy. The status field is copied as well; callers decide
// whether it constitutes a transition.
func (p ReservationPatch) ApplyTo(current Reservation) (Reservation, error) {
	if p.VehicleID != nil && *p.VehicleID != current.VehicleID {
		return Reservation{}, NewValidationError("vehicle_id", "cannot be changed; cancel and create a new reservation")
	}
	if p.RenterID != nil && *p.RenterID != current.RenterID {
		return Reservation{}, NewValidationError("renter_id", "cannot be changed; cancel and create a new reservation")
	}

	next := current
	if p.TouchesRange() {
		if current.Status.Terminal() {
			return Reservation{}, NewValidationError("status", "dates of a "+string(current.Status)+" reservation cannot be changed")
		}
		if p.StartAt != nil {
			next.StartAt = p.StartAt.UTC()
		}
		if p.EndAt != nil {
			next.EndAt = p.EndAt.UTC()
		}
		if err := validateRange(next.StartAt, next.EndAt); err != nil {
			return Reservation{}, err
		}
	}
	if p.Status != nil && *p.Status != current.Status {
		if !current.Status.CanTransitionTo(*p.Status) {
			return Reservation{}, NewValidationError("status", "cannot move from "+string(current.Status)+" to "+string(*p.Status))
		}
		next.Status = *p.Status
	}
	if p.DailyRateCents != nil {
		next.DailyRateCents = *p.DailyRateCents
	}
	if p.DepositCents != nil {
		next.DepositCents = p.DepositCents
	}
	if p.Fees != nil {
		next.Fees = append([]Fee(nil), (*p.Fees)...)
	}
	if p.PickupLocation != nil {
		next.PickupLocation = p.PickupLocation
	}
	if p.DropoffLocation != nil {
		next.DropoffLocation = p.DropoffLocation
	}
	if p.Notes != nil {
		next.Notes = p.Notes
	}
	return next, nil
}

// TimeRange is a closed-open instant interval used for calendar display.
type TimeRange struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	ReservationID string    `json:"reservation_id"`
}

// AvailabilityResult answers an availability query for one vehicle.
type AvailabilityResult struct {
	Available bool          `json:"available"`
	Conflicts []Reservation `json:"conflicts"`
}
