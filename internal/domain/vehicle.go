package domain

import (
	"fmt"
	"math"
	"time"
)

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusReserved    VehicleStatus = "RESERVED"
	VehicleStatusRented      VehicleStatus = "RENTED"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusInactive    VehicleStatus = "INACTIVE"
)

// Valid reports whether s is one of the known vehicle statuses.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusReserved, VehicleStatusRented,
		VehicleStatusMaintenance, VehicleStatusInactive:
		return true
	}
	return false
}

// Administrative reports whether s may be set directly by an operator.
// RESERVED and RENTED are only reached through reservations.
func (s VehicleStatus) Administrative() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusMaintenance, VehicleStatusInactive:
		return true
	}
	return false
}

// Vehicle is the reservable resource. Status is a projection of the
// reservation lifecycle; outside of it only an administrative status change
// made while no reservation blocks the vehicle may write it.
type Vehicle struct {
	ID          string        `json:"id"`
	Make        string        `json:"make"`
	Model       string        `json:"model"`
	Year        int           `json:"year"`
	Plate       string        `json:"plate"`
	VIN         *string       `json:"vin,omitempty"`
	Odometer    *int64        `json:"odometer,omitempty"`
	Images      []string      `json:"images"`
	Notes       *string       `json:"notes,omitempty"`
	BufferHours *float64      `json:"buffer_hours,omitempty"` // overrides the configured buffer for this vehicle
	Status      VehicleStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

const MinVehicleYear = 1990

// MaxBufferHours caps turnaround padding at thirty days.
const MaxBufferHours = 720.0

// ValidateBufferHours rejects padding that is negative, non-finite or above
// MaxBufferHours. field names the offending input in the returned error.
func ValidateBufferHours(field string, hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return NewValidationError(field, "must be a finite number")
	}
	if hours < 0 {
		return NewValidationError(field, "must not be negative")
	}
	if hours > MaxBufferHours {
		return NewValidationError(field, fmt.Sprintf("must not exceed %g", MaxBufferHours))
	}
	return nil
}

// Validate checks the registration fields of a vehicle.
func (v *Vehicle) Validate() error {
	if v.Make == "" {
		return NewValidationError("make", "is required")
	}
	if v.Model == "" {
		return NewValidationError("model", "is required")
	}
	if v.Year < MinVehicleYear {
		return NewValidationError("year", "must be 1990 or later")
	}
	if v.Plate == "" {
		return NewValidationError("plate", "is required")
	}
	if v.Odometer != nil && *v.Odometer < 0 {
		return NewValidationError("odometer", "must not be negative")
	}
	if v.BufferHours != nil {
		if err := ValidateBufferHours("buffer_hours", *v.BufferHours); err != nil {
			return err
		}
	}
	if v.Status != "" && !v.Status.Valid() {
		return NewValidationError("status", "unknown vehicle status")
	}
	return nil
}

// VehicleUpdate carries the descriptive fields that may change after
// registration. Status changes go through the vehicle service's status
// operation instead.
type VehicleUpdate struct {
	Make        *string
	Model       *string
	Year        *int
	Plate       *string
	VIN         *string
	Odometer    *int64
	Images      *[]string
	Notes       *string
	BufferHours *float64
}

// Apply copies the set fields of u onto v.
func (u VehicleUpdate) Apply(v *Vehicle) {
	if u.Make != nil {
		v.Make = *u.Make
	}
	if u.Model != nil {
		v.Model = *u.Model
	}
	if u.Year != nil {
		v.Year = *u.Year
	}
	if u.Plate != nil {
		v.Plate = *u.Plate
	}
	if u.VIN != nil {
		v.VIN = u.VIN
	}
	if u.Odometer != nil {
		v.Odometer = u.Odometer
	}
	if u.Images != nil {
		v.Images = *u.Images
	}
	if u.Notes != nil {
		v.Notes = u.Notes
	}
	if u.BufferHours != nil {
		v.BufferHours = u.BufferHours
	}
}
