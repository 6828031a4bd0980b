package domain

import (
	"net/mail"
	"time"
)

type Renter struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	DateOfBirth string    `json:"date_of_birth"` // yyyy-mm-dd
	IDNumber    string    `json:"id_number"`     // national ID or driver licence
	Address     *string   `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Renter) Validate() error {
	if r.FirstName == "" {
		return NewValidationError("first_name", "is required")
	}
	if r.LastName == "" {
		return NewValidationError("last_name", "is required")
	}
	if r.Email != nil {
		if _, err := mail.ParseAddress(*r.Email); err != nil {
			return NewValidationError("email", "is not a valid address")
		}
	}
	if r.Phone != nil && len(*r.Phone) < 6 {
		return NewValidationError("phone", "must have at least 6 characters")
	}
	if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
		return NewValidationError("date_of_birth", "must be formatted yyyy-mm-dd")
	}
	if r.IDNumber == "" {
		return NewValidationError("id_number", "is required")
	}
	return nil
}

// RenterUpdate carries the renter fields a PATCH may change.
type RenterUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	Phone       *string
	DateOfBirth *string
	IDNumber    *string
	Address     *string
}

// Apply copies the set fields of u onto r.
func (u RenterUpdate) Apply(r *Renter) {
	if u.FirstName != nil {
		r.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		r.LastName = *u.LastName
	}
	if u.Email != nil {
		r.Email = u.Email
	}
	if u.Phone != nil {
		r.Phone = u.Phone
	}
	if u.DateOfBirth != nil {
		r.DateOfBirth = *u.DateOfBirth
	}
	if u.IDNumber != nil {
		r.IDNumber = *u.IDNumber
	}
	if u.Address != nil {
		r.Address = u.Address
	}
}
