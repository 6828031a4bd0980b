package domain

import "time"

type DocumentKind string

const (
	DocumentKindIDFront       DocumentKind = "id_front"
	DocumentKindIDBack        DocumentKind = "id_back"
	DocumentKindContractPDF   DocumentKind = "contract_pdf"
	DocumentKindCheckinPhoto  DocumentKind = "checkin_photo"
	DocumentKindCheckoutPhoto DocumentKind = "checkout_photo"
)

func (k DocumentKind) Valid() bool {
	switch k {
	case DocumentKindIDFront, DocumentKindIDBack, DocumentKindContractPDF,
		DocumentKindCheckinPhoto, DocumentKindCheckoutPhoto:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusConfirmed DocumentStatus = "CONFIRMED"
)

// Document is a file attached to a reservation. Pending documents expire
// when their upload is never confirmed.
type Document struct {
	ID            string         `json:"id"`
	ReservationID string         `json:"reservation_id"`
	VehicleID     string         `json:"vehicle_id"`
	RenterID      string         `json:"renter_id"`
	Kind          DocumentKind   `json:"kind"`
	FileName      string         `json:"file_name"`
	Mime          string         `json:"mime"`
	StorageKey    string         `json:"storage_key"`
	FileSize      int64          `json:"file_size"`
	Status        DocumentStatus `json:"status"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	ConfirmedAt   *time.Time     `json:"confirmed_at,omitempty"`
}

// DocumentFilter narrows a document listing. Empty fields match everything.
type DocumentFilter struct {
	ReservationID string
	VehicleID     string
}
