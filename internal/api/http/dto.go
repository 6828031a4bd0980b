package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yassirbousseta123/car-rent-v1/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and runs its struct tag validation.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("", "malformed request body: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.NewValidationError(fe.Field(), describe(fe))
		}
		return domain.NewValidationError("", err.Error())
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid address"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must have at most " + fe.Param() + " characters"
	case "gtfield":
		return "must be after " + strings.ToLower(fe.Param())
	case "datetime":
		return "must be formatted " + fe.Param()
	}
	return "failed " + fe.Tag() + " validation"
}

type createVehicleRequest struct {
	Make        string   `json:"make" validate:"required,max=64"`
	Model       string   `json:"model" validate:"required,max=64"`
	Year        int      `json:"year" validate:"required,gte=1990"`
	Plate       string   `json:"plate" validate:"required,max=32"`
	VIN         *string  `json:"vin" validate:"omitempty,max=32"`
	Odometer    *int64   `json:"odometer" validate:"omitempty,gte=0"`
	Images      []string `json:"images" validate:"omitempty,dive,required"`
	Notes       *string  `json:"notes"`
	BufferHours *float64 `json:"buffer_hours" validate:"omitempty,gte=0,lte=720"`
	Status      string   `json:"status" validate:"omitempty,oneof=AVAILABLE MAINTENANCE INACTIVE"`
}

func (req createVehicleRequest) toDomain() *domain.Vehicle {
	return &domain.Vehicle{
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Plate:       req.Plate,
		VIN:         req.VIN,
		Odometer:    req.Odometer,
		Images:      req.Images,
		Notes:       req.Notes,
		BufferHours: req.BufferHours,
		Status:      domain.VehicleStatus(req.Status),
	}
}

type updateVehicleRequest struct {
	Make        *string   `json:"make" validate:"omitempty,max=64"`
	Model       *string   `json:"model" validate:"omitempty,max=64"`
	Year        *int      `json:"year" validate:"omitempty,gte=1990"`
	Plate       *string   `json:"plate" validate:"omitempty,max=32"`
	VIN         *string   `json:"vin" validate:"omitempty,max=32"`
	Odometer    *int64    `json:"odometer" validate:"omitempty,gte=0"`
	Images      *[]string `json:"images"`
	Notes       *string   `json:"notes"`
	BufferHours *float64  `json:"buffer_hours" validate:"omitempty,gte=0,lte=720"`
}

func (req updateVehicleRequest) toDomain() domain.VehicleUpdate {
	return domain.VehicleUpdate{
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Plate:       req.Plate,
		VIN:         req.VIN,
		Odometer:    req.Odometer,
		Images:      req.Images,
		Notes:       req.Notes,
		BufferHours: req.BufferHours,
	}
}

type vehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=AVAILABLE MAINTENANCE INACTIVE"`
}

type createRenterRequest struct {
	FirstName   string  `json:"first_name" validate:"required,max=128"`
	LastName    string  `json:"last_name" validate:"required,max=128"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,min=6"`
	DateOfBirth string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	IDNumber    string  `json:"id_number" validate:"required,max=64"`
	Address     *string `json:"address"`
}

func (req createRenterRequest) toDomain() *domain.Renter {
	return &domain.Renter{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		IDNumber:    req.IDNumber,
		Address:     req.Address,
	}
}

type updateRenterRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,max=128"`
	LastName    *string `json:"last_name" validate:"omitempty,max=128"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,min=6"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	IDNumber    *string `json:"id_number" validate:"omitempty,max=64"`
	Address     *string `json:"address"`
}

func (req updateRenterRequest) toDomain() domain.RenterUpdate {
	return domain.RenterUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		IDNumber:    req.IDNumber,
		Address:     req.Address,
	}
}

type feeDTO struct {
	Name        string `json:"name" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
}

func feesToDomain(in []feeDTO) []domain.Fee {
	out := make([]domain.Fee, 0, len(in))
	for _, f := range in {
		out = append(out, domain.Fee{Name: f.Name, AmountCents: f.AmountCents})
	}
	return out
}

type createReservationRequest struct {
	VehicleID       string    `json:"vehicle_id" validate:"required"`
	RenterID        string    `json:"renter_id" validate:"required"`
	StartAt         time.Time `json:"start_at" validate:"required"`
	EndAt           time.Time `json:"end_at" validate:"required,gtfield=StartAt"`
	DailyRateCents  int64     `json:"daily_rate_cents" validate:"gte=0"`
	DepositCents    *int64    `json:"deposit_cents" validate:"omitempty,gte=0"`
	Fees            []feeDTO  `json:"fees" validate:"omitempty,dive"`
	PickupLocation  *string   `json:"pickup_location"`
	DropoffLocation *string   `json:"dropoff_location"`
	Notes           *string   `json:"notes"`
}

func (req createReservationRequest) toDomain() *domain.Reservation {
	return &domain.Reservation{
		VehicleID:       req.VehicleID,
		RenterID:        req.RenterID,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		DailyRateCents:  req.DailyRateCents,
		DepositCents:    req.DepositCents,
		Fees:            feesToDomain(req.Fees),
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Notes:           req.Notes,
	}
}

type updateReservationRequest struct {
	VehicleID       *string    `json:"vehicle_id"`
	RenterID        *string    `json:"renter_id"`
	StartAt         *time.Time `json:"start_at"`
	EndAt           *time.Time `json:"end_at"`
	Status          *string    `json:"status" validate:"omitempty,oneof=RESERVED CHECKED_OUT RETURNED CANCELED"`
	DailyRateCents  *int64     `json:"daily_rate_cents" validate:"omitempty,gte=0"`
	DepositCents    *int64     `json:"deposit_cents" validate:"omitempty,gte=0"`
	Fees            *[]feeDTO  `json:"fees" validate:"omitempty,dive"`
	PickupLocation  *string    `json:"pickup_location"`
	DropoffLocation *string    `json:"dropoff_location"`
	Notes           *string    `json:"notes"`
}

func (req updateReservationRequest) toDomain() domain.ReservationPatch {
	patch := domain.ReservationPatch{
		VehicleID:       req.VehicleID,
		RenterID:        req.RenterID,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		DailyRateCents:  req.DailyRateCents,
		DepositCents:    req.DepositCents,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Notes:           req.Notes,
	}
	if req.Status != nil {
		s := domain.ReservationStatus(*req.Status)
		patch.Status = &s
	}
	if req.Fees != nil {
		fees := feesToDomain(*req.Fees)
		patch.Fees = &fees
	}
	return patch
}

type requestDocumentRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=id_front id_back contract_pdf checkin_photo checkout_photo"`
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required"`
}

type documentUploadResponse struct {
	Document  *domain.Document `json:"document"`
	UploadURL string           `json:"upload_url"`
}

type documentConfirmResponse struct {
	Document    *domain.Document `json:"document"`
	DownloadURL string           `json:"download_url"`
}

type nextAvailableResponse struct {
	VehicleID     string    `json:"vehicle_id"`
	NextAvailable time.Time `json:"next_available"`
}
