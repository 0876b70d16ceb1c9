package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusInTransit BookingStatus = "in_transit"
	BookingStatusDelivered BookingStatus = "delivered"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CapacityConsuming reports whether a booking in this status counts
// against its listing's weight capacity. Pending bookings do not reserve
// capacity until the traveler accepts them.
func (s BookingStatus) CapacityConsuming() bool {
	switch s {
	case BookingStatusAccepted, BookingStatusPaid, BookingStatusInTransit, BookingStatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is legal.
// Delivered bookings still take a receipt confirmation, but the status
// itself no longer changes.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusDelivered || s == BookingStatusCancelled
}

type Booking struct {
	ID         int32 `json:"id"`
	ListingID  int32 `json:"listing_id"`
	SenderID   int32 `json:"sender_id"`
	TravelerID int32 `json:"traveler_id"` // denormalized from the listing owner

	WeightKg       float64 `json:"weight_kg"`
	Description    string  `json:"description"`
	DeclaredValue  float64 `json:"declared_value"`
	InsuranceOpted bool    `json:"insurance_opted"`

	// ProofToken is the sole credential for deposit and delivery scans.
	// Immutable once issued.
	ProofToken string `json:"proof_token"`

	Status BookingStatus `json:"status"`

	// Price snapshot fields, frozen at creation time from the listing's
	// rate. Payment always charges these, never re-reads the listing.
	PricePerKg        float64  `json:"price_per_kg"`
	TransportPrice    float64  `json:"transport_price"`
	Commission        float64  `json:"commission"`
	InsurancePremium  *float64 `json:"insurance_premium,omitempty"`
	InsuranceCoverage *float64 `json:"insurance_coverage,omitempty"`
	TotalPrice        float64  `json:"total_price"`

	PaymentIntentID string `json:"payment_intent_id,omitempty"`

	AcceptedAt          *time.Time `json:"accepted_at,omitempty"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	DepositedAt         *time.Time `json:"deposited_at,omitempty"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty"`
	RefusedAt           *time.Time `json:"refused_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	DeliveryConfirmedAt *time.Time `json:"delivery_confirmed_at,omitempty"`

	CancelReason string `json:"cancel_reason,omitempty"`
	CancelledBy  *int32 `json:"cancelled_by,omitempty"`

	DepositPhotoPath      string `json:"deposit_photo_path,omitempty"`
	DepositSignaturePath  string `json:"deposit_signature_path,omitempty"`
	DepositLocation       string `json:"deposit_location,omitempty"`
	DeliveryPhotoPath     string `json:"delivery_photo_path,omitempty"`
	DeliverySignaturePath string `json:"delivery_signature_path,omitempty"`
	DeliveryLocation      string `json:"delivery_location,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// BookingPhoto is a package photo attached at booking creation. Photos are
// part of the creation transaction: if any photo fails to store, the
// booking is rolled back.
type BookingPhoto struct {
	ID        int32     `json:"id"`
	BookingID int32     `json:"booking_id"`
	FilePath  string    `json:"file_path"`
	MimeType  string    `json:"mime_type"`
	FileSize  int64     `json:"file_size"`
	CreatedOn time.Time `json:"created_on"`
}
