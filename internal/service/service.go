package service

import (
	"context"
	"io"

	"sendbox-backend/internal/domain"
)

// PhotoUpload is an in-memory handle to an uploaded file (package photo,
// handoff photo or signature).
type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// CreateBookingInput carries everything a sender submits when requesting
// space on a listing.
type CreateBookingInput struct {
	ListingID      int32
	WeightKg       float64
	Description    string
	DeclaredValue  float64
	InsuranceOpted bool
	Photos         []PhotoUpload
}

// ScanInput is the payload of a deposit or delivery scan: the scanned
// proof token plus evidence of the physical handoff.
type ScanInput struct {
	Token     string
	Photo     *PhotoUpload
	Signature *PhotoUpload
	Location  string
}

type BookingService interface {
	Create(ctx context.Context, senderID int32, in CreateBookingInput) (*domain.Booking, error)
	Accept(ctx context.Context, callerID, bookingID int32) (*domain.Booking, error)
	Refuse(ctx context.Context, callerID, bookingID int32, reason string) (*domain.Booking, error)
	Cancel(ctx context.Context, callerID, bookingID int32, reason string) (*domain.Booking, error)
	DeleteCancelled(ctx context.Context, callerID, bookingID int32) error
	DepositScan(ctx context.Context, callerID, bookingID int32, in ScanInput) (*domain.Booking, error)
	DeliveryScan(ctx context.Context, callerID, bookingID int32, in ScanInput) (*domain.Booking, error)
	ConfirmReceipt(ctx context.Context, senderID, bookingID int32) (*domain.Booking, error)
	Get(ctx context.Context, callerID, bookingID int32) (*domain.Booking, error)
	ListSent(ctx context.Context, senderID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListCarried(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

// PaymentIntent is a client-confirmable charge created with the external
// payment authority.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentProvider is the external payment authority. The webhook that
// confirms a charge calls back into PaymentService.HandlePaymentConfirmed.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error)
}

// PayResult reports the outcome of a payment attempt. AlreadyPaid marks
// the idempotent no-op on a booking that was paid earlier.
type PayResult struct {
	Booking      *domain.Booking
	AlreadyPaid  bool
	IntentID     string
	ClientSecret string
}

type PaymentService interface {
	Pay(ctx context.Context, senderID, bookingID int32) (*PayResult, error)
	HandlePaymentConfirmed(ctx context.Context, intentID string) (*domain.Booking, error)
}

type CreateListingInput struct {
	DepartureCity    string
	DepartureCountry string
	ArrivalCity      string
	ArrivalCountry   string
	DepartureDate    string // yyyy-mm-dd
	ArrivalDate      string // yyyy-mm-dd
	CapacityKg       float64
	PricePerKg       float64
}

type ListingService interface {
	Create(ctx context.Context, travelerID int32, in CreateListingInput) (*domain.Listing, error)
	Publish(ctx context.Context, travelerID, listingID int32) (*domain.Listing, error)
	Cancel(ctx context.Context, travelerID, listingID int32) (*domain.Listing, error)
	Get(ctx context.Context, listingID int32) (*domain.Listing, float64, error) // listing + available kg
	ListActive(ctx context.Context, page, pageSize int32) ([]domain.Listing, int32, error)
	ListMine(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Listing, int32, error)
}

type ProfileService interface {
	Get(ctx context.Context, userID int32) (*domain.Profile, error)
	SubmitKyc(ctx context.Context, userID int32) (*domain.Profile, error)
	ReviewKyc(ctx context.Context, userID int32, approve bool, reason string) (*domain.Profile, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailService interface {
	SendBookingRequestNotification(ctx context.Context, travelerEmail, senderName, route string) error
	SendBookingAcceptedNotification(ctx context.Context, senderEmail, route string) error
	SendBookingCancelledNotification(ctx context.Context, email, counterpartyName, route, reason string) error
	SendPaymentReceivedNotification(ctx context.Context, travelerEmail, route string, amount float64) error
	SendPackageDepositedNotification(ctx context.Context, email, route string) error
	SendPackageDeliveredNotification(ctx context.Context, email, route string) error
	SendReceiptConfirmedNotification(ctx context.Context, travelerEmail, route string, payout float64) error
	SendDepartureReminder(ctx context.Context, travelerEmail, route string, departure string) error
}

// DocumentService generates proof-of-shipment documents. Invoked
// fire-and-forget; failures never surface to the caller.
type DocumentService interface {
	GenerateBookingProof(ctx context.Context, bookingID int32) (string, error)
}
