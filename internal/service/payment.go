package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/logger"
	"sendbox-backend/internal/repository"
	"sendbox-backend/internal/utils"
)

// Payment backend modes. "stripe" delegates to the external payment
// authority, "simulated" marks bookings paid synchronously, "disabled"
// rejects every payment attempt.
const (
	PaymentModeStripe    = "stripe"
	PaymentModeSimulated = "simulated"
	PaymentModeDisabled  = "disabled"
)

type paymentService struct {
	bookingRepo repository.BookingRepository
	txRepo      repository.TransactionRepository
	profileRepo repository.ProfileRepository
	noteRepo    repository.NotificationRepository
	emailSvc    EmailService
	docSvc      DocumentService
	provider    PaymentProvider
	mode        string
	currency    string
	kycRequired bool
}

func NewPaymentService(
	bookingRepo repository.BookingRepository,
	txRepo repository.TransactionRepository,
	profileRepo repository.ProfileRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	docSvc DocumentService,
	provider PaymentProvider,
	mode, currency string,
	kycRequired bool,
) PaymentService {
	return &paymentService{
		bookingRepo: bookingRepo,
		txRepo:      txRepo,
		profileRepo: profileRepo,
		noteRepo:    noteRepo,
		emailSvc:    emailSvc,
		docSvc:      docSvc,
		provider:    provider,
		mode:        mode,
		currency:    currency,
		kycRequired: kycRequired,
	}
}

func (s *paymentService) Pay(ctx context.Context, senderID, bookingID int32) (*PayResult, error) {
	if senderID == 0 {
		return nil, domain.E(domain.ErrUnauthenticated, "authentication required")
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if senderID != booking.SenderID {
		return nil, domain.E(domain.ErrUnauthorized, "only the sender can pay for a booking")
	}

	sender, err := s.profileRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if s.kycRequired {
		if kycErr := checkKyc(sender); kycErr != nil {
			return nil, kycErr
		}
	}

	// Safe to call twice: a booking paid earlier reports success without
	// touching the transaction ledger again.
	if booking.Status == domain.BookingStatusPaid {
		return &PayResult{Booking: booking, AlreadyPaid: true, IntentID: booking.PaymentIntentID}, nil
	}
	if booking.Status != domain.BookingStatusAccepted {
		return nil, domain.E(domain.ErrIllegalTransition, "booking must be accepted before payment")
	}

	// The charge is always computed from the booking's frozen price
	// fields, never re-read from the listing.
	quote := utils.CalculatePrice(booking.WeightKg, booking.PricePerKg, booking.DeclaredValue, booking.InsuranceOpted)

	switch s.mode {
	case PaymentModeSimulated:
		return s.paySimulated(ctx, booking, quote)
	case PaymentModeStripe:
		return s.payReal(ctx, booking, quote)
	default:
		return nil, domain.E(domain.ErrPaymentUnavailable, "payment simulation is not available in this environment")
	}
}

// paySimulated marks the booking paid synchronously without external
// calls, for environments without live payment processing.
func (s *paymentService) paySimulated(ctx context.Context, booking *domain.Booking, quote utils.PriceQuote) (*PayResult, error) {
	now := time.Now()
	reference := "sim_" + uuid.New().String()
	booking.Status = domain.BookingStatusPaid
	booking.PaidAt = &now
	booking.PaymentIntentID = reference
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.recordPayment(ctx, booking, quote, reference); err != nil {
		logger.SideEffectFailed("transaction_record", err, "booking_id", booking.ID)
	}
	s.afterPaid(ctx, booking, quote)

	return &PayResult{Booking: booking, IntentID: reference}, nil
}

// payReal creates a client-confirmable intent with the payment authority.
// The status transition to paid happens in HandlePaymentConfirmed once
// the authority's webhook reports the confirmed charge.
func (s *paymentService) payReal(ctx context.Context, booking *domain.Booking, quote utils.PriceQuote) (*PayResult, error) {
	intent, err := s.provider.CreateIntent(ctx, quote.Total, s.currency, map[string]string{
		"booking_id":  fmt.Sprintf("%d", booking.ID),
		"sender_id":   fmt.Sprintf("%d", booking.SenderID),
		"traveler_id": fmt.Sprintf("%d", booking.TravelerID),
	})
	if err != nil {
		return nil, domain.Internal(err)
	}

	booking.PaymentIntentID = intent.ID
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	return &PayResult{Booking: booking, IntentID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (s *paymentService) HandlePaymentConfirmed(ctx context.Context, intentID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByPaymentIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	// Webhook deliveries retry; a booking already paid is a no-op.
	if booking.Status == domain.BookingStatusPaid {
		return booking, nil
	}
	if booking.Status != domain.BookingStatusAccepted {
		return nil, domain.E(domain.ErrIllegalTransition, "booking is not awaiting payment")
	}

	now := time.Now()
	booking.Status = domain.BookingStatusPaid
	booking.PaidAt = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	quote := utils.CalculatePrice(booking.WeightKg, booking.PricePerKg, booking.DeclaredValue, booking.InsuranceOpted)
	if err := s.recordPayment(ctx, booking, quote, intentID); err != nil {
		logger.SideEffectFailed("transaction_record", err, "booking_id", booking.ID)
	}
	s.afterPaid(ctx, booking, quote)

	return booking, nil
}

// recordPayment writes the completed payment row, guarding against
// duplicates on retried confirmations.
func (s *paymentService) recordPayment(ctx context.Context, booking *domain.Booking, quote utils.PriceQuote, reference string) error {
	exists, err := s.txRepo.HasCompletedPayment(ctx, booking.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	protection := 0.0
	if quote.InsurancePremium != nil {
		protection = *quote.InsurancePremium
	}
	tx := &domain.Transaction{
		BookingID:        booking.ID,
		UserID:           booking.SenderID,
		Amount:           quote.Total,
		Currency:         s.currency,
		Type:             domain.TransactionTypePayment,
		Status:           domain.TransactionStatusCompleted,
		CommissionAmount: quote.Commission,
		ProtectionAmount: protection,
		Reference:        reference,
	}
	return s.txRepo.Create(ctx, tx)
}

// afterPaid runs the non-blocking post-payment side effects.
func (s *paymentService) afterPaid(ctx context.Context, booking *domain.Booking, quote utils.PriceQuote) {
	note := &domain.Notification{
		UserID:  booking.TravelerID,
		Title:   "Booking paid",
		Message: fmt.Sprintf("Booking #%d was paid. Arrange the package handoff.", booking.ID),
		Attributes: map[string]string{
			"booking_id": fmt.Sprintf("%d", booking.ID),
			"listing_id": fmt.Sprintf("%d", booking.ListingID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.SideEffectFailed("notification", err, "booking_id", booking.ID)
	}

	if traveler, err := s.profileRepo.GetByID(ctx, booking.TravelerID); err == nil {
		if err := s.emailSvc.SendPaymentReceivedNotification(ctx, traveler.Email, "", quote.Total); err != nil {
			logger.SideEffectFailed("email", err, "booking_id", booking.ID)
		}
	}

	go func(id int32) {
		if _, err := s.docSvc.GenerateBookingProof(context.Background(), id); err != nil {
			logger.SideEffectFailed("proof_document", err, "booking_id", id)
		}
	}(booking.ID)
}
