package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"sendbox-backend/internal/config"
	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/logger"
	"sendbox-backend/internal/repository"
	"sendbox-backend/internal/storage"
	"sendbox-backend/internal/utils"
)

const (
	minWeightKg    = 0.5
	maxWeightKg    = 30.0
	minDescription = 10
	maxDescription = 500
	maxValue       = 10000.0
	minReasonLen   = 5

	maxPhotoSizeBytes = 10 << 20

	// ratingPenalty is applied to a traveler who cancels a paid booking.
	ratingPenalty = 0.3
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	txRepo      repository.TransactionRepository
	noteRepo    repository.NotificationRepository
	emailSvc    EmailService
	docSvc      DocumentService
	photoStore  storage.Storage
	features    config.FeaturesConfig
	currency    string
	locks       *listingLocks
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	txRepo repository.TransactionRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	docSvc DocumentService,
	photoStore storage.Storage,
	features config.FeaturesConfig,
	currency string,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		txRepo:      txRepo,
		noteRepo:    noteRepo,
		emailSvc:    emailSvc,
		docSvc:      docSvc,
		photoStore:  photoStore,
		features:    features,
		currency:    currency,
		locks:       newListingLocks(),
	}
}

func (s *bookingService) Create(ctx context.Context, senderID int32, in CreateBookingInput) (*domain.Booking, error) {
	if senderID == 0 {
		return nil, domain.E(domain.ErrUnauthenticated, "authentication required")
	}

	sender, err := s.profileRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if s.features.KycRequired {
		if kycErr := checkKyc(sender); kycErr != nil {
			return nil, kycErr
		}
	}

	pending, err := s.bookingRepo.CountPendingBySender(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if pending >= int32(s.features.MaxPendingBookings) {
		return nil, domain.Ef(domain.ErrRateLimited, "you already have %d pending booking requests", pending)
	}

	listing, err := s.listingRepo.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.Status.Bookable() {
		return nil, domain.E(domain.ErrIllegalTransition, "listing is not open for booking")
	}
	if senderID == listing.TravelerID {
		return nil, domain.E(domain.ErrUnauthorized, "you cannot book your own listing")
	}

	if err := validateBookingInput(in); err != nil {
		return nil, err
	}
	if err := validatePhotos(in.Photos, s.features.MaxPhotosPerBooking); err != nil {
		return nil, err
	}

	quote := utils.CalculatePrice(in.WeightKg, listing.PricePerKg, in.DeclaredValue, in.InsuranceOpted)
	if s.features.AmountCapEnabled && quote.Total > s.features.AmountCapTotal {
		return nil, domain.Ef(domain.ErrAmountCapExceeded,
			"booking total %.2f exceeds the current maximum of %.2f", quote.Total, s.features.AmountCapTotal)
	}

	// Capacity check and insert hold the listing lock so two concurrent
	// requests cannot both observe the same remainder.
	unlock := s.locks.Lock(listing.ID)
	defer unlock()

	siblings, err := s.bookingRepo.ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	available := utils.AvailableCapacity(listing, siblings, 0)
	if !utils.CapacityAdmits(available, in.WeightKg) {
		return nil, domain.FieldError(domain.ErrInsufficientCapacity, "kilos_requested",
			fmt.Sprintf("only %.1f kg remaining on this listing", available))
	}

	booking := &domain.Booking{
		ListingID:         listing.ID,
		SenderID:          senderID,
		TravelerID:        listing.TravelerID,
		WeightKg:          in.WeightKg,
		Description:       strings.TrimSpace(in.Description),
		DeclaredValue:     in.DeclaredValue,
		InsuranceOpted:    in.InsuranceOpted,
		ProofToken:        utils.GenerateProofToken(),
		Status:            domain.BookingStatusPending,
		PricePerKg:        listing.PricePerKg,
		TransportPrice:    quote.TransportPrice,
		Commission:        quote.Commission,
		InsurancePremium:  quote.InsurancePremium,
		InsuranceCoverage: quote.InsuranceCoverage,
		TotalPrice:        quote.Total,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	// Package photos are part of the creation transaction: any failure
	// rolls the whole booking back so no orphaned partial state remains.
	if err := s.attachPhotos(ctx, booking, in.Photos); err != nil {
		s.rollbackCreate(ctx, booking)
		return nil, err
	}

	s.notify(ctx, booking.TravelerID, "New booking request",
		fmt.Sprintf("%s requested %.1f kg on your %s trip", sender.Name, booking.WeightKg, routeOf(listing)),
		booking)
	if traveler, perr := s.profileRepo.GetByID(ctx, booking.TravelerID); perr == nil {
		if err := s.emailSvc.SendBookingRequestNotification(ctx, traveler.Email, sender.Name, routeOf(listing)); err != nil {
			logger.SideEffectFailed("email", err, "booking_id", booking.ID)
		}
	}

	return booking, nil
}

func (s *bookingService) Accept(ctx context.Context, callerID, bookingID int32) (*domain.Booking, error) {
	booking, caller, err := s.loadForCaller(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if callerID != booking.TravelerID {
		return nil, domain.E(domain.ErrUnauthorized, "only the traveler can accept a booking")
	}
	if s.features.KycRequired {
		if kycErr := checkKyc(caller); kycErr != nil {
			return nil, kycErr
		}
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.E(domain.ErrIllegalTransition, "booking is not pending")
	}

	listing, err := s.listingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.Status.Bookable() {
		return nil, domain.E(domain.ErrIllegalTransition, "listing is not open for booking")
	}

	unlock := s.locks.Lock(listing.ID)
	defer unlock()

	siblings, err := s.bookingRepo.ListByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	// Exclude this booking from the sum, then check its own weight
	// against what remains.
	available := utils.AvailableCapacity(listing, siblings, booking.ID)
	if !utils.CapacityAdmits(available, booking.WeightKg) {
		return nil, domain.FieldError(domain.ErrInsufficientCapacity, "kilos_requested",
			fmt.Sprintf("only %.1f kg remaining on this listing", available))
	}

	now := time.Now()
	booking.Status = domain.BookingStatusAccepted
	booking.AcceptedAt = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.refreshListingStatus(ctx, listing, siblings, booking)

	s.notify(ctx, booking.SenderID, "Booking accepted",
		fmt.Sprintf("Your booking on the %s trip was accepted", routeOf(listing)), booking)
	if sender, perr := s.profileRepo.GetByID(ctx, booking.SenderID); perr == nil {
		if err := s.emailSvc.SendBookingAcceptedNotification(ctx, sender.Email, routeOf(listing)); err != nil {
			logger.SideEffectFailed("email", err, "booking_id", booking.ID)
		}
	}

	return booking, nil
}

func (s *bookingService) Refuse(ctx context.Context, callerID, bookingID int32, reason string) (*domain.Booking, error) {
	booking, _, err := s.loadForCaller(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if callerID != booking.TravelerID {
		return nil, domain.E(domain.ErrUnauthorized, "only the traveler can refuse a booking")
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.E(domain.ErrIllegalTransition, "booking is not pending")
	}
	trimmed := strings.TrimSpace(reason)
	if len(trimmed) < minReasonLen {
		return nil, domain.FieldError(domain.ErrValidation, "reason", "reason must be at least 5 characters")
	}

	now := time.Now()
	booking.Status = domain.BookingStatusCancelled
	booking.CancelReason = trimmed
	booking.RefusedAt = &now
	booking.CancelledAt = &now
	booking.CancelledBy = &callerID
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.notifyCancellation(ctx, booking, booking.SenderID, trimmed)
	return booking, nil
}

func (s *bookingService) Cancel(ctx context.Context, callerID, bookingID int32, reason string) (*domain.Booking, error) {
	booking, _, err := s.loadForCaller(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if callerID != booking.SenderID && callerID != booking.TravelerID {
		return nil, domain.E(domain.ErrUnauthorized, "only the sender or the traveler can cancel a booking")
	}
	trimmed := strings.TrimSpace(reason)
	if len(trimmed) < minReasonLen {
		return nil, domain.FieldError(domain.ErrValidation, "reason", "reason must be at least 5 characters")
	}

	penalize := false
	switch {
	case booking.Status == domain.BookingStatusAccepted:
		// unpaid cancellation, either party
	case booking.Status == domain.BookingStatusPaid && callerID == booking.TravelerID:
		// a traveler backing out of a paid booking takes a reputation hit
		penalize = true
	default:
		return nil, domain.E(domain.ErrIllegalTransition, "booking cannot be cancelled in its current state")
	}

	now := time.Now()
	wasConsuming := booking.Status.CapacityConsuming()
	booking.Status = domain.BookingStatusCancelled
	booking.CancelReason = trimmed
	booking.RefusedAt = &now
	booking.CancelledAt = &now
	booking.CancelledBy = &callerID
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	// The penalty follows the status write: a failed cancellation must not
	// leave the traveler's rating mutated.
	if penalize {
		s.applyRatingPenalty(ctx, callerID)
	}

	// Cancelling a consuming booking restores its weight to the listing.
	if wasConsuming {
		if listing, lerr := s.listingRepo.GetByID(ctx, booking.ListingID); lerr == nil {
			if siblings, serr := s.bookingRepo.ListByListing(ctx, listing.ID); serr == nil {
				s.refreshListingStatus(ctx, listing, siblings, booking)
			}
		}
	}

	counterparty := booking.SenderID
	if callerID == booking.SenderID {
		counterparty = booking.TravelerID
	}
	s.notifyCancellation(ctx, booking, counterparty, trimmed)
	return booking, nil
}

func (s *bookingService) DeleteCancelled(ctx context.Context, callerID, bookingID int32) error {
	booking, _, err := s.loadForCaller(ctx, callerID, bookingID)
	if err != nil {
		return err
	}
	if callerID != booking.SenderID && callerID != booking.TravelerID {
		return domain.E(domain.ErrUnauthorized, "only the sender or the traveler can delete a booking")
	}
	// Only reason-bearing cancellations are deletable, never a bare flip.
	if booking.Status != domain.BookingStatusCancelled || booking.RefusedAt == nil {
		return domain.E(domain.ErrIllegalTransition, "only cancelled bookings with a recorded reason can be deleted")
	}

	photos, err := s.bookingRepo.ListPhotos(ctx, bookingID)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(photos))
	for _, p := range photos {
		keys = append(keys, p.FilePath)
	}
	if len(keys) > 0 {
		if err := s.photoStore.Delete(ctx, keys...); err != nil {
			logger.SideEffectFailed("photo_delete", err, "booking_id", bookingID)
		}
	}
	if err := s.bookingRepo.DeletePhotos(ctx, bookingID); err != nil {
		return err
	}
	return s.bookingRepo.Delete(ctx, bookingID)
}

func (s *bookingService) DepositScan(ctx context.Context, callerID, bookingID int32, in ScanInput) (*domain.Booking, error) {
	booking, _, err := s.loadForCaller(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if callerID != booking.SenderID && callerID != booking.TravelerID {
		return nil, domain.E(domain.ErrUnauthorized, "only the sender or the traveler can record a deposit")
	}
	if booking.Status != domain.BookingStatusPaid {
		return nil, domain.E(domain.ErrIllegalTransition, "booking must be paid before the package is deposited")
	}
	if !utils.MatchProofToken(in.Token, booking.ProofToken) {
		return nil, domain.E(domain.ErrTokenMismatch, "scanned code does not match this booking")
	}

	now := time.Now()
	booking.Status = domain.BookingStatusInTransit
	booking.DepositedAt = &now
	booking.DepositLocation = in.Location
	booking.DepositPhotoPath = s.storeHandoffFile(ctx, booking.ID, "deposit-photo", in.Photo)
	booking.DepositSignaturePath = s.storeHandoffFile(ctx, booking.ID, "deposit-signature", in.Signature)
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.notifyBothParties(ctx, booking, "Package deposited", "The package was handed over to the traveler")
	s.sendHandoffEmails(ctx, booking, s.emailSvc.SendPackageDepositedNotification)
	s.generateProof(booking.ID)
	return booking, nil
}

func (s *bookingService) DeliveryScan(ctx context.Context, callerID, bookingID int32, in ScanInput) (*domain.Booking, error) {
	booking, _, err := s.loadForCaller(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if callerID != booking.SenderID && callerID != booking.TravelerID {
		return nil, domain.E(domain.ErrUnauthorized, "only the sender or the traveler can record a delivery")
	}
	if booking.Status != domain.BookingStatusInTransit {
		return nil, domain.E(domain.ErrIllegalTransition, "booking is not in transit")
	}
	if !utils.MatchProofToken(in.Token, booking.ProofToken) {
		return nil, domain.E(domain.ErrTokenMismatch, "scanned code does not match this booking")
	}

	now := time.Now()
	booking.Status = domain.BookingStatusDelivered
	booking.DeliveredAt = &now
	booking.DeliveryLocation = in.Location
	booking.DeliveryPhotoPath = s.storeHandoffFile(ctx, booking.ID, "delivery-photo", in.Photo)
	booking.DeliverySignaturePath = s.storeHandoffFile(ctx, booking.ID, "delivery-signature", in.Signature)
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.notify(ctx, booking.SenderID, "Package delivered",
		"Your package was delivered. Please confirm receipt.", booking)
	s.sendHandoffEmails(ctx, booking, s.emailSvc.SendPackageDeliveredNotification)
	s.generateProof(booking.ID)
	return booking, nil
}

func (s *bookingService) ConfirmReceipt(ctx context.Context, senderID, bookingID int32) (*domain.Booking, error) {
	booking, sender, err := s.loadForCaller(ctx, senderID, bookingID)
	if err != nil {
		return nil, err
	}
	if senderID != booking.SenderID {
		return nil, domain.E(domain.ErrUnauthorized, "only the sender can confirm receipt")
	}
	if s.features.KycRequired {
		if kycErr := checkKyc(sender); kycErr != nil {
			return nil, kycErr
		}
	}
	if booking.Status != domain.BookingStatusDelivered {
		return nil, domain.E(domain.ErrIllegalTransition, "booking has not been delivered")
	}
	if booking.DeliveryConfirmedAt != nil {
		return nil, domain.E(domain.ErrIllegalTransition, "receipt has already been confirmed")
	}

	now := time.Now()
	booking.DeliveryConfirmedAt = &now
	if err := s.bookingRepo.Update(ctx, booking); err != nil {
		return nil, err
	}

	// Fund release and the traveler's service counter are best-effort:
	// the confirmation itself must not fail on them.
	traveler, perr := s.profileRepo.GetByID(ctx, booking.TravelerID)
	if perr == nil {
		traveler.CompletedServices++
		if err := s.profileRepo.Update(ctx, traveler); err != nil {
			logger.SideEffectFailed("completed_services", err, "booking_id", booking.ID)
		}
	}

	// The payout record hands the release over to the payment authority;
	// the transport price is the traveler's share, commission and
	// insurance premium stay with the platform.
	payout := &domain.Transaction{
		BookingID: booking.ID,
		UserID:    booking.TravelerID,
		Amount:    booking.TransportPrice,
		Currency:  s.currency,
		Type:      domain.TransactionTypePayout,
		Status:    domain.TransactionStatusPending,
		Reference: booking.PaymentIntentID,
	}
	if err := s.txRepo.Create(ctx, payout); err != nil {
		logger.SideEffectFailed("payout", err, "booking_id", booking.ID)
	}

	s.notify(ctx, booking.TravelerID, "Receipt confirmed",
		"The sender confirmed receipt. Your payout is on its way.", booking)
	if traveler != nil {
		route := ""
		if listing, lerr := s.listingRepo.GetByID(ctx, booking.ListingID); lerr == nil {
			route = routeOf(listing)
		}
		if err := s.emailSvc.SendReceiptConfirmedNotification(ctx, traveler.Email, route, booking.TransportPrice); err != nil {
			logger.SideEffectFailed("email", err, "booking_id", booking.ID)
		}
	}

	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, callerID, bookingID int32) (*domain.Booking, error) {
	booking, _, err := s.loadForCaller(ctx, callerID, bookingID)
	if err != nil {
		return nil, err
	}
	if callerID != booking.SenderID && callerID != booking.TravelerID {
		return nil, domain.E(domain.ErrUnauthorized, "booking belongs to another user")
	}
	return booking, nil
}

func (s *bookingService) ListSent(ctx context.Context, senderID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListBySender(ctx, senderID, status, page, pageSize)
}

func (s *bookingService) ListCarried(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByTraveler(ctx, travelerID, status, page, pageSize)
}

// loadForCaller fetches the booking and the caller's profile, rejecting
// unauthenticated calls up front.
func (s *bookingService) loadForCaller(ctx context.Context, callerID, bookingID int32) (*domain.Booking, *domain.Profile, error) {
	if callerID == 0 {
		return nil, nil, domain.E(domain.ErrUnauthenticated, "authentication required")
	}
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	caller, err := s.profileRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, nil, err
	}
	return booking, caller, nil
}

func validateBookingInput(in CreateBookingInput) error {
	if in.WeightKg < minWeightKg || in.WeightKg > maxWeightKg {
		return domain.FieldError(domain.ErrValidation, "kilos_requested",
			fmt.Sprintf("weight must be between %.1f and %.0f kg", minWeightKg, maxWeightKg))
	}
	desc := strings.TrimSpace(in.Description)
	if n := utf8.RuneCountInString(desc); n < minDescription || n > maxDescription {
		return domain.FieldError(domain.ErrValidation, "description",
			fmt.Sprintf("description must be between %d and %d characters", minDescription, maxDescription))
	}
	if in.DeclaredValue < 0 || in.DeclaredValue > maxValue {
		return domain.FieldError(domain.ErrValidation, "declared_value",
			fmt.Sprintf("declared value must be between 0 and %.0f", maxValue))
	}
	return nil
}

func validatePhotos(photos []PhotoUpload, maxCount int) error {
	if len(photos) > maxCount {
		return domain.Ef(domain.ErrRateLimited, "at most %d photos per booking", maxCount)
	}
	for i := range photos {
		p := &photos[i]
		if _, ok := allowedPhotoTypes[p.ContentType]; !ok {
			return domain.FieldError(domain.ErrValidation, "photos",
				fmt.Sprintf("unsupported photo type %s", p.ContentType))
		}
		if p.Size > maxPhotoSizeBytes {
			return domain.FieldError(domain.ErrValidation, "photos", "photo exceeds the maximum size")
		}
		if err := sniffPhotoContent(p); err != nil {
			return err
		}
	}
	return nil
}

// sniffPhotoContent checks the upload's leading bytes against its declared
// type, so a renamed non-image cannot slip through on Content-Type alone.
// The consumed bytes are stitched back onto the reader.
func sniffPhotoContent(p *PhotoUpload) error {
	head := make([]byte, 512)
	n, err := io.ReadFull(p.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return domain.Internal(err)
	}
	head = head[:n]
	p.Content = io.MultiReader(bytes.NewReader(head), p.Content)

	if http.DetectContentType(head) != p.ContentType {
		return domain.FieldError(domain.ErrValidation, "photos",
			"photo content does not match its declared type")
	}
	return nil
}

// attachPhotos stores the package photos and records them. Returns the
// first failure; the caller rolls the booking back.
func (s *bookingService) attachPhotos(ctx context.Context, booking *domain.Booking, photos []PhotoUpload) error {
	for _, p := range photos {
		key := path.Join("photos", fmt.Sprint(booking.ID), uuid.New().String()+allowedPhotoTypes[p.ContentType])
		if _, err := s.photoStore.Save(ctx, key, p.ContentType, p.Content); err != nil {
			return domain.Internal(err)
		}
		photo := &domain.BookingPhoto{
			BookingID: booking.ID,
			FilePath:  key,
			MimeType:  p.ContentType,
			FileSize:  p.Size,
		}
		if err := s.bookingRepo.CreatePhoto(ctx, photo); err != nil {
			return domain.Internal(err)
		}
	}
	return nil
}

// rollbackCreate undoes a partially created booking after a photo failure.
func (s *bookingService) rollbackCreate(ctx context.Context, booking *domain.Booking) {
	if photos, err := s.bookingRepo.ListPhotos(ctx, booking.ID); err == nil {
		for _, p := range photos {
			if err := s.photoStore.Delete(ctx, p.FilePath); err != nil {
				logger.SideEffectFailed("photo_delete", err, "booking_id", booking.ID)
			}
		}
	}
	if err := s.bookingRepo.DeletePhotos(ctx, booking.ID); err != nil {
		logger.Error("Failed to delete photos during booking rollback", "booking_id", booking.ID, "error", err)
	}
	if err := s.bookingRepo.Delete(ctx, booking.ID); err != nil {
		logger.Error("Failed to delete booking during rollback", "booking_id", booking.ID, "error", err)
	}
}

// storeHandoffFile saves a scan photo or signature. Handoff evidence is a
// secondary effect: a storage failure is logged, never fatal.
func (s *bookingService) storeHandoffFile(ctx context.Context, bookingID int32, kind string, upload *PhotoUpload) string {
	if upload == nil {
		return ""
	}
	ext := allowedPhotoTypes[upload.ContentType]
	if ext == "" {
		ext = ".bin"
	}
	key := path.Join("handoff", fmt.Sprint(bookingID), kind+"-"+uuid.New().String()+ext)
	if _, err := s.photoStore.Save(ctx, key, upload.ContentType, upload.Content); err != nil {
		logger.SideEffectFailed("handoff_file", err, "booking_id", bookingID, "kind", kind)
		return ""
	}
	return key
}

// refreshListingStatus re-derives the listing's booked status after a
// booking changed state. updated replaces its stale copy in siblings.
func (s *bookingService) refreshListingStatus(ctx context.Context, listing *domain.Listing, siblings []domain.Booking, updated *domain.Booking) {
	var reserved float64
	for _, b := range siblings {
		if b.ID == updated.ID {
			continue
		}
		if b.Status.CapacityConsuming() {
			reserved += b.WeightKg
		}
	}
	if updated.Status.CapacityConsuming() {
		reserved += updated.WeightKg
	}

	var next domain.ListingStatus
	switch {
	case reserved >= listing.CapacityKg:
		next = domain.ListingStatusFullyBooked
	case reserved > 0:
		next = domain.ListingStatusPartiallyBooked
	default:
		next = domain.ListingStatusActive
	}

	// Draft, completed, cancelled and archived listings keep their status.
	adjustable := listing.Status.Bookable() || listing.Status == domain.ListingStatusFullyBooked
	if !adjustable || listing.Status == next {
		return
	}
	listing.Status = next
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		logger.SideEffectFailed("listing_status", err, "listing_id", listing.ID)
	}
}

func (s *bookingService) applyRatingPenalty(ctx context.Context, travelerID int32) {
	profile, err := s.profileRepo.GetByID(ctx, travelerID)
	if err != nil {
		logger.SideEffectFailed("rating_penalty", err, "user_id", travelerID)
		return
	}
	profile.Rating -= ratingPenalty
	if profile.Rating < 0 {
		profile.Rating = 0
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		logger.SideEffectFailed("rating_penalty", err, "user_id", travelerID)
	}
}

// notify records an in-app notification. Failures are logged and
// swallowed; notifications never fail the primary operation.
func (s *bookingService) notify(ctx context.Context, userID int32, title, message string, booking *domain.Booking) {
	note := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"booking_id": fmt.Sprintf("%d", booking.ID),
			"listing_id": fmt.Sprintf("%d", booking.ListingID),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.SideEffectFailed("notification", err, "booking_id", booking.ID, "user_id", userID)
	}
}

func (s *bookingService) notifyBothParties(ctx context.Context, booking *domain.Booking, title, message string) {
	s.notify(ctx, booking.SenderID, title, message, booking)
	s.notify(ctx, booking.TravelerID, title, message, booking)
}

func (s *bookingService) notifyCancellation(ctx context.Context, booking *domain.Booking, counterpartyID int32, reason string) {
	s.notify(ctx, counterpartyID, "Booking cancelled",
		fmt.Sprintf("Booking #%d was cancelled: %s", booking.ID, reason), booking)
	counterparty, err := s.profileRepo.GetByID(ctx, counterpartyID)
	if err != nil {
		return
	}
	route := ""
	if listing, lerr := s.listingRepo.GetByID(ctx, booking.ListingID); lerr == nil {
		route = routeOf(listing)
	}
	if err := s.emailSvc.SendBookingCancelledNotification(ctx, counterparty.Email, "", route, reason); err != nil {
		logger.SideEffectFailed("email", err, "booking_id", booking.ID)
	}
}

func (s *bookingService) sendHandoffEmails(ctx context.Context, booking *domain.Booking, send func(context.Context, string, string) error) {
	route := ""
	if listing, err := s.listingRepo.GetByID(ctx, booking.ListingID); err == nil {
		route = routeOf(listing)
	}
	for _, id := range []int32{booking.SenderID, booking.TravelerID} {
		if p, err := s.profileRepo.GetByID(ctx, id); err == nil {
			if err := send(ctx, p.Email, route); err != nil {
				logger.SideEffectFailed("email", err, "booking_id", booking.ID)
			}
		}
	}
}

// generateProof kicks off proof-document generation without blocking the
// caller or the request's lifetime.
func (s *bookingService) generateProof(bookingID int32) {
	go func() {
		if _, err := s.docSvc.GenerateBookingProof(context.Background(), bookingID); err != nil {
			logger.SideEffectFailed("proof_document", err, "booking_id", bookingID)
		}
	}()
}

func routeOf(l *domain.Listing) string {
	return fmt.Sprintf("%s to %s", l.DepartureCity, l.ArrivalCity)
}
