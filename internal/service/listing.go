package service

import (
	"context"
	"strings"
	"time"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/repository"
	"sendbox-backend/internal/utils"
)

type listingService struct {
	listingRepo repository.ListingRepository
	bookingRepo repository.BookingRepository
	profileRepo repository.ProfileRepository
	kycRequired bool
}

func NewListingService(
	listingRepo repository.ListingRepository,
	bookingRepo repository.BookingRepository,
	profileRepo repository.ProfileRepository,
	kycRequired bool,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		profileRepo: profileRepo,
		kycRequired: kycRequired,
	}
}

func (s *listingService) Create(ctx context.Context, travelerID int32, in CreateListingInput) (*domain.Listing, error) {
	if travelerID == 0 {
		return nil, domain.E(domain.ErrUnauthenticated, "authentication required")
	}
	traveler, err := s.profileRepo.GetByID(ctx, travelerID)
	if err != nil {
		return nil, err
	}
	if s.kycRequired {
		if kycErr := checkKyc(traveler); kycErr != nil {
			return nil, kycErr
		}
	}

	departure, err := time.Parse("2006-01-02", in.DepartureDate)
	if err != nil {
		return nil, domain.FieldError(domain.ErrValidation, "departure_date", "expected yyyy-mm-dd")
	}
	arrival, err := time.Parse("2006-01-02", in.ArrivalDate)
	if err != nil {
		return nil, domain.FieldError(domain.ErrValidation, "arrival_date", "expected yyyy-mm-dd")
	}
	if arrival.Before(departure) {
		return nil, domain.FieldError(domain.ErrValidation, "arrival_date", "arrival must not precede departure")
	}
	if strings.TrimSpace(in.DepartureCity) == "" || strings.TrimSpace(in.ArrivalCity) == "" {
		return nil, domain.FieldError(domain.ErrValidation, "route", "departure and arrival cities are required")
	}
	if in.CapacityKg <= 0 {
		return nil, domain.FieldError(domain.ErrValidation, "capacity_kg", "capacity must be positive")
	}
	if in.PricePerKg < 0 {
		return nil, domain.FieldError(domain.ErrValidation, "price_per_kg", "price must not be negative")
	}

	listing := &domain.Listing{
		TravelerID:       travelerID,
		DepartureCity:    strings.TrimSpace(in.DepartureCity),
		DepartureCountry: strings.TrimSpace(in.DepartureCountry),
		ArrivalCity:      strings.TrimSpace(in.ArrivalCity),
		ArrivalCountry:   strings.TrimSpace(in.ArrivalCountry),
		DepartureDate:    departure,
		ArrivalDate:      arrival,
		CapacityKg:       in.CapacityKg,
		PricePerKg:       in.PricePerKg,
		Status:           domain.ListingStatusDraft,
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Publish(ctx context.Context, travelerID, listingID int32) (*domain.Listing, error) {
	listing, err := s.ownedListing(ctx, travelerID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingStatusDraft {
		return nil, domain.E(domain.ErrIllegalTransition, "only draft listings can be published")
	}
	listing.Status = domain.ListingStatusActive
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Cancel(ctx context.Context, travelerID, listingID int32) (*domain.Listing, error) {
	listing, err := s.ownedListing(ctx, travelerID, listingID)
	if err != nil {
		return nil, err
	}
	switch listing.Status {
	case domain.ListingStatusCompleted, domain.ListingStatusCancelled, domain.ListingStatusArchived:
		return nil, domain.E(domain.ErrIllegalTransition, "listing is already closed")
	}

	bookings, err := s.bookingRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.Status.CapacityConsuming() {
			return nil, domain.E(domain.ErrIllegalTransition, "listing has active bookings; cancel them first")
		}
	}

	listing.Status = domain.ListingStatusCancelled
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, listingID int32) (*domain.Listing, float64, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	bookings, err := s.bookingRepo.ListByListing(ctx, listingID)
	if err != nil {
		return nil, 0, err
	}
	return listing, utils.AvailableCapacity(listing, bookings, 0), nil
}

func (s *listingService) ListActive(ctx context.Context, page, pageSize int32) ([]domain.Listing, int32, error) {
	return s.listingRepo.ListActive(ctx, page, pageSize)
}

func (s *listingService) ListMine(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Listing, int32, error) {
	return s.listingRepo.ListByTraveler(ctx, travelerID, status, page, pageSize)
}

func (s *listingService) ownedListing(ctx context.Context, travelerID, listingID int32) (*domain.Listing, error) {
	if travelerID == 0 {
		return nil, domain.E(domain.ErrUnauthenticated, "authentication required")
	}
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.TravelerID != travelerID {
		return nil, domain.E(domain.ErrUnauthorized, "listing belongs to another traveler")
	}
	return listing, nil
}
