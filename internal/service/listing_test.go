package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sendbox-backend/internal/domain"
)

func newListingService() (*MockListingRepo, *MockBookingRepo, *MockProfileRepo, ListingService) {
	listingRepo := new(MockListingRepo)
	bookingRepo := new(MockBookingRepo)
	profileRepo := new(MockProfileRepo)
	svc := NewListingService(listingRepo, bookingRepo, profileRepo, true)
	return listingRepo, bookingRepo, profileRepo, svc
}

func TestListingService_Create(t *testing.T) {
	ctx := context.Background()
	travelerID := int32(2)

	input := CreateListingInput{
		DepartureCity:    "Paris",
		DepartureCountry: "France",
		ArrivalCity:      "Dakar",
		ArrivalCountry:   "Senegal",
		DepartureDate:    "2026-10-01",
		ArrivalDate:      "2026-10-02",
		CapacityKg:       20,
		PricePerKg:       5,
	}

	t.Run("Success Starts As Draft", func(t *testing.T) {
		listingRepo, _, profileRepo, svc := newListingService()
		profileRepo.On("GetByID", ctx, travelerID).Return(approvedProfile(travelerID), nil)
		listingRepo.On("Create", ctx, mock.AnythingOfType("*domain.Listing")).Return(nil)

		listing, err := svc.Create(ctx, travelerID, input)
		assert.NoError(t, err)
		assert.Equal(t, domain.ListingStatusDraft, listing.Status)
		assert.Equal(t, 20.0, listing.CapacityKg)
	})

	t.Run("Arrival Before Departure", func(t *testing.T) {
		_, _, profileRepo, svc := newListingService()
		profileRepo.On("GetByID", ctx, travelerID).Return(approvedProfile(travelerID), nil)

		in := input
		in.ArrivalDate = "2026-09-30"
		_, err := svc.Create(ctx, travelerID, in)
		assert.Error(t, err)
		de := err.(*domain.Error)
		assert.Equal(t, "arrival_date", de.Field)
	})

	t.Run("Zero Capacity", func(t *testing.T) {
		_, _, profileRepo, svc := newListingService()
		profileRepo.On("GetByID", ctx, travelerID).Return(approvedProfile(travelerID), nil)

		in := input
		in.CapacityKg = 0
		_, err := svc.Create(ctx, travelerID, in)
		assert.Error(t, err)
		assert.Equal(t, domain.ErrValidation, domain.KindOf(err))
	})
}

func TestListingService_Publish(t *testing.T) {
	ctx := context.Background()
	travelerID := int32(2)

	t.Run("Draft Becomes Active", func(t *testing.T) {
		listingRepo, _, _, svc := newListingService()
		listing := activeListing(10, travelerID)
		listing.Status = domain.ListingStatusDraft
		listingRepo.On("GetByID", ctx, int32(10)).Return(listing, nil)
		listingRepo.On("Update", ctx, listing).Return(nil)

		res, err := svc.Publish(ctx, travelerID, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.ListingStatusActive, res.Status)
	})

	t.Run("Not Owner", func(t *testing.T) {
		listingRepo, _, _, svc := newListingService()
		listing := activeListing(10, travelerID)
		listingRepo.On("GetByID", ctx, int32(10)).Return(listing, nil)

		_, err := svc.Publish(ctx, 99, 10)
		assert.Error(t, err)
		assert.Equal(t, domain.ErrUnauthorized, domain.KindOf(err))
	})

	t.Run("Already Active", func(t *testing.T) {
		listingRepo, _, _, svc := newListingService()
		listingRepo.On("GetByID", ctx, int32(10)).Return(activeListing(10, travelerID), nil)

		_, err := svc.Publish(ctx, travelerID, 10)
		assert.Error(t, err)
		assert.Equal(t, domain.ErrIllegalTransition, domain.KindOf(err))
	})
}

func TestListingService_Cancel(t *testing.T) {
	ctx := context.Background()
	travelerID := int32(2)

	t.Run("Blocked By Active Bookings", func(t *testing.T) {
		listingRepo, bookingRepo, _, svc := newListingService()
		listingRepo.On("GetByID", ctx, int32(10)).Return(activeListing(10, travelerID), nil)
		bookingRepo.On("ListByListing", ctx, int32(10)).Return([]domain.Booking{
			{ID: 1, Status: domain.BookingStatusPaid, WeightKg: 3},
		}, nil)

		_, err := svc.Cancel(ctx, travelerID, 10)
		assert.Error(t, err)
		assert.Equal(t, domain.ErrIllegalTransition, domain.KindOf(err))
	})

	t.Run("Pending Bookings Do Not Block", func(t *testing.T) {
		listingRepo, bookingRepo, _, svc := newListingService()
		listing := activeListing(10, travelerID)
		listingRepo.On("GetByID", ctx, int32(10)).Return(listing, nil)
		bookingRepo.On("ListByListing", ctx, int32(10)).Return([]domain.Booking{
			{ID: 1, Status: domain.BookingStatusPending, WeightKg: 3},
		}, nil)
		listingRepo.On("Update", ctx, listing).Return(nil)

		res, err := svc.Cancel(ctx, travelerID, 10)
		assert.NoError(t, err)
		assert.Equal(t, domain.ListingStatusCancelled, res.Status)
	})
}

func TestListingService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Derives Available Capacity", func(t *testing.T) {
		listingRepo, bookingRepo, _, svc := newListingService()
		listingRepo.On("GetByID", ctx, int32(10)).Return(activeListing(10, 2), nil)
		bookingRepo.On("ListByListing", ctx, int32(10)).Return([]domain.Booking{
			{ID: 1, Status: domain.BookingStatusAccepted, WeightKg: 3},
			{ID: 2, Status: domain.BookingStatusPending, WeightKg: 4},
		}, nil)

		_, available, err := svc.Get(ctx, 10)
		assert.NoError(t, err)
		assert.InDelta(t, 7.0, available, 1e-9)
	})
}
