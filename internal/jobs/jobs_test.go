package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"sendbox-backend/internal/config"
	"sendbox-backend/internal/domain"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *mockBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookingRepo) Delete(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockBookingRepo) ListByListing(ctx context.Context, listingID int32) ([]domain.Booking, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *mockBookingRepo) ListBySender(ctx context.Context, senderID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, senderID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *mockBookingRepo) ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, travelerID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *mockBookingRepo) CountPendingBySender(ctx context.Context, senderID int32) (int32, error) {
	args := m.Called(ctx, senderID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *mockBookingRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *mockBookingRepo) CreatePhoto(ctx context.Context, p *domain.BookingPhoto) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockBookingRepo) ListPhotos(ctx context.Context, bookingID int32) ([]domain.BookingPhoto, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BookingPhoto), args.Error(1)
}
func (m *mockBookingRepo) DeletePhotos(ctx context.Context, bookingID int32) error {
	return m.Called(ctx, bookingID).Error(0)
}

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockListingRepo) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *mockListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}
func (m *mockListingRepo) ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Listing, int32, error) {
	args := m.Called(ctx, travelerID, status, page, pageSize)
	return args.Get(0).([]domain.Listing), args.Get(1).(int32), args.Error(2)
}
func (m *mockListingRepo) ListActive(ctx context.Context, page, pageSize int32) ([]domain.Listing, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Listing), args.Get(1).(int32), args.Error(2)
}
func (m *mockListingRepo) ListDepartingBefore(ctx context.Context, cutoff time.Time, statuses []domain.ListingStatus) ([]domain.Listing, error) {
	args := m.Called(ctx, cutoff, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockProfileRepo) GetByID(ctx context.Context, id int32) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *mockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *mockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	return m.Called(ctx, id, userID).Error(0)
}

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) SendBookingRequestNotification(ctx context.Context, travelerEmail, senderName, route string) error {
	return m.Called(ctx, travelerEmail, senderName, route).Error(0)
}
func (m *mockEmailService) SendBookingAcceptedNotification(ctx context.Context, senderEmail, route string) error {
	return m.Called(ctx, senderEmail, route).Error(0)
}
func (m *mockEmailService) SendBookingCancelledNotification(ctx context.Context, email, counterpartyName, route, reason string) error {
	return m.Called(ctx, email, counterpartyName, route, reason).Error(0)
}
func (m *mockEmailService) SendPaymentReceivedNotification(ctx context.Context, travelerEmail, route string, amount float64) error {
	return m.Called(ctx, travelerEmail, route, amount).Error(0)
}
func (m *mockEmailService) SendPackageDepositedNotification(ctx context.Context, email, route string) error {
	return m.Called(ctx, email, route).Error(0)
}
func (m *mockEmailService) SendPackageDeliveredNotification(ctx context.Context, email, route string) error {
	return m.Called(ctx, email, route).Error(0)
}
func (m *mockEmailService) SendReceiptConfirmedNotification(ctx context.Context, travelerEmail, route string, payout float64) error {
	return m.Called(ctx, travelerEmail, route, payout).Error(0)
}
func (m *mockEmailService) SendDepartureReminder(ctx context.Context, travelerEmail, route string, departure string) error {
	return m.Called(ctx, travelerEmail, route, departure).Error(0)
}

type jobFixture struct {
	bookingRepo *mockBookingRepo
	listingRepo *mockListingRepo
	profileRepo *mockProfileRepo
	noteRepo    *mockNotificationRepo
	email       *mockEmailService
	runner      *JobRunner
}

func newJobFixture(cfg *config.Config) *jobFixture {
	f := &jobFixture{
		bookingRepo: new(mockBookingRepo),
		listingRepo: new(mockListingRepo),
		profileRepo: new(mockProfileRepo),
		noteRepo:    new(mockNotificationRepo),
		email:       new(mockEmailService),
	}
	f.runner = NewJobRunner(f.bookingRepo, f.listingRepo, f.profileRepo, f.noteRepo, f.email, cfg)
	return f
}

func jobConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Features.PendingExpiryDays = 7
	return cfg
}

func TestExpireStalePendingBookings(t *testing.T) {
	t.Run("Expires And Notifies The Sender", func(t *testing.T) {
		f := newJobFixture(jobConfig())

		stale := []domain.Booking{
			{ID: 100, ListingID: 10, SenderID: 1, TravelerID: 2, Status: domain.BookingStatusPending},
			{ID: 101, ListingID: 11, SenderID: 3, TravelerID: 2, Status: domain.BookingStatusPending},
		}
		f.bookingRepo.On("ListPendingCreatedBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
			// cutoff sits 7 days back
			return time.Since(cutoff) > 6*24*time.Hour && time.Since(cutoff) < 8*24*time.Hour
		})).Return(stale, nil)
		f.bookingRepo.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusCancelled &&
				b.CancelReason == "booking request expired without a response" &&
				b.RefusedAt != nil && b.CancelledAt != nil && b.CancelledBy == nil
		})).Return(nil).Twice()
		f.noteRepo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Title == "Booking request expired" && (n.UserID == 1 || n.UserID == 3)
		})).Return(nil).Twice()

		f.runner.ExpireStalePendingBookings()

		f.bookingRepo.AssertExpectations(t)
		f.noteRepo.AssertExpectations(t)
	})

	t.Run("Update Failure Skips Notification", func(t *testing.T) {
		f := newJobFixture(jobConfig())

		stale := []domain.Booking{{ID: 100, ListingID: 10, SenderID: 1, Status: domain.BookingStatusPending}}
		f.bookingRepo.On("ListPendingCreatedBefore", mock.Anything, mock.Anything).Return(stale, nil)
		f.bookingRepo.On("Update", mock.Anything, mock.Anything).Return(errors.New("db down"))

		f.runner.ExpireStalePendingBookings()

		f.noteRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("List Failure Is Logged Not Fatal", func(t *testing.T) {
		f := newJobFixture(jobConfig())

		f.bookingRepo.On("ListPendingCreatedBefore", mock.Anything, mock.Anything).
			Return(nil, errors.New("db down"))

		f.runner.ExpireStalePendingBookings()

		f.bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCompleteFinishedListings(t *testing.T) {
	t.Run("Departed Listings Become Completed", func(t *testing.T) {
		f := newJobFixture(jobConfig())

		departed := []domain.Listing{
			{ID: 10, TravelerID: 2, Status: domain.ListingStatusActive},
			{ID: 11, TravelerID: 2, Status: domain.ListingStatusFullyBooked},
		}
		f.listingRepo.On("ListDepartingBefore", mock.Anything, mock.Anything,
			[]domain.ListingStatus{domain.ListingStatusActive, domain.ListingStatusPartiallyBooked, domain.ListingStatusFullyBooked}).
			Return(departed, nil)
		f.listingRepo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.Status == domain.ListingStatusCompleted
		})).Return(nil).Twice()

		f.runner.CompleteFinishedListings()

		f.listingRepo.AssertExpectations(t)
	})
}

func TestSendDepartureReminders(t *testing.T) {
	t.Run("Reminds Travelers Departing Within A Day", func(t *testing.T) {
		f := newJobFixture(jobConfig())

		departure := time.Now().Add(12 * time.Hour)
		upcoming := []domain.Listing{{
			ID: 10, TravelerID: 2, Status: domain.ListingStatusActive,
			DepartureCity: "Paris", ArrivalCity: "Dakar", DepartureDate: departure,
		}}
		f.listingRepo.On("ListDepartingBefore", mock.Anything, mock.Anything, mock.Anything).
			Return(upcoming, nil)
		f.profileRepo.On("GetByID", mock.Anything, int32(2)).
			Return(&domain.Profile{ID: 2, Email: "traveler@test.com"}, nil)
		f.email.On("SendDepartureReminder", mock.Anything, "traveler@test.com",
			"Paris to Dakar", departure.Format("2006-01-02")).Return(nil)

		f.runner.SendDepartureReminders()

		f.email.AssertExpectations(t)
	})

	t.Run("Skips Already Departed Trips", func(t *testing.T) {
		f := newJobFixture(jobConfig())

		past := []domain.Listing{{
			ID: 10, TravelerID: 2, Status: domain.ListingStatusActive,
			DepartureDate: time.Now().Add(-48 * time.Hour),
		}}
		f.listingRepo.On("ListDepartingBefore", mock.Anything, mock.Anything, mock.Anything).
			Return(past, nil)

		f.runner.SendDepartureReminders()

		f.email.AssertNotCalled(t, "SendDepartureReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.profileRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Email Failure Does Not Stop The Run", func(t *testing.T) {
		f := newJobFixture(jobConfig())

		departure := time.Now().Add(6 * time.Hour)
		upcoming := []domain.Listing{
			{ID: 10, TravelerID: 2, Status: domain.ListingStatusActive, DepartureCity: "Paris", ArrivalCity: "Dakar", DepartureDate: departure},
			{ID: 11, TravelerID: 3, Status: domain.ListingStatusActive, DepartureCity: "Lyon", ArrivalCity: "Abidjan", DepartureDate: departure},
		}
		f.listingRepo.On("ListDepartingBefore", mock.Anything, mock.Anything, mock.Anything).
			Return(upcoming, nil)
		f.profileRepo.On("GetByID", mock.Anything, int32(2)).
			Return(&domain.Profile{ID: 2, Email: "a@test.com"}, nil)
		f.profileRepo.On("GetByID", mock.Anything, int32(3)).
			Return(&domain.Profile{ID: 3, Email: "b@test.com"}, nil)
		f.email.On("SendDepartureReminder", mock.Anything, "a@test.com", mock.Anything, mock.Anything).
			Return(errors.New("smtp down"))
		f.email.On("SendDepartureReminder", mock.Anything, "b@test.com", mock.Anything, mock.Anything).
			Return(nil)

		f.runner.SendDepartureReminders()

		f.email.AssertExpectations(t)
	})
}
