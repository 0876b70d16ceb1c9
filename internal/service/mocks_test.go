package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"sendbox-backend/internal/domain"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
func (m *MockBookingRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBookingRepo) ListByListing(ctx context.Context, listingID int32) ([]domain.Booking, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListBySender(ctx context.Context, senderID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, senderID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, travelerID, status, page, pageSize)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) CountPendingBySender(ctx context.Context, senderID int32) (int32, error) {
	args := m.Called(ctx, senderID)
	return args.Get(0).(int32), args.Error(1)
}
func (m *MockBookingRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) CreatePhoto(ctx context.Context, photo *domain.BookingPhoto) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}
func (m *MockBookingRepo) ListPhotos(ctx context.Context, bookingID int32) ([]domain.BookingPhoto, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.BookingPhoto), args.Error(1)
}
func (m *MockBookingRepo) DeletePhotos(ctx context.Context, bookingID int32) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

// MockListingRepo
type MockListingRepo struct {
	mock.Mock
}

func (m *MockListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepo) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepo) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepo) ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Listing, int32, error) {
	args := m.Called(ctx, travelerID, status, page, pageSize)
	return args.Get(0).([]domain.Listing), args.Get(1).(int32), args.Error(2)
}
func (m *MockListingRepo) ListActive(ctx context.Context, page, pageSize int32) ([]domain.Listing, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Listing), args.Get(1).(int32), args.Error(2)
}
func (m *MockListingRepo) ListDepartingBefore(ctx context.Context, cutoff time.Time, statuses []domain.ListingStatus) ([]domain.Listing, error) {
	args := m.Called(ctx, cutoff, statuses)
	return args.Get(0).([]domain.Listing), args.Error(1)
}

// MockProfileRepo
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}
func (m *MockProfileRepo) GetByID(ctx context.Context, id int32) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockProfileRepo) Update(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockTransactionRepo
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx *domain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}
func (m *MockTransactionRepo) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) ListByBooking(ctx context.Context, bookingID int32) ([]domain.Transaction, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Transaction), args.Error(1)
}
func (m *MockTransactionRepo) HasCompletedPayment(ctx context.Context, bookingID int32) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingRequestNotification(ctx context.Context, travelerEmail, senderName, route string) error {
	args := m.Called(ctx, travelerEmail, senderName, route)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingAcceptedNotification(ctx context.Context, senderEmail, route string) error {
	args := m.Called(ctx, senderEmail, route)
	return args.Error(0)
}
func (m *MockEmailService) SendBookingCancelledNotification(ctx context.Context, email, counterpartyName, route, reason string) error {
	args := m.Called(ctx, email, counterpartyName, route, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentReceivedNotification(ctx context.Context, travelerEmail, route string, amount float64) error {
	args := m.Called(ctx, travelerEmail, route, amount)
	return args.Error(0)
}
func (m *MockEmailService) SendPackageDepositedNotification(ctx context.Context, email, route string) error {
	args := m.Called(ctx, email, route)
	return args.Error(0)
}
func (m *MockEmailService) SendPackageDeliveredNotification(ctx context.Context, email, route string) error {
	args := m.Called(ctx, email, route)
	return args.Error(0)
}
func (m *MockEmailService) SendReceiptConfirmedNotification(ctx context.Context, travelerEmail, route string, payout float64) error {
	args := m.Called(ctx, travelerEmail, route, payout)
	return args.Error(0)
}
func (m *MockEmailService) SendDepartureReminder(ctx context.Context, travelerEmail, route string, departure string) error {
	args := m.Called(ctx, travelerEmail, route, departure)
	return args.Error(0)
}

// MockDocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) GenerateBookingProof(ctx context.Context, bookingID int32) (string, error) {
	args := m.Called(ctx, bookingID)
	return args.String(0), args.Error(1)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key, contentType string, content io.Reader) (string, error) {
	args := m.Called(ctx, key, contentType, content)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) Open(key string) (io.ReadCloser, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
func (m *MockStorage) Exists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) Delete(ctx context.Context, keys ...string) error {
	callArgs := make([]interface{}, 0, len(keys)+1)
	callArgs = append(callArgs, ctx)
	for _, k := range keys {
		callArgs = append(callArgs, k)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

// MockPaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	args := m.Called(ctx, amount, currency, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PaymentIntent), args.Error(1)
}
