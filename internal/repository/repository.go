package repository

import (
	"context"
	"time"

	"sendbox-backend/internal/domain"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id int32) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Listing, int32, error)
	ListActive(ctx context.Context, page, pageSize int32) ([]domain.Listing, int32, error)
	ListDepartingBefore(ctx context.Context, cutoff time.Time, statuses []domain.ListingStatus) ([]domain.Listing, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int32) error
	ListByListing(ctx context.Context, listingID int32) ([]domain.Booking, error)
	ListBySender(ctx context.Context, senderID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	CountPendingBySender(ctx context.Context, senderID int32) (int32, error)
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)

	// Package photos attached at booking creation
	CreatePhoto(ctx context.Context, photo *domain.BookingPhoto) error
	ListPhotos(ctx context.Context, bookingID int32) ([]domain.BookingPhoto, error)
	DeletePhotos(ctx context.Context, bookingID int32) error
}

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id int32) (*domain.Transaction, error)
	ListByBooking(ctx context.Context, bookingID int32) ([]domain.Transaction, error)
	HasCompletedPayment(ctx context.Context, bookingID int32) (bool, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id int32) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
