package postgres

import (
	"database/sql"

	"sendbox-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.ListingRepository
	repository.BookingRepository
	repository.TransactionRepository
	repository.ProfileRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		ListingRepository:      NewListingRepository(db),
		BookingRepository:      NewBookingRepository(db),
		TransactionRepository:  NewTransactionRepository(db),
		ProfileRepository:      NewProfileRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
