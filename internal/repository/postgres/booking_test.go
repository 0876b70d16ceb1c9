package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"sendbox-backend/internal/domain"
)

var bookingCols = []string{
	"id", "listing_id", "sender_id", "traveler_id", "weight_kg", "description", "declared_value", "insurance_opted",
	"proof_token", "status", "price_per_kg", "transport_price", "commission", "insurance_premium", "insurance_coverage", "total_price",
	"payment_intent_id", "accepted_at", "paid_at", "deposited_at", "delivered_at", "refused_at", "cancelled_at", "delivery_confirmed_at",
	"cancel_reason", "cancelled_by", "deposit_photo_path", "deposit_signature_path", "deposit_location",
	"delivery_photo_path", "delivery_signature_path", "delivery_location", "created_on", "updated_on",
}

func bookingRow(id int32, status domain.BookingStatus, weight float64) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, int32(10), int32(1), int32(2), weight, "A box of books and clothes", 200.0, false,
		"SENDBOX-DEADBEEF-CAFE", string(status), 5.0, weight * 5, weight * 5 * 0.12, nil, nil, weight * 5 * 1.12,
		"", nil, nil, nil, nil, nil, nil, nil,
		"", nil, "", "", "",
		"", "", "", now, now,
	}
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		booking := &domain.Booking{
			ListingID:      10,
			SenderID:       1,
			TravelerID:     2,
			WeightKg:       4,
			Description:    "A box of books and clothes",
			DeclaredValue:  200,
			ProofToken:     "SENDBOX-DEADBEEF-CAFE",
			Status:         domain.BookingStatusPending,
			PricePerKg:     5,
			TransportPrice: 20,
			Commission:     2.4,
			TotalPrice:     22.4,
		}

		mock.ExpectQuery("INSERT INTO bookings").
			WithArgs(booking.ListingID, booking.SenderID, booking.TravelerID, booking.WeightKg,
				booking.Description, booking.DeclaredValue, booking.InsuranceOpted,
				booking.ProofToken, booking.Status, booking.PricePerKg, booking.TransportPrice,
				booking.Commission, booking.InsurancePremium, booking.InsuranceCoverage, booking.TotalPrice,
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))

		err := repo.Create(ctx, booking)
		assert.NoError(t, err)
		assert.Equal(t, int32(100), booking.ID)
	})
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(bookingCols).AddRow(bookingRow(100, domain.BookingStatusPending, 4)...)

		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(int32(100)).
			WillReturnRows(rows)

		booking, err := repo.GetByID(ctx, 100)
		assert.NoError(t, err)
		assert.NotNil(t, booking)
		assert.Equal(t, int32(100), booking.ID)
		assert.Equal(t, domain.BookingStatusPending, booking.Status)
		assert.Equal(t, 4.0, booking.WeightKg)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(int32(999)).
			WillReturnRows(sqlmock.NewRows(bookingCols))

		booking, err := repo.GetByID(ctx, 999)
		assert.Error(t, err)
		assert.Nil(t, booking)
		assert.Equal(t, domain.ErrNotFound, domain.KindOf(err))
	})
}

func TestBookingRepository_GetByPaymentIntentID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(bookingCols).AddRow(bookingRow(100, domain.BookingStatusAccepted, 4)...)

		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE payment_intent_id = \\$1").
			WithArgs("pi_123").
			WillReturnRows(rows)

		booking, err := repo.GetByPaymentIntentID(ctx, "pi_123")
		assert.NoError(t, err)
		assert.Equal(t, int32(100), booking.ID)
	})
}

func TestBookingRepository_ListByListing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(bookingCols).
			AddRow(bookingRow(100, domain.BookingStatusAccepted, 4)...).
			AddRow(bookingRow(101, domain.BookingStatusPending, 3)...)

		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE listing_id = \\$1").
			WithArgs(int32(10)).
			WillReturnRows(rows)

		bookings, err := repo.ListByListing(ctx, 10)
		assert.NoError(t, err)
		assert.Len(t, bookings, 2)
		assert.Equal(t, domain.BookingStatusAccepted, bookings[0].Status)
	})
}

func TestBookingRepository_CountPendingBySender(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM bookings WHERE sender_id = \\$1 AND status = \\$2").
		WithArgs(int32(1), domain.BookingStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountPendingBySender(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int32(3), count)
}

func TestBookingRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	now := time.Now()
	booking := &domain.Booking{
		ID:         100,
		Status:     domain.BookingStatusAccepted,
		AcceptedAt: &now,
	}

	mock.ExpectExec("UPDATE bookings SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Update(ctx, booking)
	assert.NoError(t, err)
}
