package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, listing_id, sender_id, traveler_id, weight_kg, description, declared_value, insurance_opted,
	proof_token, status, price_per_kg, transport_price, commission, insurance_premium, insurance_coverage, total_price,
	payment_intent_id, accepted_at, paid_at, deposited_at, delivered_at, refused_at, cancelled_at, delivery_confirmed_at,
	cancel_reason, cancelled_by, deposit_photo_path, deposit_signature_path, deposit_location,
	delivery_photo_path, delivery_signature_path, delivery_location, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(
		&b.ID, &b.ListingID, &b.SenderID, &b.TravelerID, &b.WeightKg, &b.Description, &b.DeclaredValue, &b.InsuranceOpted,
		&b.ProofToken, &b.Status, &b.PricePerKg, &b.TransportPrice, &b.Commission, &b.InsurancePremium, &b.InsuranceCoverage, &b.TotalPrice,
		&b.PaymentIntentID, &b.AcceptedAt, &b.PaidAt, &b.DepositedAt, &b.DeliveredAt, &b.RefusedAt, &b.CancelledAt, &b.DeliveryConfirmedAt,
		&b.CancelReason, &b.CancelledBy, &b.DepositPhotoPath, &b.DepositSignaturePath, &b.DepositLocation,
		&b.DeliveryPhotoPath, &b.DeliverySignaturePath, &b.DeliveryLocation, &b.CreatedOn, &b.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (listing_id, sender_id, traveler_id, weight_kg, description, declared_value, insurance_opted,
	          proof_token, status, price_per_kg, transport_price, commission, insurance_premium, insurance_coverage, total_price,
	          created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		b.ListingID, b.SenderID, b.TravelerID, b.WeightKg, b.Description, b.DeclaredValue, b.InsuranceOpted,
		b.ProofToken, b.Status, b.PricePerKg, b.TransportPrice, b.Commission, b.InsurancePremium, b.InsuranceCoverage, b.TotalPrice,
		now, now,
	).Scan(&b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int32) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.ErrNotFound, "booking not found")
	}
	return b, err
}

func (r *bookingRepository) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_intent_id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, intentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.ErrNotFound, "booking not found")
	}
	return b, err
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1, payment_intent_id=$2,
	          accepted_at=$3, paid_at=$4, deposited_at=$5, delivered_at=$6, refused_at=$7, cancelled_at=$8, delivery_confirmed_at=$9,
	          cancel_reason=$10, cancelled_by=$11,
	          deposit_photo_path=$12, deposit_signature_path=$13, deposit_location=$14,
	          delivery_photo_path=$15, delivery_signature_path=$16, delivery_location=$17, updated_on=$18
	          WHERE id=$19`
	_, err := r.db.ExecContext(ctx, query,
		b.Status, b.PaymentIntentID,
		b.AcceptedAt, b.PaidAt, b.DepositedAt, b.DeliveredAt, b.RefusedAt, b.CancelledAt, b.DeliveryConfirmedAt,
		b.CancelReason, b.CancelledBy,
		b.DepositPhotoPath, b.DepositSignaturePath, b.DepositLocation,
		b.DeliveryPhotoPath, b.DeliverySignaturePath, b.DeliveryLocation, time.Now(),
		b.ID,
	)
	return err
}

func (r *bookingRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return err
}

func (r *bookingRepository) ListByListing(ctx context.Context, listingID int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE listing_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) ListBySender(ctx context.Context, senderID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "sender_id", senderID, status, page, pageSize)
}

func (r *bookingRepository) ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "traveler_id", travelerID, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, party string, partyID int32, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + party + ` = $1`

	args := []interface{}{partyID}
	argIdx := 2
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, count, rows.Err()
}

func (r *bookingRepository) CountPendingBySender(ctx context.Context, senderID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM bookings WHERE sender_id = $1 AND status = $2`
	err := r.db.QueryRowContext(ctx, query, senderID, domain.BookingStatusPending).Scan(&count)
	return count, err
}

func (r *bookingRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND created_on < $2`
	rows, err := r.db.QueryContext(ctx, query, domain.BookingStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) CreatePhoto(ctx context.Context, p *domain.BookingPhoto) error {
	query := `INSERT INTO booking_photos (booking_id, file_path, mime_type, file_size, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.BookingID, p.FilePath, p.MimeType, p.FileSize, time.Now()).Scan(&p.ID)
}

func (r *bookingRepository) ListPhotos(ctx context.Context, bookingID int32) ([]domain.BookingPhoto, error) {
	query := `SELECT id, booking_id, file_path, mime_type, file_size, created_on FROM booking_photos WHERE booking_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.BookingPhoto
	for rows.Next() {
		var p domain.BookingPhoto
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FilePath, &p.MimeType, &p.FileSize, &p.CreatedOn); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *bookingRepository) DeletePhotos(ctx context.Context, bookingID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM booking_photos WHERE booking_id = $1`, bookingID)
	return err
}
