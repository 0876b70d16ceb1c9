package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/repository"

	"github.com/lib/pq"
)

type listingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &listingRepository{db: db}
}

const listingColumns = `id, traveler_id, departure_city, departure_country, arrival_city, arrival_country,
	departure_date, arrival_date, capacity_kg, price_per_kg, status, created_on, updated_on`

func scanListing(row rowScanner) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(
		&l.ID, &l.TravelerID, &l.DepartureCity, &l.DepartureCountry, &l.ArrivalCity, &l.ArrivalCountry,
		&l.DepartureDate, &l.ArrivalDate, &l.CapacityKg, &l.PricePerKg, &l.Status, &l.CreatedOn, &l.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *listingRepository) Create(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (traveler_id, departure_city, departure_country, arrival_city, arrival_country,
	          departure_date, arrival_date, capacity_kg, price_per_kg, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		l.TravelerID, l.DepartureCity, l.DepartureCountry, l.ArrivalCity, l.ArrivalCountry,
		l.DepartureDate, l.ArrivalDate, l.CapacityKg, l.PricePerKg, l.Status, now, now,
	).Scan(&l.ID)
}

func (r *listingRepository) GetByID(ctx context.Context, id int32) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.ErrNotFound, "listing not found")
	}
	return l, err
}

func (r *listingRepository) Update(ctx context.Context, l *domain.Listing) error {
	query := `UPDATE listings SET departure_city=$1, departure_country=$2, arrival_city=$3, arrival_country=$4,
	          departure_date=$5, arrival_date=$6, capacity_kg=$7, price_per_kg=$8, status=$9, updated_on=$10
	          WHERE id=$11`
	_, err := r.db.ExecContext(ctx, query,
		l.DepartureCity, l.DepartureCountry, l.ArrivalCity, l.ArrivalCountry,
		l.DepartureDate, l.ArrivalDate, l.CapacityKg, l.PricePerKg, l.Status, time.Now(), l.ID,
	)
	return err
}

func (r *listingRepository) ListByTraveler(ctx context.Context, travelerID int32, status string, page, pageSize int32) ([]domain.Listing, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + listingColumns + ` FROM listings WHERE traveler_id = $1`

	args := []interface{}{travelerID}
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

	query += fmt.Sprintf(" ORDER BY departure_date DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	listings, err := r.queryListings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return listings, count, nil
}

func (r *listingRepository) ListActive(ctx context.Context, page, pageSize int32) ([]domain.Listing, int32, error) {
	offset := (page - 1) * pageSize
	base := `FROM listings WHERE status = ANY($1)`
	statuses := pq.Array([]string{string(domain.ListingStatusActive), string(domain.ListingStatusPartiallyBooked)})

	var count int32
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) "+base, statuses).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + listingColumns + ` ` + base + ` ORDER BY departure_date LIMIT $2 OFFSET $3`
	listings, err := r.queryListings(ctx, query, statuses, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return listings, count, nil
}

func (r *listingRepository) ListDepartingBefore(ctx context.Context, cutoff time.Time, statuses []domain.ListingStatus) ([]domain.Listing, error) {
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}
	query := `SELECT ` + listingColumns + ` FROM listings WHERE departure_date < $1 AND status = ANY($2)`
	return r.queryListings(ctx, query, cutoff, pq.Array(ss))
}

func (r *listingRepository) queryListings(ctx context.Context, query string, args ...interface{}) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}
