package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/repository"
)

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `id, email, name, phone_number, avatar_url, kyc_status, kyc_rejection_reason,
	rating, completed_services, created_on, updated_on`

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.PhoneNumber, &p.AvatarURL, &p.KycStatus, &p.KycRejectionReason,
		&p.Rating, &p.CompletedServices, &p.CreatedOn, &p.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (email, name, phone_number, avatar_url, kyc_status, kyc_rejection_reason,
	          rating, completed_services, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		p.Email, p.Name, p.PhoneNumber, p.AvatarURL, p.KycStatus, p.KycRejectionReason,
		p.Rating, p.CompletedServices, now, now,
	).Scan(&p.ID)
}

func (r *profileRepository) GetByID(ctx context.Context, id int32) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.ErrNotFound, "profile not found")
	}
	return p, err
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.ErrNotFound, "profile not found")
	}
	return p, err
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles SET email=$1, name=$2, phone_number=$3, avatar_url=$4, kyc_status=$5,
	          kyc_rejection_reason=$6, rating=$7, completed_services=$8, updated_on=$9 WHERE id=$10`
	_, err := r.db.ExecContext(ctx, query,
		p.Email, p.Name, p.PhoneNumber, p.AvatarURL, p.KycStatus,
		p.KycRejectionReason, p.Rating, p.CompletedServices, time.Now(), p.ID,
	)
	return err
}
