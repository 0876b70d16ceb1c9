package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, booking_id, user_id, amount, currency, type, status,
	commission_amount, protection_amount, reference, created_on`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(
		&t.ID, &t.BookingID, &t.UserID, &t.Amount, &t.Currency, &t.Type, &t.Status,
		&t.CommissionAmount, &t.ProtectionAmount, &t.Reference, &t.CreatedOn,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (booking_id, user_id, amount, currency, type, status,
	          commission_amount, protection_amount, reference, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		t.BookingID, t.UserID, t.Amount, t.Currency, t.Type, t.Status,
		t.CommissionAmount, t.ProtectionAmount, t.Reference, time.Now(),
	).Scan(&t.ID)
}

func (r *transactionRepository) GetByID(ctx context.Context, id int32) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.E(domain.ErrNotFound, "transaction not found")
	}
	return t, err
}

func (r *transactionRepository) ListByBooking(ctx context.Context, bookingID int32) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE booking_id = $1 ORDER BY created_on`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *t)
	}
	return txs, rows.Err()
}

func (r *transactionRepository) HasCompletedPayment(ctx context.Context, bookingID int32) (bool, error) {
	var count int32
	query := `SELECT count(*) FROM transactions WHERE booking_id = $1 AND type = $2 AND status = $3`
	err := r.db.QueryRowContext(ctx, query, bookingID, domain.TransactionTypePayment, domain.TransactionStatusCompleted).Scan(&count)
	return count > 0, err
}
