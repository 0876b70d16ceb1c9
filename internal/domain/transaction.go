package domain

import "time"

type TransactionType string

const (
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeCommission TransactionType = "commission"
	TransactionTypeInsurance  TransactionType = "insurance"
	TransactionTypePayout     TransactionType = "payout"
	TransactionTypeRefund     TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Transaction is a payment record tied to a booking. Reference carries the
// external payment authority's id, or a "sim_" id in simulated mode.
type Transaction struct {
	ID        int32             `json:"id"`
	BookingID int32             `json:"booking_id"`
	UserID    int32             `json:"user_id"` // payer
	Amount    float64           `json:"amount"`
	Currency  string            `json:"currency"`
	Type      TransactionType   `json:"type"`
	Status    TransactionStatus `json:"status"`

	CommissionAmount float64 `json:"commission_amount"`
	ProtectionAmount float64 `json:"protection_amount"`

	Reference string    `json:"reference"`
	CreatedOn time.Time `json:"created_on"`
}
