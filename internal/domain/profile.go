package domain

import "time"

type KycStatus string

const (
	KycStatusIncomplete KycStatus = "incomplete"
	KycStatusPending    KycStatus = "pending"
	KycStatusApproved   KycStatus = "approved"
	KycStatusRejected   KycStatus = "rejected"
)

type Profile struct {
	ID          int32  `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	AvatarURL   string `json:"avatar_url"`

	KycStatus          KycStatus `json:"kyc_status"`
	KycRejectionReason string    `json:"kyc_rejection_reason,omitempty"`

	Rating            float64 `json:"rating"`
	CompletedServices int32   `json:"completed_services"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
