package service

import "sendbox-backend/internal/domain"

// checkKyc gates an operation on the caller's identity-verification
// status. Returns nil when the profile is approved. Each non-approved
// sub-status gets its own user-facing message so the client can tell a
// never-started verification from one under review or one rejected.
func checkKyc(p *domain.Profile) *domain.Error {
	switch p.KycStatus {
	case domain.KycStatusApproved:
		return nil
	case domain.KycStatusPending:
		return domain.FieldError(domain.ErrKycRequired, "kyc", "identity verification is still under review")
	case domain.KycStatusRejected:
		e := domain.FieldError(domain.ErrKycRequired, "kyc", "identity verification was rejected")
		e.Details = p.KycRejectionReason
		return e
	default:
		return domain.FieldError(domain.ErrKycRequired, "kyc", "identity verification has not been completed")
	}
}
