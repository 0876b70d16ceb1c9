package service

import (
	"context"
	"strings"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/repository"
)

type profileService struct {
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) Get(ctx context.Context, userID int32) (*domain.Profile, error) {
	if userID == 0 {
		return nil, domain.E(domain.ErrUnauthenticated, "authentication required")
	}
	return s.profileRepo.GetByID(ctx, userID)
}

// SubmitKyc moves an incomplete or rejected profile into review.
func (s *profileService) SubmitKyc(ctx context.Context, userID int32) (*domain.Profile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch profile.KycStatus {
	case domain.KycStatusApproved:
		return nil, domain.E(domain.ErrIllegalTransition, "identity is already verified")
	case domain.KycStatusPending:
		return nil, domain.E(domain.ErrIllegalTransition, "identity verification is already under review")
	}

	profile.KycStatus = domain.KycStatusPending
	profile.KycRejectionReason = ""
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ReviewKyc records the verification decision for a profile under review.
// Caller authorization (back-office role) is enforced upstream.
func (s *profileService) ReviewKyc(ctx context.Context, userID int32, approve bool, reason string) (*domain.Profile, error) {
	profile, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.KycStatus != domain.KycStatusPending {
		return nil, domain.E(domain.ErrIllegalTransition, "profile is not under review")
	}

	if approve {
		profile.KycStatus = domain.KycStatusApproved
		profile.KycRejectionReason = ""
	} else {
		trimmed := strings.TrimSpace(reason)
		if trimmed == "" {
			return nil, domain.FieldError(domain.ErrValidation, "reason", "a rejection reason is required")
		}
		profile.KycStatus = domain.KycStatusRejected
		profile.KycRejectionReason = trimmed
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
