package jobs

import (
	"context"
	"fmt"
	"time"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/logger"
)

const expiredBookingReason = "booking request expired without a response"

// ExpireStalePendingBookings cancels booking requests that sat in
// pending longer than the configured expiry window. Pending bookings
// hold no capacity, so the listing needs no adjustment.
func (jr *JobRunner) ExpireStalePendingBookings() {
	jr.runWithRecovery("ExpireStalePendingBookings", func() {
		ctx := context.Background()

		days := jr.config.Features.PendingExpiryDays
		if days <= 0 {
			days = 7
		}
		cutoff := time.Now().AddDate(0, 0, -days)

		stale, err := jr.bookingRepo.ListPendingCreatedBefore(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale pending bookings", "error", err)
			return
		}

		count := 0
		for i := range stale {
			booking := &stale[i]
			now := time.Now()
			booking.Status = domain.BookingStatusCancelled
			booking.CancelReason = expiredBookingReason
			booking.RefusedAt = &now
			booking.CancelledAt = &now
			booking.CancelledBy = nil

			if err := jr.bookingRepo.Update(ctx, booking); err != nil {
				logger.Error("Failed to expire booking", "booking_id", booking.ID, "error", err)
				continue
			}

			jr.notifyUser(ctx, booking.SenderID, "Booking request expired",
				"Your booking request received no response and was cancelled.", booking)
			count++
		}

		logger.Info("Expired stale pending bookings", "count", count)
	})
}

// CompleteFinishedListings closes listings whose trip has departed.
// Only bookable or fully booked listings transition; drafts and
// cancelled listings are left alone.
func (jr *JobRunner) CompleteFinishedListings() {
	jr.runWithRecovery("CompleteFinishedListings", func() {
		ctx := context.Background()

		statuses := []domain.ListingStatus{
			domain.ListingStatusActive,
			domain.ListingStatusPartiallyBooked,
			domain.ListingStatusFullyBooked,
		}
		finished, err := jr.listingRepo.ListDepartingBefore(ctx, time.Now(), statuses)
		if err != nil {
			logger.Error("Failed to list finished listings", "error", err)
			return
		}

		count := 0
		for i := range finished {
			listing := &finished[i]
			listing.Status = domain.ListingStatusCompleted
			if err := jr.listingRepo.Update(ctx, listing); err != nil {
				logger.Error("Failed to complete listing", "listing_id", listing.ID, "error", err)
				continue
			}
			count++
		}

		logger.Info("Completed finished listings", "count", count)
	})
}

// SendDepartureReminders emails travelers whose trip departs within the
// next 24 hours.
func (jr *JobRunner) SendDepartureReminders() {
	jr.runWithRecovery("SendDepartureReminders", func() {
		ctx := context.Background()

		now := time.Now()
		cutoff := now.Add(24 * time.Hour)
		statuses := []domain.ListingStatus{
			domain.ListingStatusActive,
			domain.ListingStatusPartiallyBooked,
			domain.ListingStatusFullyBooked,
		}
		upcoming, err := jr.listingRepo.ListDepartingBefore(ctx, cutoff, statuses)
		if err != nil {
			logger.Error("Failed to list upcoming listings", "error", err)
			return
		}

		count := 0
		for i := range upcoming {
			listing := &upcoming[i]
			// ListDepartingBefore also returns already-departed trips.
			if listing.DepartureDate.Before(now.Truncate(24 * time.Hour)) {
				continue
			}

			traveler, err := jr.profileRepo.GetByID(ctx, listing.TravelerID)
			if err != nil {
				logger.Error("Failed to load traveler for reminder", "listing_id", listing.ID, "error", err)
				continue
			}

			route := fmt.Sprintf("%s to %s", listing.DepartureCity, listing.ArrivalCity)
			departure := listing.DepartureDate.Format("2006-01-02")
			if err := jr.email.SendDepartureReminder(ctx, traveler.Email, route, departure); err != nil {
				logger.SideEffectFailed("email", err, "listing_id", listing.ID)
				continue
			}
			count++
		}

		logger.Info("Sent departure reminders", "count", count)
	})
}

func (jr *JobRunner) notifyUser(ctx context.Context, userID int32, title, message string, booking *domain.Booking) {
	note := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"booking_id": fmt.Sprintf("%d", booking.ID),
			"listing_id": fmt.Sprintf("%d", booking.ListingID),
		},
	}
	if err := jr.noteRepo.Create(ctx, note); err != nil {
		logger.SideEffectFailed("notification", err, "booking_id", booking.ID, "user_id", userID)
	}
}
