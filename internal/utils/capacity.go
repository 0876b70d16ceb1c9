package utils

import (
	"sendbox-backend/internal/domain"
)

// ReservedWeight sums the requested weight of sibling bookings in a
// capacity-consuming status (accepted, paid, in_transit, delivered).
// Cancelled and still-pending bookings never reserve capacity.
// excludeBookingID drops one booking from the sum; Accept uses it so a
// booking's own weight is not counted against itself when re-checked.
func ReservedWeight(bookings []domain.Booking, excludeBookingID int32) float64 {
	var reserved float64
	for _, b := range bookings {
		if b.ID == excludeBookingID {
			continue
		}
		if b.Status.CapacityConsuming() {
			reserved += b.WeightKg
		}
	}
	return reserved
}

// AvailableCapacity derives the remaining bookable weight of a listing
// from its sibling bookings. Never negative.
func AvailableCapacity(listing *domain.Listing, bookings []domain.Booking, excludeBookingID int32) float64 {
	available := listing.CapacityKg - ReservedWeight(bookings, excludeBookingID)
	if available < 0 {
		return 0
	}
	return available
}

// CapacityAdmits reports whether a requested weight fits in the remaining
// capacity. Equality is allowed: requesting exactly the remainder succeeds.
func CapacityAdmits(available, requestedKg float64) bool {
	return requestedKg <= available
}
