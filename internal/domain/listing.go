package domain

import "time"

type ListingStatus string

const (
	ListingStatusDraft           ListingStatus = "draft"
	ListingStatusActive          ListingStatus = "active"
	ListingStatusPartiallyBooked ListingStatus = "partially_booked"
	ListingStatusFullyBooked     ListingStatus = "fully_booked"
	ListingStatusCompleted       ListingStatus = "completed"
	ListingStatusCancelled       ListingStatus = "cancelled"
	ListingStatusArchived        ListingStatus = "archived"
)

// Bookable reports whether the listing accepts new booking requests.
// Partially booked listings still have capacity left by definition.
func (s ListingStatus) Bookable() bool {
	return s == ListingStatusActive || s == ListingStatusPartiallyBooked
}

// Listing is a traveler's offer of spare luggage capacity on a trip.
// Available capacity is always derived by summing sibling bookings,
// never stored as a running counter.
type Listing struct {
	ID         int32 `json:"id"`
	TravelerID int32 `json:"traveler_id"`

	DepartureCity    string    `json:"departure_city"`
	DepartureCountry string    `json:"departure_country"`
	ArrivalCity      string    `json:"arrival_city"`
	ArrivalCountry   string    `json:"arrival_country"`
	DepartureDate    time.Time `json:"departure_date"`
	ArrivalDate      time.Time `json:"arrival_date"`

	CapacityKg float64 `json:"capacity_kg"`
	PricePerKg float64 `json:"price_per_kg"`

	Status    ListingStatus `json:"status"`
	CreatedOn time.Time     `json:"created_on"`
	UpdatedOn time.Time     `json:"updated_on"`
}
