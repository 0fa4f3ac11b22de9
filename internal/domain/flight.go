package domain

import "time"

// Flight is a locally tracked flight leg a user saved against a trip.
// Provider-derived fields are copied from the selected offer at creation
// time and never refreshed afterwards.
type Flight struct {
	ID            string     `json:"id"`
	TripID        string     `json:"trip_id"`
	Owner         string     `json:"owner"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureDate time.Time  `json:"departure_date"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	Airline       string     `json:"airline"`
	FlightNumber  string     `json:"flight_number"`
	PriceAmount   string     `json:"price_amount"`
	PriceCurrency string     `json:"price_currency"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
