package domain

import (
	"time"

	"github.com/google/uuid"
)

// Passenger is one traveler on a flight. Flights aggregate passengers from
// separately uploaded documents, so each passenger keeps its own attachment path.
type Passenger struct {
	Name         string        `json:"name"`
	Type         PassengerType `json:"type"`
	TicketNumber string        `json:"ticket_number,omitempty"`
	PDFPath      string        `json:"pdf_path,omitempty"`
}

// FlightEndpoint describes one side of a flight segment.
type FlightEndpoint struct {
	Code     string `json:"code"`
	City     string `json:"city,omitempty"`
	Airport  string `json:"airport,omitempty"`
	Terminal string `json:"terminal,omitempty"`
}

// FlightRecord is a single flight segment attached to a trip.
// Several passengers extracted from different documents may share one record.
type FlightRecord struct {
	Date             string         `json:"date"` // ISO date (YYYY-MM-DD)
	FlightNumber     string         `json:"flight_number"`
	Airline          string         `json:"airline,omitempty"`
	Departure        FlightEndpoint `json:"departure"`
	Arrival          FlightEndpoint `json:"arrival"`
	DepartureTime    string         `json:"departure_time,omitempty"` // HH:MM
	ArrivalTime      string         `json:"arrival_time,omitempty"`   // HH:MM
	ArrivalNextDay   bool           `json:"arrival_next_day,omitempty"`
	Duration         string         `json:"duration,omitempty"`
	BookingReference string         `json:"booking_reference,omitempty"`
	TicketNumber     string         `json:"ticket_number,omitempty"`
	Seat             string         `json:"seat,omitempty"`
	Class            string         `json:"class,omitempty"`
	Passengers       []Passenger    `json:"passengers,omitempty"`
}

// HotelStamp is a date with an optional time-of-day, as printed on confirmations.
type HotelStamp struct {
	Date string `json:"date"` // ISO date (YYYY-MM-DD)
	Time string `json:"time,omitempty"`
}

// HotelAddress holds the address fields hotels typically print on confirmations.
type HotelAddress struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// HotelRecord is a hotel stay attached to a trip.
type HotelRecord struct {
	Name               string       `json:"name"`
	Address            HotelAddress `json:"address"`
	CheckIn            HotelStamp   `json:"check_in"`
	CheckOut           HotelStamp   `json:"check_out"`
	Nights             int          `json:"nights,omitempty"`
	ConfirmationNumber string       `json:"confirmation_number,omitempty"`
	GuestName          string       `json:"guest_name,omitempty"`
	TotalPrice         string       `json:"total_price,omitempty"`
	Currency           string       `json:"currency,omitempty"`
	CancellationPolicy string       `json:"cancellation_policy,omitempty"`
	Amenities          []string     `json:"amenities,omitempty"`
	PDFPath            string       `json:"pdf_path,omitempty"`
}

// BookingMeta is optional booking-level metadata returned by extraction
// (agency, total price across segments). Never persisted on its own.
type BookingMeta struct {
	Agency     string `json:"agency,omitempty"`
	TotalPrice string `json:"total_price,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

// ExtractionResult is the per-document structured guess from the extraction
// service. Transient: it lives only for the duration of one ingestion.
type ExtractionResult struct {
	Flights   []FlightRecord `json:"flights,omitempty"`
	Hotels    []HotelRecord  `json:"hotels,omitempty"`
	Passenger *Passenger     `json:"passenger,omitempty"`
	Booking   *BookingMeta   `json:"booking,omitempty"`
}

// Trip owns ordered flight and hotel lists (insertion order, not
// chronological) plus derived fields. StartDate/EndDate/Route must always
// equal DeriveTripState applied to the current lists; every mutation path
// re-derives them before saving.
type Trip struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	OwnerEmail string         `db:"owner_email" json:"owner_email,omitempty"`
	Flights    []FlightRecord `db:"-" json:"flights"`
	Hotels     []HotelRecord  `db:"-" json:"hotels"`
	StartDate  string         `db:"start_date" json:"start_date,omitempty"`
	EndDate    string         `db:"end_date" json:"end_date,omitempty"`
	Route      string         `db:"route" json:"route,omitempty"`
	Version    int            `db:"version" json:"version"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// Document is a raw uploaded travel document. Transient: it exists only for
// the duration of one ingestion request.
type Document struct {
	Filename    string
	ContentType string
	Bytes       []byte
	Hint        DocumentHint
}
