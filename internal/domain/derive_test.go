package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripfolio/internal/domain"
)

func flight(date, depTime, from, to string) domain.FlightRecord {
	return domain.FlightRecord{
		Date:          date,
		DepartureTime: depTime,
		Departure:     domain.FlightEndpoint{Code: from},
		Arrival:       domain.FlightEndpoint{Code: to},
	}
}

func TestDeriveTripState_EmptyTrip(t *testing.T) {
	state := domain.DeriveTripState(nil, nil)

	assert.Empty(t, state.StartDate)
	assert.Empty(t, state.EndDate)
	assert.Empty(t, state.Route)
}

func TestDeriveTripState_DatesSpanFlightsAndHotels(t *testing.T) {
	flights := []domain.FlightRecord{flight("2026-06-15", "10:00", "FCO", "AMS")}
	hotels := []domain.HotelRecord{{
		Name:     "Hotel Krasnapolsky",
		CheckIn:  domain.HotelStamp{Date: "2026-06-15"},
		CheckOut: domain.HotelStamp{Date: "2026-06-20"},
	}}

	state := domain.DeriveTripState(flights, hotels)

	assert.Equal(t, "2026-06-15", state.StartDate)
	assert.Equal(t, "2026-06-20", state.EndDate)
}

func TestDeriveTripState_RouteCollapsesConnections(t *testing.T) {
	flights := []domain.FlightRecord{
		flight("2026-06-15", "14:30", "AMS", "JFK"),
		flight("2026-06-15", "08:00", "FCO", "AMS"),
	}

	state := domain.DeriveTripState(flights, nil)

	// Chronological order, shared stopover rendered once.
	assert.Equal(t, "FCO → AMS → JFK", state.Route)
}

func TestDeriveTripState_RouteKeepsNonConsecutiveRepeats(t *testing.T) {
	flights := []domain.FlightRecord{
		flight("2026-06-15", "08:00", "FCO", "NRT"),
		flight("2026-06-25", "11:00", "NRT", "FCO"),
	}

	state := domain.DeriveTripState(flights, nil)

	assert.Equal(t, "FCO → NRT → FCO", state.Route)
}

func TestDeriveTripState_Deterministic(t *testing.T) {
	flights := []domain.FlightRecord{
		flight("2026-06-15", "08:00", "fco", "ams"),
		flight("2026-06-15", "14:30", "AMS", "JFK"),
	}
	hotels := []domain.HotelRecord{{
		Name:     "Midtown Hotel",
		CheckIn:  domain.HotelStamp{Date: "2026-06-15"},
		CheckOut: domain.HotelStamp{Date: "2026-06-22"},
	}}

	first := domain.DeriveTripState(flights, hotels)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, domain.DeriveTripState(flights, hotels))
	}
	assert.Equal(t, "FCO → AMS → JFK", first.Route)
}

func TestApplyDerivedState_RecomputesAfterRemoval(t *testing.T) {
	trip := &domain.Trip{
		Flights: []domain.FlightRecord{
			flight("2026-06-15", "08:00", "FCO", "AMS"),
			flight("2026-06-25", "11:00", "AMS", "FCO"),
		},
	}
	trip.ApplyDerivedState()
	assert.Equal(t, "2026-06-15", trip.StartDate)
	assert.Equal(t, "2026-06-25", trip.EndDate)

	trip.Flights = trip.Flights[:1]
	trip.ApplyDerivedState()

	assert.Equal(t, "2026-06-15", trip.StartDate)
	assert.Equal(t, "2026-06-15", trip.EndDate)
	assert.Equal(t, "FCO → AMS", trip.Route)
}
