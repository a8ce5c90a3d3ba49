package domain

import (
	"sort"
	"strings"
)

// DerivedState holds the trip fields computed from the booking lists.
type DerivedState struct {
	StartDate string
	EndDate   string
	Route     string
}

// DeriveTripState recomputes a trip's derived fields from the full surviving
// record set. Dates are ISO strings, so lexical comparison is chronological.
// A trip with no flights and no hotels yields the zero DerivedState.
func DeriveTripState(flights []FlightRecord, hotels []HotelRecord) DerivedState {
	var dates []string
	for _, f := range flights {
		if f.Date != "" {
			dates = append(dates, f.Date)
		}
	}
	for _, h := range hotels {
		if h.CheckIn.Date != "" {
			dates = append(dates, h.CheckIn.Date)
		}
		if h.CheckOut.Date != "" {
			dates = append(dates, h.CheckOut.Date)
		}
	}

	var state DerivedState
	if len(dates) > 0 {
		sort.Strings(dates)
		state.StartDate = dates[0]
		state.EndDate = dates[len(dates)-1]
	}
	state.Route = deriveRoute(flights)
	return state
}

// deriveRoute walks flights in chronological order and concatenates airport
// codes, collapsing consecutive duplicates so a connection renders as
// "FCO → AMS → JFK" rather than "FCO → AMS → AMS → JFK".
func deriveRoute(flights []FlightRecord) string {
	if len(flights) == 0 {
		return ""
	}

	ordered := make([]FlightRecord, len(flights))
	copy(ordered, flights)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].DepartureTime < ordered[j].DepartureTime
	})

	var codes []string
	for _, f := range ordered {
		for _, code := range []string{f.Departure.Code, f.Arrival.Code} {
			code = strings.ToUpper(strings.TrimSpace(code))
			if code == "" {
				continue
			}
			if len(codes) > 0 && codes[len(codes)-1] == code {
				continue
			}
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, " → ")
}

// ApplyDerivedState recomputes and stores the trip's derived fields.
// Call it after every structural change to the flight or hotel lists.
func (t *Trip) ApplyDerivedState() {
	state := DeriveTripState(t.Flights, t.Hotels)
	t.StartDate = state.StartDate
	t.EndDate = state.EndDate
	t.Route = state.Route
}
