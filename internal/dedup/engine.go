package dedup

import (
	"fmt"
	"sort"
	"strings"

	"tripfolio/internal/domain"
	"tripfolio/internal/normalize"
)

// FlightSlot is one attachment-upload unit of work: a flight-passenger pair
// accepted by the merge, owned by the source document that produced it.
// PassengerIndex is -1 for a newly accepted flight that carries no passenger.
type FlightSlot struct {
	FlightIndex    int
	PassengerIndex int
	SourceDocIndex int
}

// HotelSlot is the attachment-upload unit for one accepted hotel.
type HotelSlot struct {
	HotelIndex     int
	SourceDocIndex int
}

// MergePlan is the engine's output: the full merged record lists plus
// explicit markers for everything that changed, so the persistence layer can
// do one clear read-merge-write instead of relying on shared mutable
// references.
type MergePlan struct {
	Flights []domain.FlightRecord
	Hotels  []domain.HotelRecord

	AddedFlights   int
	AddedHotels    int
	SkippedFlights int
	SkippedHotels  int

	// AugmentedFlightIndexes lists pre-existing flights that gained a passenger.
	AugmentedFlightIndexes []int

	FlightSlots []FlightSlot
	HotelSlots  []HotelSlot
}

// HasChanges reports whether the merge produced anything new. A plan without
// changes is the duplicate-booking condition, not a server error.
func (p *MergePlan) HasChanges() bool {
	return p.AddedFlights > 0 || p.AddedHotels > 0 || len(p.AugmentedFlightIndexes) > 0
}

// Merge classifies every normalized record against the trip's existing
// records and against records already accepted earlier in the same batch,
// producing a merge plan. The existing lists are never mutated; the plan
// carries copies.
func Merge(existingFlights []domain.FlightRecord, existingHotels []domain.HotelRecord, docs []normalize.DocumentRecords) *MergePlan {
	// Stable document order regardless of how dispatcher results arrived.
	ordered := make([]normalize.DocumentRecords, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	plan := &MergePlan{
		Flights: copyFlights(existingFlights),
		Hotels:  append([]domain.HotelRecord(nil), existingHotels...),
	}
	existingFlightCount := len(existingFlights)

	flightByKey := make(map[string]int, len(plan.Flights))
	for i, f := range plan.Flights {
		flightByKey[flightKey(f)] = i
	}
	hotelKeys := make(map[string]bool, len(plan.Hotels))
	for _, h := range plan.Hotels {
		hotelKeys[hotelKey(h)] = true
	}

	augmented := make(map[int]bool)

	for _, doc := range ordered {
		for _, flight := range doc.Flights {
			mergeFlight(plan, flightByKey, augmented, existingFlightCount, flight, doc.Index)
		}
		for _, hotel := range doc.Hotels {
			key := hotelKey(hotel)
			if hotelKeys[key] {
				plan.SkippedHotels++
				continue
			}
			hotelKeys[key] = true
			plan.Hotels = append(plan.Hotels, hotel)
			plan.AddedHotels++
			plan.HotelSlots = append(plan.HotelSlots, HotelSlot{
				HotelIndex:     len(plan.Hotels) - 1,
				SourceDocIndex: doc.Index,
			})
		}
	}

	for idx := range augmented {
		plan.AugmentedFlightIndexes = append(plan.AugmentedFlightIndexes, idx)
	}
	sort.Ints(plan.AugmentedFlightIndexes)

	return plan
}

// mergeFlight applies the flight aggregation rules: a matching identity
// triple means "additional passenger on the same flight", never a second
// FlightRecord; a match with no new passenger information is a skip.
func mergeFlight(plan *MergePlan, flightByKey map[string]int, augmented map[int]bool, existingFlightCount int, flight domain.FlightRecord, docIndex int) {
	key := flightKey(flight)

	matchIdx, matched := flightByKey[key]
	if !matched {
		accepted := flight
		accepted.Passengers = append([]domain.Passenger(nil), flight.Passengers...)
		plan.Flights = append(plan.Flights, accepted)
		plan.AddedFlights++

		newIdx := len(plan.Flights) - 1
		flightByKey[key] = newIdx

		if len(accepted.Passengers) == 0 {
			plan.FlightSlots = append(plan.FlightSlots, FlightSlot{
				FlightIndex:    newIdx,
				PassengerIndex: -1,
				SourceDocIndex: docIndex,
			})
			return
		}
		for i := range accepted.Passengers {
			plan.FlightSlots = append(plan.FlightSlots, FlightSlot{
				FlightIndex:    newIdx,
				PassengerIndex: i,
				SourceDocIndex: docIndex,
			})
		}
		return
	}

	target := &plan.Flights[matchIdx]
	addedAny := false
	for _, p := range flight.Passengers {
		if hasPassenger(target.Passengers, p) {
			continue
		}
		target.Passengers = append(target.Passengers, p)
		addedAny = true
		plan.FlightSlots = append(plan.FlightSlots, FlightSlot{
			FlightIndex:    matchIdx,
			PassengerIndex: len(target.Passengers) - 1,
			SourceDocIndex: docIndex,
		})
		if matchIdx < existingFlightCount {
			augmented[matchIdx] = true
		}
	}

	// No passenger, or every passenger already present: nothing to merge.
	if !addedAny {
		plan.SkippedFlights++
	}
}

// hasPassenger matches by ticket number when both sides have one, otherwise
// by case-insensitive name.
func hasPassenger(passengers []domain.Passenger, candidate domain.Passenger) bool {
	for _, p := range passengers {
		if p.TicketNumber != "" && candidate.TicketNumber != "" {
			if normalizeKeyPart(p.TicketNumber) == normalizeKeyPart(candidate.TicketNumber) {
				return true
			}
			continue
		}
		if normalizeKeyPart(p.Name) != "" && normalizeKeyPart(p.Name) == normalizeKeyPart(candidate.Name) {
			return true
		}
	}
	return false
}

// flightKey is the dedup identity triple. It is intentionally NOT a unique
// key: two passengers on the same flight produce the same triple from
// different documents, which must aggregate rather than reject.
func flightKey(f domain.FlightRecord) string {
	return fmt.Sprintf("%s|%s|%s",
		normalizeKeyPart(f.BookingReference),
		normalizeKeyPart(f.FlightNumber),
		normalizeKeyPart(f.Date),
	)
}

// hotelKey prefers the confirmation number and falls back to the composite
// name + check-in + check-out identity.
func hotelKey(h domain.HotelRecord) string {
	if conf := normalizeKeyPart(h.ConfirmationNumber); conf != "" {
		return "conf|" + conf
	}
	return fmt.Sprintf("stay|%s|%s|%s",
		normalizeKeyPart(h.Name),
		normalizeKeyPart(h.CheckIn.Date),
		normalizeKeyPart(h.CheckOut.Date),
	)
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func copyFlights(flights []domain.FlightRecord) []domain.FlightRecord {
	out := make([]domain.FlightRecord, len(flights))
	copy(out, flights)
	for i := range out {
		out[i].Passengers = append([]domain.Passenger(nil), flights[i].Passengers...)
	}
	return out
}
