package normalize

import (
	"log"
	"strings"

	"tripfolio/internal/domain"
	"tripfolio/internal/extractor"
)

// DocumentRecords is the uniform per-document shape downstream components
// consume: record lists tagged with the source document index, with the
// response-mode differences and passenger placement already resolved.
type DocumentRecords struct {
	Index    int
	Filename string
	Flights  []domain.FlightRecord
	Hotels   []domain.HotelRecord
	Booking  *domain.BookingMeta
}

// Normalizer maps dispatcher output into DocumentRecords, placing the
// document-level passenger onto its flights and backfilling missing passenger
// names from the filename.
type Normalizer struct {
	names NameExtractor
}

// NewNormalizer creates a Normalizer with the given name-extraction strategy.
func NewNormalizer(names NameExtractor) *Normalizer {
	return &Normalizer{names: names}
}

// Normalize converts successful dispatcher entries into DocumentRecords.
// Failed entries are skipped here; the caller accounts for them separately.
func (n *Normalizer) Normalize(results []extractor.DocumentResult) []DocumentRecords {
	out := make([]DocumentRecords, 0, len(results))
	for _, r := range results {
		if r.Err != nil || r.Result == nil {
			continue
		}

		records := DocumentRecords{
			Index:    r.Index,
			Filename: r.Filename,
			Flights:  r.Result.Flights,
			Hotels:   r.Result.Hotels,
			Booking:  r.Result.Booking,
		}

		for i := range records.Flights {
			n.ensurePassenger(&records.Flights[i], r.Result.Passenger, r.Filename)
		}

		out = append(out, records)
	}
	return out
}

// ensurePassenger fills a flight's passenger list when extraction left it
// empty: first from the document-level passenger, then from the filename
// heuristic. Absence of both leaves the flight passenger-less, which the
// merge engine treats as "no passenger to aggregate".
func (n *Normalizer) ensurePassenger(flight *domain.FlightRecord, docPassenger *domain.Passenger, filename string) {
	for i := range flight.Passengers {
		sanitizePassenger(&flight.Passengers[i])
	}
	if len(flight.Passengers) > 0 {
		return
	}

	if docPassenger != nil && strings.TrimSpace(docPassenger.Name) != "" {
		p := *docPassenger
		sanitizePassenger(&p)
		flight.Passengers = []domain.Passenger{p}
		return
	}

	if n.names == nil {
		return
	}
	if name, ok := n.names.TryExtractName(filename); ok {
		log.Printf("normalize.Normalizer: backfilled passenger %q from filename %q", name, filename)
		flight.Passengers = []domain.Passenger{{Name: name, Type: domain.PassengerAdult}}
	}
}

func sanitizePassenger(p *domain.Passenger) {
	p.Name = strings.TrimSpace(p.Name)
	if !domain.ValidPassengerTypes[p.Type] {
		p.Type = domain.PassengerAdult
	}
}
