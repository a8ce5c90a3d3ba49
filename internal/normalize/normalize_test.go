package normalize_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripfolio/internal/domain"
	"tripfolio/internal/extractor"
	"tripfolio/internal/normalize"
)

func TestDetectHint(t *testing.T) {
	tests := []struct {
		filename string
		want     domain.DocumentHint
	}{
		{"Boarding pass AZ1782.pdf", domain.HintFlight},
		{"e-ticket receipt.pdf", domain.HintFlight},
		{"Volo Roma Tokyo.pdf", domain.HintFlight},
		{"Hotel confirmation Park Hyatt.pdf", domain.HintHotel},
		{"booking.com reservation 12345.eml", domain.HintHotel},
		{"scan0001.pdf", domain.HintUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.DetectHint(tt.filename), tt.filename)
	}
}

func TestFilenameNameExtractor(t *testing.T) {
	x := normalize.NewFilenameNameExtractor()

	tests := []struct {
		filename string
		want     string
		found    bool
	}{
		{"Boarding pass for Agata Brignone 2026-06-15.pdf", "Agata Brignone", true},
		{"biglietto per Mario Rossi.pdf", "Mario Rossi", true},
		{"ticket for John Fitzgerald Kennedy Smith.pdf", "John Fitzgerald Kennedy Smith", true},
		// Marker followed by a single token is not a plausible full name.
		{"invoice for Alice.pdf", "", false},
		{"scan0001.pdf", "", false},
		// Stop word ends the run before a name forms.
		{"receipt for the booking.pdf", "", false},
	}

	for _, tt := range tests {
		got, ok := x.TryExtractName(tt.filename)
		assert.Equal(t, tt.found, ok, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}

func extractionWithFlight() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		Flights: []domain.FlightRecord{{
			Date:         "2026-06-15",
			FlightNumber: "AZ1782",
		}},
	}
}

func TestNormalize_SkipsFailedEntries(t *testing.T) {
	n := normalize.NewNormalizer(normalize.NewFilenameNameExtractor())

	docs := n.Normalize([]extractor.DocumentResult{
		{Index: 0, Filename: "bad.pdf", Err: errors.New("boom")},
		{Index: 1, Filename: "good.pdf", Result: extractionWithFlight()},
	})

	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].Index)
}

func TestNormalize_DocumentLevelPassengerPlacedOnFlights(t *testing.T) {
	n := normalize.NewNormalizer(normalize.NewFilenameNameExtractor())

	result := extractionWithFlight()
	result.Passenger = &domain.Passenger{Name: "Alice Rossi", Type: domain.PassengerAdult}

	docs := n.Normalize([]extractor.DocumentResult{{Index: 0, Filename: "ticket.pdf", Result: result}})

	require.Len(t, docs, 1)
	require.Len(t, docs[0].Flights[0].Passengers, 1)
	assert.Equal(t, "Alice Rossi", docs[0].Flights[0].Passengers[0].Name)
}

func TestNormalize_BackfillsPassengerFromFilename(t *testing.T) {
	n := normalize.NewNormalizer(normalize.NewFilenameNameExtractor())

	docs := n.Normalize([]extractor.DocumentResult{{
		Index:    0,
		Filename: "Boarding pass for Agata Brignone.pdf",
		Result:   extractionWithFlight(),
	}})

	require.Len(t, docs[0].Flights[0].Passengers, 1)
	assert.Equal(t, "Agata Brignone", docs[0].Flights[0].Passengers[0].Name)
	assert.Equal(t, domain.PassengerAdult, docs[0].Flights[0].Passengers[0].Type)
}

func TestNormalize_NoNameSourceLeavesFlightPassengerless(t *testing.T) {
	n := normalize.NewNormalizer(normalize.NewFilenameNameExtractor())

	docs := n.Normalize([]extractor.DocumentResult{{
		Index:    0,
		Filename: "scan0001.pdf",
		Result:   extractionWithFlight(),
	}})

	assert.Empty(t, docs[0].Flights[0].Passengers)
}

func TestNormalize_InvalidPassengerTypeDefaultsToAdult(t *testing.T) {
	n := normalize.NewNormalizer(nil)

	result := extractionWithFlight()
	result.Flights[0].Passengers = []domain.Passenger{{Name: "  Alice Rossi ", Type: "GROWNUP"}}

	docs := n.Normalize([]extractor.DocumentResult{{Index: 0, Filename: "t.pdf", Result: result}})

	p := docs[0].Flights[0].Passengers[0]
	assert.Equal(t, "Alice Rossi", p.Name)
	assert.Equal(t, domain.PassengerAdult, p.Type)
}
