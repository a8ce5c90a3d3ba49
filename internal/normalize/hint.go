package normalize

import (
	"strings"

	"tripfolio/internal/domain"
)

var flightKeywords = []string{
	"flight", "boarding", "eticket", "e-ticket", "itinerary", "airline",
	"volo", "vuelo", "vol", "flug",
}

var hotelKeywords = []string{
	"hotel", "stay", "reservation", "accommodation", "hostel", "resort",
	"booking.com", "albergo", "soggiorno",
}

// DetectHint guesses a document's content from filename keywords. The hint
// only selects which extraction prompt to request; it carries no business
// meaning downstream.
func DetectHint(filename string) domain.DocumentHint {
	lower := strings.ToLower(filename)
	for _, kw := range flightKeywords {
		if strings.Contains(lower, kw) {
			return domain.HintFlight
		}
	}
	for _, kw := range hotelKeywords {
		if strings.Contains(lower, kw) {
			return domain.HintHotel
		}
	}
	return domain.HintUnknown
}
