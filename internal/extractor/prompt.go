package extractor

import (
	"fmt"
	"strings"

	"tripfolio/internal/domain"
)

const travelSchema = `{
  "flights": [
    {
      "date": "",
      "flight_number": "",
      "airline": "",
      "departure": {"code": "", "city": "", "airport": "", "terminal": ""},
      "arrival": {"code": "", "city": "", "airport": "", "terminal": ""},
      "departure_time": "",
      "arrival_time": "",
      "arrival_next_day": false,
      "duration": "",
      "booking_reference": "",
      "ticket_number": "",
      "seat": "",
      "class": ""
    }
  ],
  "hotels": [
    {
      "name": "",
      "address": {"street": "", "city": "", "postal_code": "", "country": ""},
      "check_in": {"date": "", "time": ""},
      "check_out": {"date": "", "time": ""},
      "nights": 0,
      "confirmation_number": "",
      "guest_name": "",
      "total_price": "",
      "currency": "",
      "cancellation_policy": "",
      "amenities": []
    }
  ],
  "passenger": {"name": "", "type": "ADT", "ticket_number": ""},
  "booking": {"agency": "", "total_price": "", "currency": ""}
}`

const promptRules = `IMPORTANT INSTRUCTIONS:
- Normalize all dates to YYYY-MM-DD and all times to 24-hour HH:MM.
- "passenger" is the main traveler named on the document, with type one of ADT, CHD, INF.
- Set "arrival_next_day" to true only when the arrival date is the day after departure.
- Omit arrays or objects for data that is not present; never invent values.

Return ONLY valid JSON with no markdown formatting, no code fences, and no explanation: just the raw JSON object.`

// BuildSinglePrompt returns the extraction prompt for one travel document.
// The hint only steers attention; the schema always allows both record types.
func BuildSinglePrompt(hint domain.DocumentHint) string {
	return fmt.Sprintf(`You are a travel document data extraction assistant. Analyze the provided document (likely a %s booking) and extract its data into the following JSON structure.

%s

The JSON object must follow this schema:
%s`, hint, promptRules, travelSchema)
}

// BuildBatchPrompt returns the extraction prompt for a batched call covering
// several documents. The response must be an indexed array so each result can
// be routed back to its source document.
func BuildBatchPrompt(hints []domain.DocumentHint) string {
	labels := make([]string, len(hints))
	for i, h := range hints {
		labels[i] = fmt.Sprintf("document %d: likely a %s booking", i, h)
	}
	return fmt.Sprintf(`You are a travel document data extraction assistant. You are given %d separate travel documents in order (%s). Extract each document's data independently.

%s

Return a single JSON object of the form {"documents": [{"index": 0, ...}, {"index": 1, ...}]}, one entry per input document, where "index" is the 0-based position of the document and the remaining fields of each entry follow this schema:
%s`, len(hints), strings.Join(labels, "; "), promptRules, travelSchema)
}
