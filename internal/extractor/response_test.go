package extractor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripfolio/internal/extractor"
)

func TestDecodeSinglePayload(t *testing.T) {
	payload := `{"flights":[{"date":"2026-06-15","flight_number":"AZ1782","departure":{"code":"FCO"},"arrival":{"code":"NRT"}}]}`

	result, err := extractor.DecodeSinglePayload(payload)

	require.NoError(t, err)
	require.Len(t, result.Flights, 1)
	assert.Equal(t, "AZ1782", result.Flights[0].FlightNumber)
	assert.Equal(t, "FCO", result.Flights[0].Departure.Code)
}

func TestDecodeSinglePayload_InvalidJSON(t *testing.T) {
	_, err := extractor.DecodeSinglePayload(`the document appears to contain`)
	assert.Error(t, err)
}

func TestDecodeBatchPayload_IndexedEnvelope(t *testing.T) {
	payload := `{"documents":[
		{"index":1,"hotels":[{"name":"Park Hyatt Tokyo","check_in":{"date":"2026-06-15"},"check_out":{"date":"2026-06-20"}}]},
		{"index":0,"flights":[{"date":"2026-06-15","flight_number":"AZ1782"}]}
	]}`

	results, err := extractor.DecodeBatchPayload(payload, 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Index)
	assert.Len(t, results[0].Result.Hotels, 1)
	assert.Equal(t, 0, results[1].Index)
	assert.Len(t, results[1].Result.Flights, 1)
}

func TestDecodeBatchPayload_BareObjectTreatedAsFirstDocument(t *testing.T) {
	payload := `{"flights":[{"date":"2026-06-15","flight_number":"AZ1782"}]}`

	results, err := extractor.DecodeBatchPayload(payload, 2)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Index)
	assert.Len(t, results[0].Result.Flights, 1)
}

func TestDecodeBatchPayload_EmptyBareObjectIsError(t *testing.T) {
	_, err := extractor.DecodeBatchPayload(`{}`, 2)
	assert.Error(t, err)
}

func TestDecodeBatchPayload_IndexOutOfRange(t *testing.T) {
	payload := `{"documents":[{"index":5,"flights":[{"date":"2026-06-15","flight_number":"AZ1782"}]}]}`

	_, err := extractor.DecodeBatchPayload(payload, 2)
	assert.Error(t, err)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 30, extractor.ParseRetryAfterHeader("30"))
	assert.Equal(t, 0, extractor.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, extractor.ParseRetryAfterHeader("Wed, 21 Oct 2026 07:28:00 GMT"))
}
