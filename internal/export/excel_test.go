package export_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tripfolio/internal/domain"
	"tripfolio/internal/export"
)

func TestWriteTrip(t *testing.T) {
	trip := &domain.Trip{
		Name: "Tokyo 2026",
		Flights: []domain.FlightRecord{{
			Date:             "2026-06-15",
			FlightNumber:     "AZ1782",
			Airline:          "ITA Airways",
			Departure:        domain.FlightEndpoint{Code: "FCO", City: "Rome"},
			Arrival:          domain.FlightEndpoint{Code: "NRT", City: "Tokyo"},
			DepartureTime:    "10:05",
			ArrivalTime:      "07:30",
			ArrivalNextDay:   true,
			BookingReference: "ABC123",
			Passengers: []domain.Passenger{
				{Name: "Alice Rossi"},
				{Name: "Bob Bianchi"},
			},
		}},
		Hotels: []domain.HotelRecord{{
			Name:               "Park Hyatt Tokyo",
			Address:            domain.HotelAddress{City: "Tokyo"},
			CheckIn:            domain.HotelStamp{Date: "2026-06-16"},
			CheckOut:           domain.HotelStamp{Date: "2026-06-20"},
			Nights:             4,
			ConfirmationNumber: "HX-9912",
			TotalPrice:         "1200",
			Currency:           "EUR",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteTrip(&buf, trip))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	flights, err := f.GetRows("Flights")
	require.NoError(t, err)
	require.Len(t, flights, 2)
	assert.Equal(t, "Date", flights[0][0])
	assert.Equal(t, "AZ1782", flights[1][1])
	assert.Equal(t, "Rome (FCO)", flights[1][3])
	assert.Equal(t, "07:30 +1", flights[1][6])
	assert.Equal(t, "Alice Rossi, Bob Bianchi", flights[1][10])

	hotels, err := f.GetRows("Hotels")
	require.NoError(t, err)
	require.Len(t, hotels, 2)
	assert.Equal(t, "Park Hyatt Tokyo", hotels[1][0])
	assert.Equal(t, "1200 EUR", hotels[1][7])
}

func TestWriteTrip_EmptyTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteTrip(&buf, &domain.Trip{Name: "Empty"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Flights")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
