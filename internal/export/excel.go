package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"tripfolio/internal/domain"
)

// flightColumns defines the Flights sheet header row.
var flightColumns = []string{
	"Date",
	"Flight",
	"Airline",
	"From",
	"To",
	"Departure",
	"Arrival",
	"Booking Reference",
	"Seat",
	"Class",
	"Passengers",
}

// hotelColumns defines the Hotels sheet header row.
var hotelColumns = []string{
	"Name",
	"City",
	"Check-In",
	"Check-Out",
	"Nights",
	"Confirmation Number",
	"Guest",
	"Total Price",
}

// WriteTrip renders the trip as an Excel workbook with one sheet per booking
// kind and streams it to w.
func WriteTrip(w io.Writer, trip *domain.Trip) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const flightSheet = "Flights"
	const hotelSheet = "Hotels"

	// The default sheet becomes the flights sheet.
	if err := f.SetSheetName("Sheet1", flightSheet); err != nil {
		return fmt.Errorf("excel export: %w", err)
	}
	if _, err := f.NewSheet(hotelSheet); err != nil {
		return fmt.Errorf("excel export: %w", err)
	}

	if err := writeRow(f, flightSheet, 1, toCells(flightColumns)); err != nil {
		return err
	}
	for i, fl := range trip.Flights {
		row := []interface{}{
			fl.Date,
			fl.FlightNumber,
			fl.Airline,
			endpointLabel(fl.Departure),
			endpointLabel(fl.Arrival),
			fl.DepartureTime,
			arrivalLabel(fl),
			fl.BookingReference,
			fl.Seat,
			fl.Class,
			passengerNames(fl.Passengers),
		}
		if err := writeRow(f, flightSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, hotelSheet, 1, toCells(hotelColumns)); err != nil {
		return err
	}
	for i, h := range trip.Hotels {
		price := h.TotalPrice
		if price != "" && h.Currency != "" {
			price = price + " " + h.Currency
		}
		row := []interface{}{
			h.Name,
			h.Address.City,
			h.CheckIn.Date,
			h.CheckOut.Date,
			h.Nights,
			h.ConfirmationNumber,
			h.GuestName,
			price,
		}
		if err := writeRow(f, hotelSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("excel export write: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("excel export: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("excel export row %d: %w", row, err)
	}
	return nil
}

func toCells(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

func endpointLabel(e domain.FlightEndpoint) string {
	if e.City != "" && e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.City, e.Code)
	}
	if e.Code != "" {
		return e.Code
	}
	return e.City
}

func arrivalLabel(f domain.FlightRecord) string {
	if f.ArrivalTime != "" && f.ArrivalNextDay {
		return f.ArrivalTime + " +1"
	}
	return f.ArrivalTime
}

func passengerNames(passengers []domain.Passenger) string {
	names := make([]string, 0, len(passengers))
	for _, p := range passengers {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
