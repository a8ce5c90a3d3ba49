package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripfolio/internal/dedup"
	"tripfolio/internal/domain"
	"tripfolio/internal/port"
	"tripfolio/internal/service"
	"tripfolio/mocks"
)

func TestLink_SharedDocumentUploadsOnce(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	linker := service.NewAttachmentLinker(storage, testBucket)
	tripID := uuid.New()

	// One family booking added two passengers onto an existing flight: both
	// slots resolve to the same per-document key and share one stored binary.
	plan := &dedup.MergePlan{
		Flights: []domain.FlightRecord{{
			FlightNumber: "AZ1782",
			Passengers: []domain.Passenger{
				{Name: "Carla Verdi"},
				{Name: "Alice Rossi"},
				{Name: "Bob Bianchi"},
			},
		}},
		FlightSlots: []dedup.FlightSlot{
			{FlightIndex: 0, PassengerIndex: 1, SourceDocIndex: 0},
			{FlightIndex: 0, PassengerIndex: 2, SourceDocIndex: 0},
		},
	}

	docs := []domain.Document{{Filename: "family booking.pdf", ContentType: "application/pdf", Bytes: []byte("%PDF")}}
	key := fmt.Sprintf("trips/%s/flight-0-p0.pdf", tripID)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Key == key
	})).Return(&port.UploadOutput{}, nil).Once()

	uploaded := linker.Link(context.Background(), tripID, docs, plan)

	require.Equal(t, []string{key}, uploaded)
	assert.Empty(t, plan.Flights[0].Passengers[0].PDFPath)
	assert.Equal(t, key, plan.Flights[0].Passengers[1].PDFPath)
	assert.Equal(t, key, plan.Flights[0].Passengers[2].PDFPath)
	storage.AssertExpectations(t)
}

func TestLink_HotelSlot(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	linker := service.NewAttachmentLinker(storage, testBucket)
	tripID := uuid.New()

	plan := &dedup.MergePlan{
		Hotels:     []domain.HotelRecord{{Name: "Park Hyatt Tokyo"}},
		HotelSlots: []dedup.HotelSlot{{HotelIndex: 0, SourceDocIndex: 0}},
	}
	docs := []domain.Document{{Filename: "confirmation.eml", ContentType: "message/rfc822", Bytes: []byte("From: hotel")}}

	key := fmt.Sprintf("trips/%s/hotel-0.eml", tripID)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Key == key && in.ContentType == "message/rfc822"
	})).Return(&port.UploadOutput{}, nil).Once()

	uploaded := linker.Link(context.Background(), tripID, docs, plan)

	require.Equal(t, []string{key}, uploaded)
	assert.Equal(t, key, plan.Hotels[0].PDFPath)
}

func TestLink_SlotWithUnknownDocumentIgnored(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	linker := service.NewAttachmentLinker(storage, testBucket)

	plan := &dedup.MergePlan{
		Hotels:     []domain.HotelRecord{{Name: "x"}},
		HotelSlots: []dedup.HotelSlot{{HotelIndex: 0, SourceDocIndex: 9}},
	}

	uploaded := linker.Link(context.Background(), uuid.New(), nil, plan)

	assert.Empty(t, uploaded)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}
