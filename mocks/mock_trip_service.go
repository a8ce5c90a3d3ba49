package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tripfolio/internal/domain"
)

// MockTripService is a mock implementation of service.TripService.
type MockTripService struct {
	mock.Mock
}

func (m *MockTripService) CreateTrip(ctx context.Context, name, ownerEmail string) (*domain.Trip, error) {
	args := m.Called(ctx, name, ownerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripService) GetTrip(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripService) ListTrips(ctx context.Context, offset, limit int) ([]domain.Trip, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Trip), args.Int(1), args.Error(2)
}

func (m *MockTripService) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	args := m.Called(ctx, tripID)
	return args.Error(0)
}

func (m *MockTripService) UpdateFlight(ctx context.Context, tripID uuid.UUID, index int, update domain.FlightRecord) (*domain.Trip, error) {
	args := m.Called(ctx, tripID, index, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripService) UpdateHotel(ctx context.Context, tripID uuid.UUID, index int, update domain.HotelRecord) (*domain.Trip, error) {
	args := m.Called(ctx, tripID, index, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripService) DeleteBooking(ctx context.Context, tripID uuid.UUID, kind domain.BookingKind, index int) (*domain.Trip, error) {
	args := m.Called(ctx, tripID, kind, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripService) DeletePassenger(ctx context.Context, tripID uuid.UUID, flightIndex, passengerIndex int) (*domain.Trip, error) {
	args := m.Called(ctx, tripID, flightIndex, passengerIndex)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Trip), args.Error(1)
}

func (m *MockTripService) AttachmentURL(ctx context.Context, tripID uuid.UUID, kind domain.BookingKind, index, passengerIndex int) (string, error) {
	args := m.Called(ctx, tripID, kind, index, passengerIndex)
	return args.String(0), args.Error(1)
}
