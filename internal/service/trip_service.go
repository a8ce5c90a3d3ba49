package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"tripfolio/internal/domain"
	"tripfolio/internal/port"
)

// TripService covers trip lifecycle and manual record maintenance. Every
// mutation re-derives the trip's start date, end date, and route before
// saving, so the derived fields never drift from the record lists.
type TripService interface {
	CreateTrip(ctx context.Context, name, ownerEmail string) (*domain.Trip, error)
	GetTrip(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error)
	ListTrips(ctx context.Context, offset, limit int) ([]domain.Trip, int, error)
	DeleteTrip(ctx context.Context, tripID uuid.UUID) error

	UpdateFlight(ctx context.Context, tripID uuid.UUID, index int, update domain.FlightRecord) (*domain.Trip, error)
	UpdateHotel(ctx context.Context, tripID uuid.UUID, index int, update domain.HotelRecord) (*domain.Trip, error)
	DeleteBooking(ctx context.Context, tripID uuid.UUID, kind domain.BookingKind, index int) (*domain.Trip, error)
	DeletePassenger(ctx context.Context, tripID uuid.UUID, flightIndex, passengerIndex int) (*domain.Trip, error)

	AttachmentURL(ctx context.Context, tripID uuid.UUID, kind domain.BookingKind, index, passengerIndex int) (string, error)
}

type tripService struct {
	tripRepo      port.TripRepository
	storage       port.ObjectStorage
	bucket        string
	presignExpiry int64
}

// NewTripService creates a TripService backed by the given repository and
// attachment store.
func NewTripService(tripRepo port.TripRepository, storage port.ObjectStorage, bucket string, presignExpiry int64) TripService {
	return &tripService{
		tripRepo:      tripRepo,
		storage:       storage,
		bucket:        bucket,
		presignExpiry: presignExpiry,
	}
}

func (s *tripService) CreateTrip(ctx context.Context, name, ownerEmail string) (*domain.Trip, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: trip name is required", domain.ErrInvalidBookingPayload)
	}

	trip := &domain.Trip{
		ID:         uuid.New(),
		Name:       name,
		OwnerEmail: strings.TrimSpace(ownerEmail),
	}
	trip.ApplyDerivedState()

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return trip, nil
}

func (s *tripService) GetTrip(ctx context.Context, tripID uuid.UUID) (*domain.Trip, error) {
	return s.tripRepo.GetByID(ctx, tripID)
}

func (s *tripService) ListTrips(ctx context.Context, offset, limit int) ([]domain.Trip, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.tripRepo.List(ctx, offset, limit)
}

// DeleteTrip removes the trip and best-effort deletes its stored attachments.
func (s *tripService) DeleteTrip(ctx context.Context, tripID uuid.UUID) error {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return err
	}

	for _, f := range trip.Flights {
		for _, p := range f.Passengers {
			s.deleteAttachment(ctx, p.PDFPath)
		}
	}
	for _, h := range trip.Hotels {
		s.deleteAttachment(ctx, h.PDFPath)
	}

	return s.tripRepo.Delete(ctx, tripID)
}

// UpdateFlight replaces the editable fields of one flight. The passenger list
// and attachment paths survive the edit unless the update carries its own.
func (s *tripService) UpdateFlight(ctx context.Context, tripID uuid.UUID, index int, update domain.FlightRecord) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(trip.Flights) {
		return nil, domain.ErrBookingNotFound
	}

	if len(update.Passengers) == 0 {
		update.Passengers = trip.Flights[index].Passengers
	}
	trip.Flights[index] = update

	return s.saveDerived(ctx, trip)
}

func (s *tripService) UpdateHotel(ctx context.Context, tripID uuid.UUID, index int, update domain.HotelRecord) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(trip.Hotels) {
		return nil, domain.ErrBookingNotFound
	}

	if update.PDFPath == "" {
		update.PDFPath = trip.Hotels[index].PDFPath
	}
	trip.Hotels[index] = update

	return s.saveDerived(ctx, trip)
}

// DeleteBooking removes one flight or hotel record together with its stored
// attachments.
func (s *tripService) DeleteBooking(ctx context.Context, tripID uuid.UUID, kind domain.BookingKind, index int) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.BookingFlight:
		if index < 0 || index >= len(trip.Flights) {
			return nil, domain.ErrBookingNotFound
		}
		for _, p := range trip.Flights[index].Passengers {
			s.deleteAttachment(ctx, p.PDFPath)
		}
		trip.Flights = append(trip.Flights[:index], trip.Flights[index+1:]...)
	case domain.BookingHotel:
		if index < 0 || index >= len(trip.Hotels) {
			return nil, domain.ErrBookingNotFound
		}
		s.deleteAttachment(ctx, trip.Hotels[index].PDFPath)
		trip.Hotels = append(trip.Hotels[:index], trip.Hotels[index+1:]...)
	default:
		return nil, fmt.Errorf("%w: unknown booking kind %q", domain.ErrInvalidBookingPayload, kind)
	}

	return s.saveDerived(ctx, trip)
}

// DeletePassenger removes one passenger from a flight. Removing the last
// passenger removes the flight record itself.
func (s *tripService) DeletePassenger(ctx context.Context, tripID uuid.UUID, flightIndex, passengerIndex int) (*domain.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if flightIndex < 0 || flightIndex >= len(trip.Flights) {
		return nil, domain.ErrBookingNotFound
	}

	flight := &trip.Flights[flightIndex]
	if passengerIndex < 0 || passengerIndex >= len(flight.Passengers) {
		return nil, domain.ErrPassengerNotFound
	}

	s.deleteAttachment(ctx, flight.Passengers[passengerIndex].PDFPath)
	flight.Passengers = append(flight.Passengers[:passengerIndex], flight.Passengers[passengerIndex+1:]...)

	if len(flight.Passengers) == 0 {
		log.Printf("service.DeletePassenger: flight %d on trip %s lost its last passenger, removing flight", flightIndex, tripID)
		trip.Flights = append(trip.Flights[:flightIndex], trip.Flights[flightIndex+1:]...)
	}

	return s.saveDerived(ctx, trip)
}

// AttachmentURL returns a presigned download URL for the record's stored
// source document. passengerIndex is ignored for hotels.
func (s *tripService) AttachmentURL(ctx context.Context, tripID uuid.UUID, kind domain.BookingKind, index, passengerIndex int) (string, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return "", err
	}

	var key string
	switch kind {
	case domain.BookingFlight:
		if index < 0 || index >= len(trip.Flights) {
			return "", domain.ErrBookingNotFound
		}
		passengers := trip.Flights[index].Passengers
		if passengerIndex < 0 || passengerIndex >= len(passengers) {
			return "", domain.ErrPassengerNotFound
		}
		key = passengers[passengerIndex].PDFPath
	case domain.BookingHotel:
		if index < 0 || index >= len(trip.Hotels) {
			return "", domain.ErrBookingNotFound
		}
		key = trip.Hotels[index].PDFPath
	default:
		return "", fmt.Errorf("%w: unknown booking kind %q", domain.ErrInvalidBookingPayload, kind)
	}

	if key == "" {
		return "", domain.ErrBookingNotFound
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, key, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign attachment %s: %w", key, err)
	}
	return url, nil
}

func (s *tripService) saveDerived(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	trip.ApplyDerivedState()
	if err := s.tripRepo.Save(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *tripService) deleteAttachment(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, s.bucket, key); err != nil {
		log.Printf("service.TripService: failed to delete attachment %s: %v", key, err)
	}
}
