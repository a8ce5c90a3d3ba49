package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"tripfolio/internal/dedup"
	"tripfolio/internal/domain"
	"tripfolio/internal/extractor"
	"tripfolio/internal/normalize"
	"tripfolio/internal/port"
)

// IngestInput carries one ingestion request. A nil TripID creates a new trip
// named TripName; otherwise the documents merge into the existing trip.
type IngestInput struct {
	TripID    uuid.UUID
	TripName  string
	Documents []domain.Document
}

// IngestResult summarizes one completed ingestion.
type IngestResult struct {
	Trip            *domain.Trip `json:"trip"`
	TripCreated     bool         `json:"trip_created"`
	AddedFlights    int          `json:"added_flights"`
	AddedHotels     int          `json:"added_hotels"`
	SkippedFlights  int          `json:"skipped_flights"`
	SkippedHotels   int          `json:"skipped_hotels"`
	FailedDocuments []string     `json:"failed_documents,omitempty"`
}

// DuplicateBookingError reports an ingestion whose every record was already
// present on the trip. It matches domain.ErrDuplicateBooking with errors.Is
// and carries the per-kind skip counts for the caller's response.
type DuplicateBookingError struct {
	SkippedFlights int
	SkippedHotels  int
}

func (e *DuplicateBookingError) Error() string {
	return fmt.Sprintf("all records already present on trip (%d flights, %d hotels skipped)",
		e.SkippedFlights, e.SkippedHotels)
}

func (e *DuplicateBookingError) Is(target error) bool {
	return target == domain.ErrDuplicateBooking
}

// IngestService runs the document ingestion pipeline: extraction dispatch,
// normalization, merge against the trip's existing records, attachment slot
// writes, and a single versioned trip save.
type IngestService interface {
	IngestDocuments(ctx context.Context, input *IngestInput) (*IngestResult, error)
}

type ingestService struct {
	tripRepo     port.TripRepository
	dispatcher   *extractor.Dispatcher
	normalizer   *normalize.Normalizer
	linker       *AttachmentLinker
	email        port.EmailSender
	maxDocuments int
}

// NewIngestService creates an IngestService. email may be nil when ingestion
// notifications are disabled.
func NewIngestService(
	tripRepo port.TripRepository,
	dispatcher *extractor.Dispatcher,
	normalizer *normalize.Normalizer,
	linker *AttachmentLinker,
	email port.EmailSender,
	maxDocuments int,
) IngestService {
	return &ingestService{
		tripRepo:     tripRepo,
		dispatcher:   dispatcher,
		normalizer:   normalizer,
		linker:       linker,
		email:        email,
		maxDocuments: maxDocuments,
	}
}

func (s *ingestService) IngestDocuments(ctx context.Context, input *IngestInput) (*IngestResult, error) {
	if len(input.Documents) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if s.maxDocuments > 0 && len(input.Documents) > s.maxDocuments {
		return nil, fmt.Errorf("%w: %d documents exceed the per-request limit of %d",
			domain.ErrInvalidBookingPayload, len(input.Documents), s.maxDocuments)
	}

	extractInputs := make([]port.ExtractInput, len(input.Documents))
	for i, doc := range input.Documents {
		hint := doc.Hint
		if hint == "" || hint == domain.HintUnknown {
			hint = normalize.DetectHint(doc.Filename)
		}
		extractInputs[i] = port.ExtractInput{
			FileBytes:   doc.Bytes,
			ContentType: doc.ContentType,
			Filename:    doc.Filename,
			Hint:        hint,
		}
	}

	log.Printf("service.IngestDocuments: dispatching %d document(s)", len(input.Documents))
	results, err := s.dispatcher.ProcessDocuments(ctx, extractInputs)
	if err != nil {
		// Only rate limiting aborts the dispatch; surface it typed.
		return nil, fmt.Errorf("extraction dispatch failed: %w", err)
	}

	var failed []string
	for _, r := range results {
		if r.Err != nil {
			log.Printf("service.IngestDocuments: document %q failed extraction: %v", r.Filename, r.Err)
			failed = append(failed, r.Filename)
		}
	}

	docs := s.normalizer.Normalize(results)
	if !hasUsableRecords(docs) {
		return nil, domain.ErrNoExtractableData
	}

	trip, created, err := s.loadOrCreateTrip(ctx, input)
	if err != nil {
		return nil, err
	}

	plan := dedup.Merge(trip.Flights, trip.Hotels, docs)
	if !plan.HasChanges() {
		return nil, &DuplicateBookingError{
			SkippedFlights: plan.SkippedFlights,
			SkippedHotels:  plan.SkippedHotels,
		}
	}

	uploaded := s.linker.Link(ctx, trip.ID, input.Documents, plan)

	trip.Flights = plan.Flights
	trip.Hotels = plan.Hotels
	trip.ApplyDerivedState()

	if created {
		err = s.tripRepo.Create(ctx, trip)
	} else {
		err = s.tripRepo.Save(ctx, trip)
	}
	if err != nil {
		// The merged state never reached the store; drop its attachments.
		s.linker.Cleanup(ctx, uploaded)
		return nil, fmt.Errorf("failed to persist trip %s: %w", trip.ID, err)
	}

	result := &IngestResult{
		Trip:            trip,
		TripCreated:     created,
		AddedFlights:    plan.AddedFlights,
		AddedHotels:     plan.AddedHotels,
		SkippedFlights:  plan.SkippedFlights,
		SkippedHotels:   plan.SkippedHotels,
		FailedDocuments: failed,
	}
	log.Printf("service.IngestDocuments: trip %s updated (flights +%d/~%d, hotels +%d/~%d, %d document(s) failed)",
		trip.ID, result.AddedFlights, result.SkippedFlights, result.AddedHotels, result.SkippedHotels, len(failed))

	s.notify(ctx, trip, result)

	return result, nil
}

func (s *ingestService) loadOrCreateTrip(ctx context.Context, input *IngestInput) (*domain.Trip, bool, error) {
	if input.TripID != uuid.Nil {
		trip, err := s.tripRepo.GetByID(ctx, input.TripID)
		if err != nil {
			return nil, false, err
		}
		return trip, false, nil
	}

	name := strings.TrimSpace(input.TripName)
	if name == "" {
		name = "Untitled trip"
	}
	return &domain.Trip{ID: uuid.New(), Name: name}, true, nil
}

// notify sends the ingestion summary email. Delivery failures are logged and
// never fail the ingestion.
func (s *ingestService) notify(ctx context.Context, trip *domain.Trip, result *IngestResult) {
	if s.email == nil || trip.OwnerEmail == "" {
		return
	}

	body := fmt.Sprintf(
		"Your documents were added to %q.\n\nFlights added: %d\nHotels added: %d\nAlready present: %d\n",
		trip.Name, result.AddedFlights, result.AddedHotels,
		result.SkippedFlights+result.SkippedHotels,
	)
	if len(result.FailedDocuments) > 0 {
		body += fmt.Sprintf("\nDocuments we could not read: %s\n", strings.Join(result.FailedDocuments, ", "))
	}

	msg := port.EmailMessage{
		To:       trip.OwnerEmail,
		Subject:  fmt.Sprintf("Trip %q updated", trip.Name),
		TextBody: body,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		log.Printf("service.IngestDocuments: notification email to %s failed: %v", trip.OwnerEmail, err)
	}
}

// hasUsableRecords reports whether any normalized document produced at least
// one flight or hotel record.
func hasUsableRecords(docs []normalize.DocumentRecords) bool {
	for _, d := range docs {
		if len(d.Flights) > 0 || len(d.Hotels) > 0 {
			return true
		}
	}
	return false
}
