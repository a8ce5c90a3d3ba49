package domain

import "errors"

var (
	ErrTripNotFound          = errors.New("trip not found")
	ErrTripConflict          = errors.New("trip was modified concurrently")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrPassengerNotFound     = errors.New("passenger not found")
	ErrDuplicateBooking      = errors.New("booking already present on trip")
	ErrNoExtractableData     = errors.New("no usable data could be extracted from the documents")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrNoDocuments           = errors.New("no documents provided")
	ErrInvalidBookingPayload = errors.New("booking payload does not match expected format")
)
