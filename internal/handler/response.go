package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripfolio/internal/domain"
	"tripfolio/internal/extractor"
	"tripfolio/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response. ErrorType distinguishes the
// two conditions clients handle specially: "duplicate" carries the skip
// counts, "rate_limit" carries the retry-after hint.
type APIError struct {
	Code              string         `json:"code"`
	Message           string         `json:"message"`
	ErrorType         string         `json:"errorType,omitempty"`
	RetryAfterSeconds int            `json:"retryAfterSeconds,omitempty"`
	DuplicateInfo     *DuplicateInfo `json:"duplicateInfo,omitempty"`
}

// DuplicateInfo reports what an all-duplicate ingestion skipped.
type DuplicateInfo struct {
	SkippedFlights int `json:"skippedFlights"`
	SkippedHotels  int `json:"skippedHotels"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrTripNotFound):
		return http.StatusNotFound, "TRIP_NOT_FOUND", "trip not found"
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, "BOOKING_NOT_FOUND", "booking not found"
	case errors.Is(err, domain.ErrPassengerNotFound):
		return http.StatusNotFound, "PASSENGER_NOT_FOUND", "passenger not found"
	case errors.Is(err, domain.ErrTripConflict):
		return http.StatusConflict, "TRIP_CONFLICT", "trip was modified concurrently; retry the request"
	case errors.Is(err, domain.ErrNoExtractableData):
		return http.StatusUnprocessableEntity, "NO_EXTRACTABLE_DATA", "no usable data could be extracted from the documents"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, eml, txt"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrNoDocuments):
		return http.StatusBadRequest, "NO_DOCUMENTS", "no documents provided"
	case errors.Is(err, domain.ErrInvalidBookingPayload):
		return http.StatusBadRequest, "INVALID_PAYLOAD", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps any pipeline error to its response shape: typed duplicate
// and rate-limit errors get their structured fields, domain errors map to
// status codes, everything else is a 500.
func HandleError(c *gin.Context, err error) {
	var dupErr *service.DuplicateBookingError
	if errors.As(err, &dupErr) {
		c.JSON(http.StatusConflict, APIResponse{
			Success: false,
			Error: &APIError{
				Code:      "DUPLICATE_BOOKING",
				Message:   "all records in these documents are already present on the trip",
				ErrorType: "duplicate",
				DuplicateInfo: &DuplicateInfo{
					SkippedFlights: dupErr.SkippedFlights,
					SkippedHotels:  dupErr.SkippedHotels,
				},
			},
		})
		return
	}

	var rlErr *extractor.RateLimitError
	if errors.As(err, &rlErr) {
		c.JSON(http.StatusTooManyRequests, APIResponse{
			Success: false,
			Error: &APIError{
				Code:              "RATE_LIMITED",
				Message:           "the extraction service is rate limited; retry later",
				ErrorType:         "rate_limit",
				RetryAfterSeconds: int(rlErr.RetryAfter.Seconds()),
			},
		})
		return
	}

	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
