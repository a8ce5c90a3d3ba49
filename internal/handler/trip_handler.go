package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripfolio/internal/domain"
	"tripfolio/internal/export"
	"tripfolio/internal/service"
)

// TripHandler handles trip and booking management endpoints.
type TripHandler struct {
	tripService service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

type createTripRequest struct {
	Name       string `json:"name" binding:"required"`
	OwnerEmail string `json:"owner_email"`
}

// Create handles POST /api/v1/trips
func (h *TripHandler) Create(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "name is required")
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), req.Name, req.OwnerEmail)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, trip)
}

// List handles GET /api/v1/trips
func (h *TripHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	trips, total, err := h.tripService.ListTrips(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, trips, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/trips/:id
func (h *TripHandler) GetByID(c *gin.Context) {
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}

	trip, err := h.tripService.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, trip)
}

// Delete handles DELETE /api/v1/trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}

	if err := h.tripService.DeleteTrip(c.Request.Context(), tripID); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": tripID})
}

// UpdateFlight handles PUT /api/v1/trips/:id/flights/:index
func (h *TripHandler) UpdateFlight(c *gin.Context) {
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	index, ok := h.index(c, "index")
	if !ok {
		return
	}

	var update domain.FlightRecord
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "flight payload does not match expected format")
		return
	}

	trip, err := h.tripService.UpdateFlight(c.Request.Context(), tripID, index, update)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, trip)
}

// UpdateHotel handles PUT /api/v1/trips/:id/hotels/:index
func (h *TripHandler) UpdateHotel(c *gin.Context) {
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	index, ok := h.index(c, "index")
	if !ok {
		return
	}

	var update domain.HotelRecord
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_PAYLOAD", "hotel payload does not match expected format")
		return
	}

	trip, err := h.tripService.UpdateHotel(c.Request.Context(), tripID, index, update)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, trip)
}

// DeleteFlight handles DELETE /api/v1/trips/:id/flights/:index
func (h *TripHandler) DeleteFlight(c *gin.Context) {
	h.deleteBooking(c, domain.BookingFlight)
}

// DeleteHotel handles DELETE /api/v1/trips/:id/hotels/:index
func (h *TripHandler) DeleteHotel(c *gin.Context) {
	h.deleteBooking(c, domain.BookingHotel)
}

func (h *TripHandler) deleteBooking(c *gin.Context, kind domain.BookingKind) {
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	index, ok := h.index(c, "index")
	if !ok {
		return
	}

	trip, err := h.tripService.DeleteBooking(c.Request.Context(), tripID, kind, index)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, trip)
}

// DeletePassenger handles DELETE /api/v1/trips/:id/flights/:index/passengers/:pindex
func (h *TripHandler) DeletePassenger(c *gin.Context) {
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	index, ok := h.index(c, "index")
	if !ok {
		return
	}
	pindex, ok := h.index(c, "pindex")
	if !ok {
		return
	}

	trip, err := h.tripService.DeletePassenger(c.Request.Context(), tripID, index, pindex)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, trip)
}

// AttachmentURL handles GET /api/v1/trips/:id/flights/:index/attachment and
// GET /api/v1/trips/:id/hotels/:index/attachment. For flights the passenger
// query parameter selects whose document to download (default 0).
func (h *TripHandler) AttachmentURL(kind domain.BookingKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, ok := h.tripID(c)
		if !ok {
			return
		}
		index, ok := h.index(c, "index")
		if !ok {
			return
		}
		passengerIndex, _ := strconv.Atoi(c.DefaultQuery("passenger", "0"))

		url, err := h.tripService.AttachmentURL(c.Request.Context(), tripID, kind, index, passengerIndex)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondOK(c, gin.H{"url": url})
	}
}

// Export handles GET /api/v1/trips/:id/export
func (h *TripHandler) Export(c *gin.Context) {
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}

	trip, err := h.tripService.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTrip(&buf, trip); err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("trip-%s.xlsx", trip.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *TripHandler) tripID(c *gin.Context) (uuid.UUID, bool) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_TRIP_ID", "trip id must be a valid UUID")
		return uuid.Nil, false
	}
	return tripID, true
}

func (h *TripHandler) index(c *gin.Context, param string) (int, bool) {
	idx, err := strconv.Atoi(c.Param(param))
	if err != nil || idx < 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_INDEX", param+" must be a non-negative integer")
		return 0, false
	}
	return idx, true
}
