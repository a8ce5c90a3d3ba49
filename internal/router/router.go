package router

import (
	"github.com/gin-gonic/gin"

	"tripfolio/internal/domain"
	"tripfolio/internal/handler"
	"tripfolio/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	ingestH *handler.IngestHandler,
	tripH *handler.TripHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Document ingestion
	v1.POST("/ingest", ingestH.IngestNewTrip)

	// Trip routes
	trips := v1.Group("/trips")
	trips.POST("", tripH.Create)
	trips.GET("", tripH.List)
	trips.GET("/:id", tripH.GetByID)
	trips.DELETE("/:id", tripH.Delete)
	trips.POST("/:id/documents", ingestH.IngestToTrip)
	trips.GET("/:id/export", tripH.Export)

	// Booking maintenance
	trips.PUT("/:id/flights/:index", tripH.UpdateFlight)
	trips.DELETE("/:id/flights/:index", tripH.DeleteFlight)
	trips.GET("/:id/flights/:index/attachment", tripH.AttachmentURL(domain.BookingFlight))
	trips.DELETE("/:id/flights/:index/passengers/:pindex", tripH.DeletePassenger)
	trips.PUT("/:id/hotels/:index", tripH.UpdateHotel)
	trips.DELETE("/:id/hotels/:index", tripH.DeleteHotel)
	trips.GET("/:id/hotels/:index/attachment", tripH.AttachmentURL(domain.BookingHotel))

	return r
}
