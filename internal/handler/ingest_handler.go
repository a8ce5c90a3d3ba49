package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripfolio/internal/domain"
	"tripfolio/internal/service"
)

// IngestHandler handles travel document uploads.
type IngestHandler struct {
	ingestService service.IngestService
	maxFileBytes  int64
}

// NewIngestHandler creates a new IngestHandler. maxFileSizeMB bounds each
// uploaded file.
func NewIngestHandler(ingestService service.IngestService, maxFileSizeMB int64) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		maxFileBytes:  maxFileSizeMB * 1024 * 1024,
	}
}

// IngestToTrip handles POST /api/v1/trips/:id/documents
func (h *IngestHandler) IngestToTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_TRIP_ID", "trip id must be a valid UUID")
		return
	}
	h.ingest(c, &service.IngestInput{TripID: tripID})
}

// IngestNewTrip handles POST /api/v1/ingest
// Creates a trip from the uploaded documents; trip_name is an optional form field.
func (h *IngestHandler) IngestNewTrip(c *gin.Context) {
	h.ingest(c, &service.IngestInput{TripName: c.PostForm("trip_name")})
}

func (h *IngestHandler) ingest(c *gin.Context, input *service.IngestInput) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "expected multipart form data")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		HandleError(c, domain.ErrNoDocuments)
		return
	}

	docs := make([]domain.Document, 0, len(files))
	for _, header := range files {
		doc, err := h.readDocument(header)
		if err != nil {
			HandleError(c, err)
			return
		}
		docs = append(docs, *doc)
	}
	input.Documents = docs

	result, err := h.ingestService.IngestDocuments(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	if result.TripCreated {
		RespondCreated(c, result)
		return
	}
	RespondOK(c, result)
}

// readDocument validates one uploaded file's type and size and reads it fully.
func (h *IngestHandler) readDocument(header *multipart.FileHeader) (*domain.Document, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: .%s", domain.ErrUnsupportedFileType, ext)
	}
	if h.maxFileBytes > 0 && header.Size > h.maxFileBytes {
		return nil, domain.ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening uploaded file %q: %w", header.Filename, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading uploaded file %q: %w", header.Filename, err)
	}

	return &domain.Document{
		Filename:    header.Filename,
		ContentType: domain.AllowedFileTypes[fileType],
		Bytes:       data,
	}, nil
}
