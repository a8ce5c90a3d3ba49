package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripfolio/internal/domain"
	"tripfolio/internal/extractor"
	"tripfolio/internal/handler"
	"tripfolio/internal/service"
	"tripfolio/mocks"
)

func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("%PDF-1.4 test content"))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postIngest(t *testing.T, h *handler.IngestHandler, filenames ...string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, filenames...)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.IngestNewTrip(c)
	return w
}

func TestIngestHandler_Success(t *testing.T) {
	svc := new(mocks.MockIngestService)
	h := handler.NewIngestHandler(svc, 25)

	svc.On("IngestDocuments", mock.Anything, mock.AnythingOfType("*service.IngestInput")).
		Return(&service.IngestResult{
			Trip:         &domain.Trip{ID: uuid.New(), Name: "Tokyo 2026"},
			TripCreated:  true,
			AddedFlights: 1,
		}, nil)

	w := postIngest(t, h, "Boarding pass AZ1782.pdf")

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestIngestHandler_DuplicateBookingEnvelope(t *testing.T) {
	svc := new(mocks.MockIngestService)
	h := handler.NewIngestHandler(svc, 25)

	svc.On("IngestDocuments", mock.Anything, mock.Anything).
		Return(nil, &service.DuplicateBookingError{SkippedFlights: 2, SkippedHotels: 1})

	w := postIngest(t, h, "same.pdf")

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "duplicate", resp.Error.ErrorType)
	require.NotNil(t, resp.Error.DuplicateInfo)
	assert.Equal(t, 2, resp.Error.DuplicateInfo.SkippedFlights)
	assert.Equal(t, 1, resp.Error.DuplicateInfo.SkippedHotels)
}

func TestIngestHandler_RateLimitEnvelope(t *testing.T) {
	svc := new(mocks.MockIngestService)
	h := handler.NewIngestHandler(svc, 25)

	svc.On("IngestDocuments", mock.Anything, mock.Anything).
		Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 45))

	w := postIngest(t, h, "ticket.pdf")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "rate_limit", resp.Error.ErrorType)
	assert.Equal(t, 45, resp.Error.RetryAfterSeconds)
}

func TestIngestHandler_UnsupportedFileType(t *testing.T) {
	svc := new(mocks.MockIngestService)
	h := handler.NewIngestHandler(svc, 25)

	w := postIngest(t, h, "photo.jpg")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "IngestDocuments", mock.Anything, mock.Anything)
}

func TestIngestHandler_NoFiles(t *testing.T) {
	svc := new(mocks.MockIngestService)
	h := handler.NewIngestHandler(svc, 25)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("trip_name", "Tokyo 2026"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/ingest", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())

	h.IngestNewTrip(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestHandler_NoExtractableData(t *testing.T) {
	svc := new(mocks.MockIngestService)
	h := handler.NewIngestHandler(svc, 25)

	svc.On("IngestDocuments", mock.Anything, mock.Anything).
		Return(nil, domain.ErrNoExtractableData)

	w := postIngest(t, h, "blank.pdf")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
