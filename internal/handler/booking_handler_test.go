package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horizon-tours/service-booking/internal/application"
	"github.com/horizon-tours/service-booking/internal/metrics"
	"github.com/horizon-tours/service-booking/internal/repository"
	"github.com/horizon-tours/service-booking/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo, err := repository.NewFileBookingRepository(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	blobs, err := storage.NewDiskBlobStore(t.TempDir())
	require.NoError(t, err)

	m := metrics.NewWith(prometheus.NewRegistry(), "booking")
	service := application.NewBookingService(repo, blobs, m, zap.NewNop())

	router := gin.New()
	NewBookingHandler(service).RegisterRoutes(&router.RouterGroup)
	NewAdminBookingHandler(service).RegisterRoutes(&router.RouterGroup)
	NewHealthHandler("service-booking").RegisterRoutes(router)
	return router
}

type filePart struct {
	field       string
	filename    string
	contentType string
	size        int
}

func multipartBody(t *testing.T, fields map[string]string, files []filePart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("x"), f.size))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func validForm() (map[string]string, []filePart) {
	fields := map[string]string{
		"fullName":    "Jane Doe",
		"email":       "jane@example.com",
		"tourPackage": "Alps Trek",
		"travelDate":  "2025-06-01",
	}
	files := []filePart{
		{field: "visaFile", filename: "visa.jpg", contentType: "image/jpeg", size: 10 * 1024},
		{field: "documentFile", filename: "itinerary.pdf", contentType: "application/pdf", size: 200 * 1024},
	}
	return fields, files
}

func doRequest(router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestCreateListGetUpdateDelete_FullFlow(t *testing.T) {
	router := newTestRouter(t)

	// Create.
	fields, files := validForm()
	body, contentType := multipartBody(t, fields, files)
	rec := doRequest(router, http.MethodPost, "/api/bookings", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]any)
	id := data["id"].(string)
	assert.Regexp(t, `^BK-[A-Z2-9]{8}$`, id)
	assert.Equal(t, "pending", data["status"])

	// List contains exactly the created booking.
	rec = doRequest(router, http.MethodGet, "/api/bookings", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	envelope = decodeEnvelope(t, rec)
	list := envelope["data"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].(map[string]any)["id"])
	assert.Equal(t, "Jane Doe", list[0].(map[string]any)["fullName"])

	// Get by id.
	rec = doRequest(router, http.MethodGet, "/api/bookings/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Update status.
	statusBody := bytes.NewBufferString(`{"status":"confirmed"}`)
	rec = doRequest(router, http.MethodPatch, "/api/bookings/"+id+"/status", statusBody, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	envelope = decodeEnvelope(t, rec)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, "confirmed", data["status"])
	assert.NotEmpty(t, data["updatedAt"])

	// Delete, then the booking is gone.
	rec = doRequest(router, http.MethodDelete, "/api/bookings/"+id, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/bookings/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBooking_ValidationFailure(t *testing.T) {
	router := newTestRouter(t)

	fields, _ := validForm()
	delete(fields, "email")
	body, contentType := multipartBody(t, fields, nil)

	rec := doRequest(router, http.MethodPost, "/api/bookings", body, contentType)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
	errs := envelope["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "visaFile")
	assert.Contains(t, errs, "documentFile")
}

func TestGetBooking_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/bookings/BK-NOPENOPE", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope["success"])
}

func TestUpdateStatus_InvalidValue(t *testing.T) {
	router := newTestRouter(t)

	fields, files := validForm()
	body, contentType := multipartBody(t, fields, files)
	rec := doRequest(router, http.MethodPost, "/api/bookings", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeEnvelope(t, rec)["data"].(map[string]any)["id"].(string)

	statusBody := bytes.NewBufferString(`{"status":"shipped"}`)
	rec = doRequest(router, http.MethodPatch, "/api/bookings/"+id+"/status", statusBody, "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateStatus_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	statusBody := bytes.NewBufferString("not json")
	rec := doRequest(router, http.MethodPatch, "/api/bookings/BK-WHATEVER/status", statusBody, "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBooking_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, http.MethodDelete, "/api/bookings/BK-NOPENOPE", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminBookingStats(t *testing.T) {
	router := newTestRouter(t)

	fields, files := validForm()
	body, contentType := multipartBody(t, fields, files)
	rec := doRequest(router, http.MethodPost, "/api/bookings", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/admin/stats/bookings", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total_bookings"])
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/test", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "API is working"))
}
