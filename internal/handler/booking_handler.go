package handler

import (
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/horizon-tours/service-booking/internal/application"
	bookingDomain "github.com/horizon-tours/service-booking/internal/domain/booking"
	"github.com/horizon-tours/service-booking/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.DELETE("/:id", h.DeleteBooking)
	}
}

// CreateBooking handles POST /api/bookings. The body is a multipart form with
// the text fields plus the visaFile and documentFile parts. A missing file
// part is reported as a validation error alongside any field violations, not
// as a bare 400.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	req := application.CreateBookingRequest{
		FullName:    c.PostForm("fullName"),
		Email:       c.PostForm("email"),
		TourPackage: c.PostForm("tourPackage"),
		TravelDate:  c.PostForm("travelDate"),
	}

	visa, closeVisa := openUpload(c, "visaFile")
	defer closeVisa()
	document, closeDocument := openUpload(c, "documentFile")
	defer closeDocument()
	req.Visa = visa
	req.Document = document

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Booking submitted successfully.", result)
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	result, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Bookings retrieved successfully.", result)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	result, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Booking retrieved successfully.", result)
}

// UpdateStatus handles PATCH /api/bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "request body must be JSON with a status field")
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Booking status updated successfully.", result)
}

// DeleteBooking handles DELETE /api/bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	if err := h.service.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "Booking deleted successfully.", nil)
}

// openUpload opens a multipart file part as a domain Upload. When the part is
// absent it returns nil so the service can report it as a field violation.
func openUpload(c *gin.Context, field string) (*bookingDomain.Upload, func()) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, func() {}
	}

	return &bookingDomain.Upload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: contentTypeOf(fh),
		Size:        fh.Size,
	}, func() { _ = f.Close() }
}

func contentTypeOf(fh *multipart.FileHeader) string {
	return fh.Header.Get("Content-Type")
}
