package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/horizon-tours/service-booking/internal/apperr"
	bookingDomain "github.com/horizon-tours/service-booking/internal/domain/booking"
	"github.com/horizon-tours/service-booking/internal/metrics"
)

const (
	maxVisaBytes     = 2048 * 1024
	maxDocBytes      = 4096 * 1024
	travelDateLayout = time.DateOnly

	// How many times a generated id is checked against existing records
	// before giving up. Collisions are astronomically unlikely at this
	// system's volume; the retry is defensive only.
	idAttempts = 3
)

var visaContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

var visaExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

var documentContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

var documentExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	FullName    string `validate:"required,max=255"`
	Email       string `validate:"required,email,max=255"`
	TourPackage string `validate:"required,max=255"`
	TravelDate  string `validate:"required"`
	Visa        *bookingDomain.Upload
	Document    *bookingDomain.Upload
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID               string     `json:"id"`
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	TourPackage      string     `json:"tourPackage"`
	TravelDate       string     `json:"travelDate"`
	VisaFilePath     string     `json:"visaFilePath"`
	DocumentFilePath string     `json:"documentFilePath"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo     bookingDomain.Repository
	blobs    bookingDomain.BlobStore
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	blobs bookingDomain.BlobStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		blobs:    blobs,
		validate: validator.New(),
		metrics:  m,
		logger:   logger,
	}
}

// CreateBooking validates the submission, stores both uploads, and persists a
// new booking with status=pending. Validation runs in full before any storage
// side effect; a blob already written when a later step fails is not rolled
// back (the orphaned paths are logged instead).
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*BookingDTO, error) {
	fieldErrors, travelDate := s.validateCreate(req)
	if len(fieldErrors) > 0 {
		return nil, apperr.NewValidationError(fieldErrors)
	}

	visaPath, err := s.blobs.Save(ctx, bookingDomain.CategoryVisas, *req.Visa)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("create_booking").Inc()
		return nil, err
	}

	documentPath, err := s.blobs.Save(ctx, bookingDomain.CategoryDocuments, *req.Document)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("create_booking").Inc()
		s.logger.Error("document upload failed after visa blob was written",
			zap.String("orphaned_visa_path", visaPath),
			zap.Error(err),
		)
		return nil, err
	}

	bk, err := s.newBookingWithFreshID(ctx, req, travelDate, visaPath, documentPath)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("create_booking").Inc()
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("create_booking").Inc()
		s.logger.Error("booking record write failed after blobs were written",
			zap.String("orphaned_visa_path", visaPath),
			zap.String("orphaned_document_path", documentPath),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.BookingsCreated.Inc()
	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID()),
		zap.String("tour_package", bk.TourPackage()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns every booking, newest first.
func (s *BookingService) ListBookings(ctx context.Context) ([]BookingDTO, error) {
	bookings, err := s.repo.ListAll(ctx)
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("list_bookings").Inc()
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateStatus moves a booking to the given status and stamps updatedAt.
func (s *BookingService) UpdateStatus(ctx context.Context, id, newStatus string) (*BookingDTO, error) {
	status, err := bookingDomain.ParseStatus(newStatus)
	if err != nil {
		return nil, apperr.NewValidationError(map[string]string{
			"status": fmt.Sprintf("status must be one of pending, confirmed, cancelled, completed; got %q", newStatus),
		})
	}

	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := bk.UpdateStatus(status); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, bk); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("update_status").Inc()
		return nil, err
	}

	s.metrics.StatusUpdates.Inc()
	s.logger.Info("booking status updated",
		zap.String("booking_id", id),
		zap.String("status", status.String()),
	)

	result := toBookingDTO(bk)
	return &result, nil
}

// DeleteBooking removes a booking's blobs (best effort) and its record.
// Blob deletion failures are logged and do not block record deletion.
func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	for _, path := range []string{bk.VisaFilePath(), bk.DocumentFilePath()} {
		if path == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, path); err != nil {
			s.metrics.ErrorsCount.WithLabelValues("delete_blob").Inc()
			s.logger.Warn("blob deletion failed, continuing with record delete",
				zap.String("booking_id", id),
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("delete_booking").Inc()
		return err
	}

	s.metrics.BookingsDeleted.Inc()
	s.logger.Info("booking deleted", zap.String("booking_id", id))
	return nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// validateCreate checks every rule and returns all violations at once, plus
// the parsed travel date when it is well-formed.
func (s *BookingService) validateCreate(req CreateBookingRequest) (map[string]string, time.Time) {
	fieldErrors := make(map[string]string)

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				name, msg := describeFieldError(fe)
				fieldErrors[name] = msg
			}
		} else {
			fieldErrors["request"] = err.Error()
		}
	}

	var travelDate time.Time
	if req.TravelDate != "" {
		var err error
		travelDate, err = time.Parse(travelDateLayout, req.TravelDate)
		if err != nil {
			fieldErrors["travelDate"] = "travelDate must be a valid date in YYYY-MM-DD format"
		}
	}

	if msg := checkUpload(req.Visa, visaContentTypes, visaExtensions, maxVisaBytes, "jpg, jpeg or png image"); msg != "" {
		fieldErrors["visaFile"] = msg
	}
	if msg := checkUpload(req.Document, documentContentTypes, documentExtensions, maxDocBytes, "pdf, doc, docx, jpg, jpeg or png file"); msg != "" {
		fieldErrors["documentFile"] = msg
	}

	return fieldErrors, travelDate
}

func describeFieldError(fe validator.FieldError) (string, string) {
	name := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return name, name + " is required"
	case "max":
		return name, fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "email":
		return name, "email must be a valid email address"
	default:
		return name, fmt.Sprintf("%s is invalid (%s)", name, fe.Tag())
	}
}

func jsonFieldName(structField string) string {
	switch structField {
	case "FullName":
		return "fullName"
	case "Email":
		return "email"
	case "TourPackage":
		return "tourPackage"
	case "TravelDate":
		return "travelDate"
	default:
		return structField
	}
}

func checkUpload(upload *bookingDomain.Upload, contentTypes, extensions map[string]struct{}, maxBytes int64, allowed string) string {
	if upload == nil || upload.Reader == nil {
		return "file is required"
	}
	if upload.Size > maxBytes {
		return fmt.Sprintf("file exceeds the %d KB limit", maxBytes/1024)
	}
	if !typeAllowed(upload, contentTypes, extensions) {
		return "file must be a " + allowed
	}
	return ""
}

// typeAllowed accepts either a recognized declared MIME type or, when the
// declared type is generic, a recognized file extension.
func typeAllowed(upload *bookingDomain.Upload, contentTypes, extensions map[string]struct{}) bool {
	ct := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if _, ok := contentTypes[ct]; ok {
		return true
	}
	if ct == "" || ct == "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(upload.Filename))
		_, ok := extensions[ext]
		return ok
	}
	return false
}

func (s *BookingService) newBookingWithFreshID(ctx context.Context, req CreateBookingRequest, travelDate time.Time, visaPath, documentPath string) (*bookingDomain.Booking, error) {
	for attempt := 0; attempt < idAttempts; attempt++ {
		bk, err := bookingDomain.NewBooking(
			req.FullName,
			req.Email,
			req.TourPackage,
			travelDate,
			visaPath,
			documentPath,
		)
		if err != nil {
			return nil, err
		}

		taken, err := s.repo.Exists(ctx, bk.ID())
		if err != nil {
			return nil, err
		}
		if !taken {
			return bk, nil
		}
		s.logger.Warn("booking id collision, regenerating", zap.String("booking_id", bk.ID()))
	}
	return nil, apperr.NewStorageError("generate booking id", fmt.Errorf("exhausted %d attempts", idAttempts))
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:               bk.ID(),
		FullName:         bk.FullName(),
		Email:            bk.Email(),
		TourPackage:      bk.TourPackage(),
		TravelDate:       bk.TravelDate().Format(travelDateLayout),
		VisaFilePath:     bk.VisaFilePath(),
		DocumentFilePath: bk.DocumentFilePath(),
		Status:           bk.Status().String(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}
