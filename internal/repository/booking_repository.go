package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/horizon-tours/service-booking/internal/apperr"
	bookingDomain "github.com/horizon-tours/service-booking/internal/domain/booking"
)

const (
	recordsSubdir = "bookings"
	recordExt     = ".json"
)

// bookingRecord is the on-disk JSON document for a single booking.
type bookingRecord struct {
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

// FileBookingRepository implements booking.Repository with one JSON document
// per booking under <dataDir>/bookings. Writes go through a temp file and an
// atomic rename so a concurrent reader never observes a truncated document.
type FileBookingRepository struct {
	dir    string
	logger *zap.Logger
}

// NewFileBookingRepository creates the repository and its records directory.
func NewFileBookingRepository(dataDir string, logger *zap.Logger) (*FileBookingRepository, error) {
	dir := filepath.Join(dataDir, recordsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.NewStorageError("create records directory", err)
	}
	return &FileBookingRepository{dir: dir, logger: logger}, nil
}

// Save persists a new booking.
func (r *FileBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.write(bk)
}

// Update persists changes to an existing booking. Same write path as Save;
// last writer wins on concurrent updates to the same id.
func (r *FileBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.write(bk)
}

func (r *FileBookingRepository) write(bk *bookingDomain.Booking) error {
	rec := toRecord(bk)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return apperr.NewStorageError("encode booking record", err)
	}

	tmp, err := os.CreateTemp(r.dir, rec.ID+".*.tmp")
	if err != nil {
		return apperr.NewStorageError("create temp record file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return apperr.NewStorageError("write booking record", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return apperr.NewStorageError("close booking record", err)
	}
	if err := os.Rename(tmpName, r.recordPath(rec.ID)); err != nil {
		_ = os.Remove(tmpName)
		return apperr.NewStorageError("rename booking record", err)
	}
	return nil
}

// FindByID retrieves a booking by its identifier.
func (r *FileBookingRepository) FindByID(ctx context.Context, id string) (*bookingDomain.Booking, error) {
	data, err := os.ReadFile(r.recordPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.NewNotFound("booking", id)
	}
	if err != nil {
		return nil, apperr.NewStorageError("read booking record", err)
	}

	bk, err := parseRecord(data)
	if err != nil {
		return nil, apperr.NewStorageError("decode booking record", err)
	}
	return bk, nil
}

// Exists reports whether a record document is present for the given id.
func (r *FileBookingRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := os.Stat(r.recordPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, apperr.NewStorageError("stat booking record", err)
	}
	return true, nil
}

// ListAll retrieves every booking sorted by createdAt descending. Documents
// that fail to parse are skipped so one corrupt file cannot break the whole
// listing.
func (r *FileBookingRepository) ListAll(ctx context.Context) ([]*bookingDomain.Booking, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, apperr.NewStorageError("scan records directory", err)
	}

	bookings := make([]*bookingDomain.Booking, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			r.logger.Warn("skipping unreadable booking record",
				zap.String("file", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		bk, err := parseRecord(data)
		if err != nil {
			r.logger.Warn("skipping unparsable booking record",
				zap.String("file", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		bookings = append(bookings, bk)
	}

	// Stable sort keeps scan order for identical timestamps.
	sort.SliceStable(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt().After(bookings[j].CreatedAt())
	})
	return bookings, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *FileBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	bookings, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, bk := range bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

// Delete removes the record document if present. Absence is not an error.
func (r *FileBookingRepository) Delete(ctx context.Context, id string) error {
	err := os.Remove(r.recordPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.NewStorageError("delete booking record", err)
	}
	return nil
}

func (r *FileBookingRepository) recordPath(id string) string {
	return filepath.Join(r.dir, id+recordExt)
}

func toRecord(bk *bookingDomain.Booking) bookingRecord {
	return bookingRecord{
		ID:               bk.ID(),
		FullName:         bk.FullName(),
		Email:            bk.Email(),
		TourPackage:      bk.TourPackage(),
		TravelDate:       bk.TravelDate().Format(time.DateOnly),
		VisaFilePath:     bk.VisaFilePath(),
		DocumentFilePath: bk.DocumentFilePath(),
		Status:           bk.Status().String(),
		CreatedAt:        bk.CreatedAt(),
		UpdatedAt:        bk.UpdatedAt(),
	}
}

func parseRecord(data []byte) (*bookingDomain.Booking, error) {
	var rec bookingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("record has no id")
	}
	status, err := bookingDomain.ParseStatus(rec.Status)
	if err != nil {
		return nil, err
	}
	travelDate, err := time.Parse(time.DateOnly, rec.TravelDate)
	if err != nil {
		return nil, fmt.Errorf("invalid travel date %q: %w", rec.TravelDate, err)
	}

	return bookingDomain.Reconstruct(
		rec.ID,
		rec.FullName,
		rec.Email,
		rec.TourPackage,
		travelDate,
		rec.VisaFilePath,
		rec.DocumentFilePath,
		status,
		rec.CreatedAt,
		rec.UpdatedAt,
	), nil
}
