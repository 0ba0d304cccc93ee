package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// bookingIDChars omits ambiguous characters (0/O, 1/I) so identifiers stay
// human-scannable.
const bookingIDChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const bookingIDLength = 8

// Booking is the aggregate root for a tour booking.
type Booking struct {
	id               string
	fullName         string
	email            string
	tourPackage      string
	travelDate       time.Time
	visaFilePath     string
	documentFilePath string
	status           Status
	createdAt        time.Time
	updatedAt        *time.Time
}

// GenerateID creates a booking identifier in the format "BK-XXXXXXXX".
func GenerateID() (string, error) {
	result := make([]byte, bookingIDLength)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingIDChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking ID: %w", err)
		}
		result[i] = bookingIDChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending and a
// freshly generated identifier. Field validation happens in the application
// layer before this is called; only structural requirements are checked here.
func NewBooking(fullName, email, tourPackage string, travelDate time.Time, visaFilePath, documentFilePath string) (*Booking, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("full name is required")
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if visaFilePath == "" || documentFilePath == "" {
		return nil, fmt.Errorf("both file paths are required")
	}

	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:               id,
		fullName:         fullName,
		email:            email,
		tourPackage:      tourPackage,
		travelDate:       travelDate,
		visaFilePath:     visaFilePath,
		documentFilePath: documentFilePath,
		status:           StatusPending,
		createdAt:        time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Booking from persistence.
func Reconstruct(id, fullName, email, tourPackage string, travelDate time.Time, visaFilePath, documentFilePath string, status Status, createdAt time.Time, updatedAt *time.Time) *Booking {
	return &Booking{
		id:               id,
		fullName:         fullName,
		email:            email,
		tourPackage:      tourPackage,
		travelDate:       travelDate,
		visaFilePath:     visaFilePath,
		documentFilePath: documentFilePath,
		status:           status,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// UpdateStatus moves the booking to the given status and stamps updatedAt.
// createdAt is never touched after construction.
func (b *Booking) UpdateStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid booking status: %s", status)
	}
	now := time.Now().UTC()
	b.status = status
	b.updatedAt = &now
	return nil
}

// Getters.
func (b *Booking) ID() string               { return b.id }
func (b *Booking) FullName() string         { return b.fullName }
func (b *Booking) Email() string            { return b.email }
func (b *Booking) TourPackage() string      { return b.tourPackage }
func (b *Booking) TravelDate() time.Time    { return b.travelDate }
func (b *Booking) VisaFilePath() string     { return b.visaFilePath }
func (b *Booking) DocumentFilePath() string { return b.documentFilePath }
func (b *Booking) Status() Status           { return b.status }
func (b *Booking) CreatedAt() time.Time     { return b.createdAt }
func (b *Booking) UpdatedAt() *time.Time    { return b.updatedAt }
