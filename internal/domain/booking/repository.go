package booking

import "context"

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id string) (*Booking, error)

	// Exists reports whether a booking with the given identifier is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// ListAll retrieves every booking, newest first (createdAt descending).
	ListAll(ctx context.Context) ([]*Booking, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking's record. Absence is not an error.
	Delete(ctx context.Context, id string) error
}
