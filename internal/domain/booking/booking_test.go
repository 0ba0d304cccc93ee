package booking

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^BK-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{8}$`)

func TestGenerateID_Format(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		require.NoError(t, err)
		assert.Regexp(t, idPattern, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 100, "generated ids should not collide in a small sample")
}

func TestNewBooking_Defaults(t *testing.T) {
	travelDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	bk, err := NewBooking("Jane Doe", "jane@example.com", "Alps Trek", travelDate, "visas/a.jpg", "documents/b.pdf")
	require.NoError(t, err)

	assert.Regexp(t, idPattern, bk.ID())
	assert.Equal(t, StatusPending, bk.Status())
	assert.False(t, bk.CreatedAt().IsZero())
	assert.Nil(t, bk.UpdatedAt())
	assert.Equal(t, travelDate, bk.TravelDate())
}

func TestNewBooking_RequiresFields(t *testing.T) {
	travelDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewBooking("", "jane@example.com", "Alps Trek", travelDate, "v", "d")
	assert.Error(t, err)

	_, err = NewBooking("Jane Doe", "jane@example.com", "Alps Trek", travelDate, "", "d")
	assert.Error(t, err)
}

func TestUpdateStatus_StampsUpdatedAt(t *testing.T) {
	travelDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bk, err := NewBooking("Jane Doe", "jane@example.com", "Alps Trek", travelDate, "v", "d")
	require.NoError(t, err)

	createdAt := bk.CreatedAt()
	require.NoError(t, bk.UpdateStatus(StatusConfirmed))

	assert.Equal(t, StatusConfirmed, bk.Status())
	require.NotNil(t, bk.UpdatedAt())
	assert.False(t, bk.UpdatedAt().Before(createdAt))
	assert.Equal(t, createdAt, bk.CreatedAt(), "createdAt must never change")
}

func TestUpdateStatus_RejectsUnknown(t *testing.T) {
	travelDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bk, err := NewBooking("Jane Doe", "jane@example.com", "Alps Trek", travelDate, "v", "d")
	require.NoError(t, err)

	assert.Error(t, bk.UpdateStatus(Status("shipped")))
	assert.Equal(t, StatusPending, bk.Status())
}

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	travelDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bk, err := NewBooking("Jane Doe", "jane@example.com", "Alps Trek", travelDate, "v", "d")
	require.NoError(t, err)

	// completed is not terminal: the operator may move a booking back out.
	require.NoError(t, bk.UpdateStatus(StatusCompleted))
	require.NoError(t, bk.UpdateStatus(StatusPending))
	assert.Equal(t, StatusPending, bk.Status())
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "confirmed", "cancelled", "completed"} {
		status, err := ParseStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, status.String())
	}

	_, err := ParseStatus("archived")
	assert.Error(t, err)

	_, err = ParseStatus("Pending")
	assert.Error(t, err, "statuses are case sensitive")
}
