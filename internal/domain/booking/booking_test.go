package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maker-atelier/service-booking/pkg/domain"
)

func newPendingBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := NewBooking(uuid.New(), nil, "Aiko Tanaka", "aiko@example.com", 2, 10000, 1000, nil, "SAVE10", "JPY")
	require.NoError(t, err)
	return b
}

func TestNewBooking(t *testing.T) {
	b := newPendingBooking(t)

	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, int64(10000), b.Amount())
	assert.Equal(t, int64(1000), b.DiscountAmount())
	assert.Equal(t, int64(9000), b.FinalAmount())
	assert.Equal(t, int64(1), b.Version())
}

func TestNewBooking_Validation(t *testing.T) {
	_, err := NewBooking(uuid.New(), nil, "A", "a@example.com", 0, 10000, 0, nil, "", "JPY")
	assert.Error(t, err, "zero participants")

	_, err = NewBooking(uuid.New(), nil, "A", "a@example.com", 1, 0, 0, nil, "", "JPY")
	assert.Error(t, err, "zero amount")

	_, err = NewBooking(uuid.New(), nil, "A", "a@example.com", 1, 1000, 2000, nil, "", "JPY")
	assert.Error(t, err, "discount exceeding amount")
}

func TestConfirm(t *testing.T) {
	b := newPendingBooking(t)

	require.NoError(t, b.Confirm())
	assert.Equal(t, StatusConfirmed, b.Status())
	assert.NotNil(t, b.ConfirmedAt())

	// A second confirm is an invalid transition; callers treat it as a no-op
	// before reaching the aggregate.
	err := b.Confirm()
	require.Error(t, err)
	assert.Equal(t, "invalid_state", domain.CodeOf(err))
}

func TestCancel(t *testing.T) {
	b := newPendingBooking(t)

	require.NoError(t, b.Cancel("customer request"))
	assert.Equal(t, StatusCancelled, b.Status())
	assert.Equal(t, "customer request", b.CancelReason())
	assert.NotNil(t, b.CancelledAt())
}

func TestCancel_ConfirmedBooking(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Confirm())

	assert.NoError(t, b.Cancel("workshop rescheduled"))
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Cancel("first"))

	err := b.Cancel("second")
	require.Error(t, err)
	assert.Equal(t, "invalid_state", domain.CodeOf(err))
}

func TestExpire(t *testing.T) {
	b := newPendingBooking(t)

	require.NoError(t, b.Expire())
	assert.Equal(t, StatusExpired, b.Status())
}

func TestExpire_NonPending(t *testing.T) {
	b := newPendingBooking(t)
	require.NoError(t, b.Confirm())

	err := b.Expire()
	require.Error(t, err)
	assert.Equal(t, "invalid_state", domain.CodeOf(err))
}

func TestAttachCheckoutSession(t *testing.T) {
	b := newPendingBooking(t)
	b.AttachCheckoutSession("cs_test_123")
	assert.Equal(t, "cs_test_123", b.CheckoutSessionID())
}

func TestIncrementVersion(t *testing.T) {
	b := newPendingBooking(t)
	b.IncrementVersion()
	assert.Equal(t, int64(2), b.Version())
}
