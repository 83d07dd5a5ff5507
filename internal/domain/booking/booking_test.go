package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanease/service-booking/internal/domain"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(),
		uuid.New(),
		uuid.New(),
		time.Now().Add(24*time.Hour),
		"12 Jalan Ampang, Kuala Lumpur",
	)
	require.NoError(t, err)
	return bk
}

// assertProviderInvariant checks that the provider is absent exactly when the
// booking is Pending.
func assertProviderInvariant(t *testing.T, bk *Booking) {
	t.Helper()
	if bk.Status() == StatusPending {
		assert.Nil(t, bk.ProviderID())
	} else {
		assert.NotNil(t, bk.ProviderID())
	}
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusPending, bk.Status())
	assert.Nil(t, bk.ProviderID())
	assert.True(t, bk.IsAvailable())
	assert.Equal(t, int64(1), bk.Version())
	assertProviderInvariant(t, bk)
}

func TestNewBookingValidation(t *testing.T) {
	scheduled := time.Now().Add(time.Hour)

	_, err := NewBooking(uuid.Nil, uuid.New(), uuid.New(), scheduled, "addr")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.Nil, uuid.New(), scheduled, "addr")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), time.Time{}, "addr")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))

	_, err = NewBooking(uuid.New(), uuid.New(), uuid.New(), scheduled, "   ")
	assert.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestClaim(t *testing.T) {
	bk := newTestBooking(t)
	providerID := uuid.New()

	require.NoError(t, bk.Claim(providerID))

	assert.Equal(t, StatusAccepted, bk.Status())
	require.NotNil(t, bk.ProviderID())
	assert.Equal(t, providerID, *bk.ProviderID())
	assert.False(t, bk.IsAvailable())
	assertProviderInvariant(t, bk)
}

func TestClaimAlreadyClaimed(t *testing.T) {
	bk := newTestBooking(t)
	first := uuid.New()
	require.NoError(t, bk.Claim(first))

	err := bk.Claim(uuid.New())
	assert.True(t, domain.IsCode(err, domain.CodeAlreadyClaimed))
	assert.Equal(t, first, *bk.ProviderID(), "losing claim must not overwrite the winner")
}

func TestLifecycleHappyPath(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Claim(uuid.New()))
	assertProviderInvariant(t, bk)

	require.NoError(t, bk.Start())
	assert.Equal(t, StatusInProgress, bk.Status())
	assertProviderInvariant(t, bk)

	require.NoError(t, bk.Complete())
	assert.Equal(t, StatusCompleted, bk.Status())
	assert.True(t, bk.Status().IsTerminal())
	assertProviderInvariant(t, bk)
}

func TestSkippingStatesRejected(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Claim(uuid.New()))

	// Accepted -> Completed must go through InProgress.
	err := bk.Complete()
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTransition))
	assert.Equal(t, StatusAccepted, bk.Status(), "failed transition must leave the booking unchanged")
}

func TestStartBeforeClaimRejected(t *testing.T) {
	bk := newTestBooking(t)

	err := bk.Start()
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTransition))
	assert.Equal(t, StatusPending, bk.Status())
}

func TestCancelAssigned(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Claim(uuid.New()))

	require.NoError(t, bk.Cancel("customer unreachable"))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, "customer unreachable", bk.CancelNote())
	assert.NotNil(t, bk.CancelledAt())
	assertProviderInvariant(t, bk)
}

func TestCancelUnassignedRejected(t *testing.T) {
	// Unassigned bookings are disposed of by deletion; cancelling one would
	// break the provider-absent-iff-Pending invariant.
	bk := newTestBooking(t)

	err := bk.Cancel("changed my mind")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTransition))
	assert.Equal(t, StatusPending, bk.Status())
}

func TestCancelFromInProgress(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Claim(uuid.New()))
	require.NoError(t, bk.Start())

	require.NoError(t, bk.Cancel(""))
	assert.Equal(t, StatusCancelled, bk.Status())
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Claim(uuid.New()))
	require.NoError(t, bk.Start())
	require.NoError(t, bk.Complete())

	assert.Error(t, bk.Start())
	assert.Error(t, bk.Cancel(""))
	assert.Error(t, bk.Reschedule(time.Now().Add(48*time.Hour)))
	assert.Error(t, bk.ChangeAddress("elsewhere"))
	assert.Equal(t, StatusCompleted, bk.Status())
}

func TestRescheduleWhilePending(t *testing.T) {
	bk := newTestBooking(t)
	newTime := time.Now().Add(72 * time.Hour)

	require.NoError(t, bk.Reschedule(newTime))
	assert.Equal(t, newTime, bk.ScheduledAt())
	assert.Equal(t, StatusPending, bk.Status(), "editing must not change status")
}

func TestEditAfterClaimRejected(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Claim(uuid.New()))

	err := bk.Reschedule(time.Now().Add(72 * time.Hour))
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTransition))

	err = bk.ChangeAddress("99 Jalan Tun Razak")
	assert.True(t, domain.IsCode(err, domain.CodeInvalidTransition))
}

func TestCanBeDeleted(t *testing.T) {
	bk := newTestBooking(t)
	assert.True(t, bk.CanBeDeleted())

	require.NoError(t, bk.Claim(uuid.New()))
	assert.False(t, bk.CanBeDeleted())
}

func TestIncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
}
