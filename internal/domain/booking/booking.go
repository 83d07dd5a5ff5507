package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/urbanease/service-booking/internal/domain"
)

// Booking is the aggregate root for the booking domain. Status changes go
// through the behavior methods, which enforce the lifecycle state machine:
// a provider may only be set by Claim, and once the booking leaves Pending
// the customer-facing mutations (Reschedule, ChangeAddress, deletion) are
// rejected.
type Booking struct {
	id         uuid.UUID
	customerID uuid.UUID
	providerID *uuid.UUID
	serviceID  uuid.UUID
	categoryID uuid.UUID

	scheduledAt time.Time
	address     string

	status      BookingStatus
	cancelNote  string
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=Pending and no
// provider assigned.
func NewBooking(
	customerID uuid.UUID,
	serviceID uuid.UUID,
	categoryID uuid.UUID,
	scheduledAt time.Time,
	address string,
) (*Booking, error) {
	if customerID == uuid.Nil {
		return nil, domain.NewValidationError("customer ID is required")
	}
	if serviceID == uuid.Nil {
		return nil, domain.NewValidationError("service ID is required")
	}
	if categoryID == uuid.Nil {
		return nil, domain.NewValidationError("service category ID is required")
	}
	if scheduledAt.IsZero() {
		return nil, domain.NewValidationError("scheduled time is required")
	}
	if strings.TrimSpace(address) == "" {
		return nil, domain.NewValidationError("address is required")
	}

	now := time.Now().UTC()
	return &Booking{
		id:          uuid.New(),
		customerID:  customerID,
		serviceID:   serviceID,
		categoryID:  categoryID,
		scheduledAt: scheduledAt,
		address:     address,
		status:      StatusPending,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	customerID uuid.UUID,
	providerID *uuid.UUID,
	serviceID uuid.UUID,
	categoryID uuid.UUID,
	scheduledAt time.Time,
	address string,
	status BookingStatus,
	cancelNote string,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		customerID:  customerID,
		providerID:  providerID,
		serviceID:   serviceID,
		categoryID:  categoryID,
		scheduledAt: scheduledAt,
		address:     address,
		status:      status,
		cancelNote:  cancelNote,
		cancelledAt: cancelledAt,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// CustomerID returns the requesting customer's user ID.
func (b *Booking) CustomerID() uuid.UUID { return b.customerID }

// ProviderID returns the assigned provider's user ID, or nil if unassigned.
func (b *Booking) ProviderID() *uuid.UUID { return b.providerID }

// ServiceID returns the booked service offering's ID.
func (b *Booking) ServiceID() uuid.UUID { return b.serviceID }

// CategoryID returns the category of the booked service.
func (b *Booking) CategoryID() uuid.UUID { return b.categoryID }

// ScheduledAt returns the customer-supplied scheduled time.
func (b *Booking) ScheduledAt() time.Time { return b.scheduledAt }

// Address returns the free-text service location.
func (b *Booking) Address() string { return b.address }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// CancelNote returns the cancellation reason, if any.
func (b *Booking) CancelNote() string { return b.cancelNote }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// IsAssigned returns true if a provider has been assigned.
func (b *Booking) IsAssigned() bool { return b.providerID != nil }

// IsAvailable returns true if the booking can still be claimed: it is
// Pending and no provider has been assigned.
func (b *Booking) IsAvailable() bool {
	return b.status == StatusPending && b.providerID == nil
}

// --- Behavior ---

// Claim transitions the booking from Pending to Accepted and assigns the
// provider. The race between concurrent claimers is arbitrated by the
// repository's conditional commit; this method enforces the state graph for
// the single-writer path.
func (b *Booking) Claim(providerID uuid.UUID) error {
	if providerID == uuid.Nil {
		return domain.NewValidationError("provider ID is required")
	}
	if !b.IsAvailable() {
		return domain.NewAlreadyClaimedError("booking is not available to accept")
	}
	b.providerID = &providerID
	b.status = StatusAccepted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Start transitions the booking from Accepted to InProgress.
func (b *Booking) Start() error {
	if !b.status.CanTransitionTo(StatusInProgress) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusInProgress))
	}
	b.status = StatusInProgress
	b.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the booking from InProgress to Completed.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions an assigned booking to Cancelled. Unassigned Pending
// bookings are disposed of by deletion, never by this transition, so the
// provider-absent-iff-Pending invariant holds for every persisted booking.
func (b *Booking) Cancel(reason string) error {
	if b.providerID == nil {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Reschedule changes the scheduled time. Permitted only while Pending.
func (b *Booking) Reschedule(scheduledAt time.Time) error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError("only pending bookings can be edited")
	}
	if scheduledAt.IsZero() {
		return domain.NewValidationError("scheduled time is required")
	}
	b.scheduledAt = scheduledAt
	b.updatedAt = time.Now().UTC()
	return nil
}

// ChangeAddress changes the service location. Permitted only while Pending.
func (b *Booking) ChangeAddress(address string) error {
	if b.status != StatusPending {
		return domain.NewInvalidStateError("only pending bookings can be edited")
	}
	if strings.TrimSpace(address) == "" {
		return domain.NewValidationError("address is required")
	}
	b.address = address
	b.updatedAt = time.Now().UTC()
	return nil
}

// CanBeDeleted returns true if the booking may be removed by its customer:
// only unassigned Pending bookings qualify.
func (b *Booking) CanBeDeleted() bool {
	return b.IsAvailable()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
