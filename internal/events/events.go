package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents  = "booking.events"
	TopicIdentityEvents = "identity.events"
)

// Event types.
const (
	BookingCreated        = "booking.created"
	BookingClaimed        = "booking.claimed"
	BookingStatusChanged  = "booking.status_changed"
	BookingDeleted        = "booking.deleted"
	ProviderSkillsUpdated = "provider.skills_updated"
)

// BookingCreatedEvent is published when a customer creates a booking.
type BookingCreatedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	ServiceID   uuid.UUID `json:"service_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingClaimedEvent is published when a provider wins the claim on a booking.
type BookingClaimedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent is published on every provider status advance.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingDeletedEvent is published when a customer removes a Pending booking.
type BookingDeletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProviderSkillsUpdatedEvent is consumed from the identity service when a
// provider's skill set changes.
type ProviderSkillsUpdatedEvent struct {
	ProviderID  uuid.UUID   `json:"provider_id"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
	OccurredAt  time.Time   `json:"occurred_at"`
}
