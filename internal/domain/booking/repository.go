package booking

import (
	"context"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByCustomerID retrieves bookings created by a customer with pagination,
	// newest first.
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByProviderID retrieves bookings assigned to a provider, any status,
	// ordered by creation time ascending.
	FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*Booking, error)

	// FindOpenByCategories retrieves unassigned Pending bookings whose service
	// category is in the given set, ordered by creation time ascending.
	FindOpenByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]*Booking, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, b *Booking) error

	// Claim atomically assigns the provider and moves the booking to Accepted,
	// but only if it is still Pending and unassigned. Exactly one of any set of
	// concurrent callers succeeds; the rest get an already-claimed error.
	Claim(ctx context.Context, id, providerID uuid.UUID) error

	// Delete removes a booking. Callers must ensure the booking is an
	// unassigned Pending one; no other disposition goes through deletion.
	Delete(ctx context.Context, id uuid.UUID) error
}
