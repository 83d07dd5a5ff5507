package authz

import (
	"github.com/google/uuid"

	"github.com/urbanease/service-booking/internal/domain"
	"github.com/urbanease/service-booking/internal/domain/booking"
	"github.com/urbanease/service-booking/internal/domain/provider"
)

// Role is the closed set of actor roles known to the booking service.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleProvider
}

// Actor is an authenticated caller. The identity service authenticates users;
// this service only dispatches on the role claim it issued.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Guard decides whether an actor may perform a given action on a given
// booking. Every check either passes or returns a domain error; there is no
// silent allow. Ownership mismatches on customer actions come back as
// not-found rather than forbidden so customers cannot probe for other
// customers' booking IDs.
type Guard struct{}

// NewGuard creates a Guard.
func NewGuard() Guard {
	return Guard{}
}

// CanCreateBooking checks that the actor may create a booking as its customer.
func (Guard) CanCreateBooking(actor Actor) error {
	if actor.Role != RoleCustomer {
		return domain.NewForbiddenError("only customers can create bookings")
	}
	return nil
}

// CanListOwnBookings checks that the actor may list bookings it created.
func (Guard) CanListOwnBookings(actor Actor) error {
	if actor.Role != RoleCustomer {
		return domain.NewForbiddenError("only customers can list their bookings")
	}
	return nil
}

// CanListIncoming checks that the actor may view the provider booking feed.
func (Guard) CanListIncoming(actor Actor) error {
	if actor.Role != RoleProvider {
		return domain.NewForbiddenError("only providers can view incoming bookings")
	}
	return nil
}

// CanViewBooking checks that the actor may read a single booking. Customers
// see their own bookings; providers see bookings assigned to them and open
// bookings matching their skills. The profile may be nil for customers.
func (Guard) CanViewBooking(actor Actor, b *booking.Booking, profile *provider.Profile) error {
	switch actor.Role {
	case RoleCustomer:
		if b.CustomerID() != actor.ID {
			return domain.NewNotFoundError("Booking", b.ID().String())
		}
		return nil
	case RoleProvider:
		if b.ProviderID() != nil && *b.ProviderID() == actor.ID {
			return nil
		}
		if b.IsAvailable() && profile != nil && profile.HasSkill(b.CategoryID()) {
			return nil
		}
		return domain.NewNotFoundError("Booking", b.ID().String())
	default:
		return domain.NewForbiddenError("unknown role")
	}
}

// CanEditBooking checks that the actor owns the booking as its customer.
// Lifecycle gating (Pending only) is the aggregate's job.
func (Guard) CanEditBooking(actor Actor, b *booking.Booking) error {
	if actor.Role != RoleCustomer {
		return domain.NewForbiddenError("only customers can edit bookings")
	}
	if b.CustomerID() != actor.ID {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	return nil
}

// CanDeleteBooking checks that the actor owns the booking as its customer.
func (g Guard) CanDeleteBooking(actor Actor, b *booking.Booking) error {
	if actor.Role != RoleCustomer {
		return domain.NewForbiddenError("only customers can cancel their bookings")
	}
	if b.CustomerID() != actor.ID {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	return nil
}

// CanClaimBooking checks that the actor is a provider whose skill set covers
// the booking's service category. Availability (still Pending and unassigned)
// is checked separately so a lost race reports already-claimed, not forbidden.
func (Guard) CanClaimBooking(actor Actor, b *booking.Booking, profile *provider.Profile) error {
	if actor.Role != RoleProvider {
		return domain.NewForbiddenError("only providers can accept bookings")
	}
	if !profile.HasSkill(b.CategoryID()) {
		return domain.NewForbiddenError("provider does not have the required skill for this service")
	}
	return nil
}

// CanAdvanceStatus checks that the actor is the provider assigned to the
// booking. Which target states are reachable is the state machine's job.
func (Guard) CanAdvanceStatus(actor Actor, b *booking.Booking) error {
	if actor.Role != RoleProvider {
		return domain.NewForbiddenError("only providers can change booking status")
	}
	if b.ProviderID() == nil || *b.ProviderID() != actor.ID {
		return domain.NewForbiddenError("provider is not assigned to this booking")
	}
	return nil
}
