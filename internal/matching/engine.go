package matching

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/urbanease/service-booking/internal/domain/booking"
	"github.com/urbanease/service-booking/internal/domain/provider"
)

// Engine computes the set of bookings visible to a provider: open work the
// provider is qualified for, plus work already assigned to them. The union is
// composed here, in Go, from two repository queries, so the visibility
// predicate does not depend on any storage engine's query language.
type Engine struct {
	bookings booking.BookingRepository
	profiles provider.ProfileRepository
}

// NewEngine creates a matching Engine.
func NewEngine(bookings booking.BookingRepository, profiles provider.ProfileRepository) *Engine {
	return &Engine{bookings: bookings, profiles: profiles}
}

// VisibleTo returns every booking the provider may see, ordered by creation
// time ascending. The provider's skills are read fresh on every call; a
// booking assigned to the provider stays visible even if their skills no
// longer cover its category.
func (e *Engine) VisibleTo(ctx context.Context, providerID uuid.UUID) ([]*booking.Booking, error) {
	profile, err := e.profiles.FindByUserID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	open, err := e.bookings.FindOpenByCategories(ctx, profile.Skills())
	if err != nil {
		return nil, err
	}

	assigned, err := e.bookings.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(open)+len(assigned))
	visible := make([]*booking.Booking, 0, len(open)+len(assigned))
	for _, b := range append(open, assigned...) {
		if _, ok := seen[b.ID()]; ok {
			continue
		}
		seen[b.ID()] = struct{}{}
		visible = append(visible, b)
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt().Before(visible[j].CreatedAt())
	})
	return visible, nil
}
