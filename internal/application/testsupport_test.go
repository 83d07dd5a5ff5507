package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/urbanease/service-booking/internal/domain"
	"github.com/urbanease/service-booking/internal/domain/booking"
	"github.com/urbanease/service-booking/internal/domain/catalog"
	"github.com/urbanease/service-booking/internal/domain/provider"
	"github.com/urbanease/service-booking/internal/kafka"
)

// memBookingRepo is an in-memory BookingRepository with the same commit
// semantics as the Postgres one: snapshots on read/write, version-guarded
// updates, and a mutex-serialized conditional claim.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*booking.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*booking.Booking)}
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	var providerID *uuid.UUID
	if b.ProviderID() != nil {
		id := *b.ProviderID()
		providerID = &id
	}
	return booking.ReconstructBooking(
		b.ID(), b.CustomerID(), providerID, b.ServiceID(), b.CategoryID(),
		b.ScheduledAt(), b.Address(), b.Status(), b.CancelNote(), b.CancelledAt(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func (r *memBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(b), nil
}

func (r *memBookingRepo) FindByCustomerID(_ context.Context, customerID uuid.UUID, page, limit int) ([]*booking.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.CustomerID() == customerID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, int64(len(out)), nil
}

func (r *memBookingRepo) FindByProviderID(_ context.Context, providerID uuid.UUID) ([]*booking.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.ProviderID() != nil && *b.ProviderID() == providerID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *memBookingRepo) FindOpenByCategories(_ context.Context, categoryIDs []uuid.UUID) ([]*booking.Booking, error) {
	want := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		want[id] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*booking.Booking
	for _, b := range r.bookings {
		if _, ok := want[b.CategoryID()]; ok && b.IsAvailable() {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *memBookingRepo) Save(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *memBookingRepo) Update(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.bookings[b.ID()]
	if !ok || current.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r *memBookingRepo) Claim(_ context.Context, id, providerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.bookings[id]
	if !ok || !current.IsAvailable() {
		return domain.NewAlreadyClaimedError("booking is not available to accept")
	}
	claimed := cloneBooking(current)
	if err := claimed.Claim(providerID); err != nil {
		return err
	}
	claimed.IncrementVersion()
	r.bookings[id] = claimed
	return nil
}

func (r *memBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", id.String())
	}
	delete(r.bookings, id)
	return nil
}

// memProfileRepo is an in-memory ProfileRepository.
type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*provider.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[uuid.UUID]*provider.Profile)}
}

func (r *memProfileRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*provider.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.NewNotFoundError("ProviderProfile", userID.String())
	}
	return provider.ReconstructProfile(p.UserID(), p.Skills(), p.UpdatedAt()), nil
}

func (r *memProfileRepo) Upsert(_ context.Context, p *provider.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID()] = provider.ReconstructProfile(p.UserID(), p.Skills(), p.UpdatedAt())
	return nil
}

// memCatalog is an in-memory service catalog.
type memCatalog struct {
	services map[uuid.UUID]*catalog.Service
}

func newMemCatalog() *memCatalog {
	return &memCatalog{services: make(map[uuid.UUID]*catalog.Service)}
}

func (c *memCatalog) ServiceByID(_ context.Context, id uuid.UUID) (*catalog.Service, error) {
	svc, ok := c.services[id]
	if !ok {
		return nil, domain.NewNotFoundError("Service", id.String())
	}
	return svc, nil
}

// recordingPublisher captures published events instead of writing to Kafka.
type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, evt := range p.events {
		types[i] = evt.Type
	}
	return types
}
