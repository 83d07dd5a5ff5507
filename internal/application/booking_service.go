package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/urbanease/service-booking/internal/authz"
	"github.com/urbanease/service-booking/internal/domain"
	bookingDomain "github.com/urbanease/service-booking/internal/domain/booking"
	"github.com/urbanease/service-booking/internal/domain/catalog"
	providerDomain "github.com/urbanease/service-booking/internal/domain/provider"
	"github.com/urbanease/service-booking/internal/events"
	"github.com/urbanease/service-booking/internal/kafka"
	"github.com/urbanease/service-booking/internal/matching"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ServiceID   uuid.UUID `json:"service_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Address     string    `json:"address" binding:"required"`
}

// UpdateBookingRequest holds the customer-editable booking fields. Nil fields
// are left unchanged.
type UpdateBookingRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Address     *string    `json:"address"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID          uuid.UUID  `json:"id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	ProviderID  *uuid.UUID `json:"provider_id,omitempty"`
	ServiceID   uuid.UUID  `json:"service_id"`
	CategoryID  uuid.UUID  `json:"category_id"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Address     string     `json:"address"`
	Status      string     `json:"status"`
	CancelNote  string     `json:"cancel_note,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
// Every request passes the authorization guard first; claims and status
// changes then go through the aggregate's state machine, with the claim
// committed through the repository's conditional update.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	profiles providerDomain.ProfileRepository
	catalog  catalog.Catalog
	matcher  *matching.Engine
	guard    authz.Guard
	producer kafka.EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	profiles providerDomain.ProfileRepository,
	cat catalog.Catalog,
	matcher *matching.Engine,
	guard authz.Guard,
	producer kafka.EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		profiles: profiles,
		catalog:  cat,
		matcher:  matcher,
		guard:    guard,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a new Pending booking for the acting customer.
func (s *BookingService) CreateBooking(ctx context.Context, actor authz.Actor, req CreateBookingRequest) (*BookingDTO, error) {
	if err := s.guard.CanCreateBooking(actor); err != nil {
		return nil, err
	}

	svc, err := s.catalog.ServiceByID(ctx, req.ServiceID)
	if err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown service: %s", req.ServiceID))
		}
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(actor.ID, svc.ID, svc.CategoryID, req.ScheduledAt, req.Address)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), events.BookingCreatedEvent{
		BookingID:   bk.ID(),
		CustomerID:  bk.CustomerID(),
		ServiceID:   bk.ServiceID(),
		CategoryID:  bk.CategoryID(),
		ScheduledAt: bk.ScheduledAt(),
		OccurredAt:  time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ListCustomerBookings retrieves paginated bookings created by the actor.
func (s *BookingService) ListCustomerBookings(ctx context.Context, actor authz.Actor, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	if err := s.guard.CanListOwnBookings(actor); err != nil {
		return nil, err
	}

	bookings, total, err := s.repo.FindByCustomerID(ctx, actor.ID, page, limit)
	if err != nil {
		return nil, err
	}

	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// IncomingBookings retrieves the provider feed: open bookings matching the
// provider's skills plus bookings already assigned to them.
func (s *BookingService) IncomingBookings(ctx context.Context, actor authz.Actor) ([]BookingDTO, error) {
	if err := s.guard.CanListIncoming(actor); err != nil {
		return nil, err
	}

	bookings, err := s.matcher.VisibleTo(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// GetBooking retrieves a single booking the actor is allowed to see.
func (s *BookingService) GetBooking(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var profile *providerDomain.Profile
	if actor.Role == authz.RoleProvider {
		profile, err = s.profiles.FindByUserID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
	}
	if err := s.guard.CanViewBooking(actor, bk, profile); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ClaimBooking assigns the acting provider to an open booking. The repository
// commit is conditional on the booking still being Pending and unassigned, so
// of N concurrent claimers exactly one succeeds and the rest get an
// already-claimed error.
func (s *BookingService) ClaimBooking(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) (*BookingDTO, error) {
	if actor.Role != authz.RoleProvider {
		return nil, domain.NewForbiddenError("only providers can accept bookings")
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsAvailable() {
		return nil, domain.NewAlreadyClaimedError("booking is not available to accept")
	}

	profile, err := s.profiles.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanClaimBooking(actor, bk, profile); err != nil {
		return nil, err
	}

	if err := s.repo.Claim(ctx, bookingID, actor.ID); err != nil {
		return nil, err
	}

	// Re-read the committed row rather than patching the stale aggregate.
	bk, err = s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingClaimed, bk.ID().String(), events.BookingClaimedEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		ProviderID: actor.ID,
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AdvanceStatus moves an assigned booking forward along the lifecycle. Only
// the assigned provider may do this, and only to InProgress, Completed or
// Cancelled along the transition table.
func (s *BookingService) AdvanceStatus(ctx context.Context, actor authz.Actor, bookingID uuid.UUID, target string, note string) (*BookingDTO, error) {
	status, err := bookingDomain.ParseBookingStatus(target)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanAdvanceStatus(actor, bk); err != nil {
		return nil, err
	}

	from := bk.Status()
	switch status {
	case bookingDomain.StatusInProgress:
		err = bk.Start()
	case bookingDomain.StatusCompleted:
		err = bk.Complete()
	case bookingDomain.StatusCancelled:
		err = bk.Cancel(note)
	default:
		err = domain.NewValidationError(fmt.Sprintf("status must be one of %s, %s, %s",
			bookingDomain.StatusInProgress, bookingDomain.StatusCompleted, bookingDomain.StatusCancelled))
	}
	if err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingStatusChanged, bk.ID().String(), events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		ProviderID: actor.ID,
		From:       string(from),
		To:         string(bk.Status()),
		Note:       note,
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBooking edits the customer-mutable fields of a Pending booking.
func (s *BookingService) UpdateBooking(ctx context.Context, actor authz.Actor, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CanEditBooking(actor, bk); err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil {
		if err := bk.Reschedule(*req.ScheduledAt); err != nil {
			return nil, err
		}
	}
	if req.Address != nil {
		if err := bk.ChangeAddress(*req.Address); err != nil {
			return nil, err
		}
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// DeleteBooking removes a Pending booking on behalf of its customer. This is
// the only deletion path; assigned bookings can only be cancelled via status.
func (s *BookingService) DeleteBooking(ctx context.Context, actor authz.Actor, bookingID uuid.UUID) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.guard.CanDeleteBooking(actor, bk); err != nil {
		return err
	}
	if !bk.CanBeDeleted() {
		return domain.NewInvalidStateError("only pending bookings can be cancelled")
	}

	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return err
	}

	s.publishEvent(ctx, events.BookingDeleted, bk.ID().String(), events.BookingDeletedEvent{
		BookingID:  bk.ID(),
		CustomerID: bk.CustomerID(),
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:          bk.ID(),
		CustomerID:  bk.CustomerID(),
		ProviderID:  bk.ProviderID(),
		ServiceID:   bk.ServiceID(),
		CategoryID:  bk.CategoryID(),
		ScheduledAt: bk.ScheduledAt(),
		Address:     bk.Address(),
		Status:      string(bk.Status()),
		CancelNote:  bk.CancelNote(),
		CancelledAt: bk.CancelledAt(),
		Version:     bk.Version(),
		CreatedAt:   bk.CreatedAt(),
		UpdatedAt:   bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", events.TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
