package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbanease/service-booking/internal/domain"
	bookingDomain "github.com/urbanease/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	ProviderID  *uuid.UUID `gorm:"type:uuid;index"`
	ServiceID   uuid.UUID  `gorm:"type:uuid;not null"`
	CategoryID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	ScheduledAt time.Time  `gorm:"not null"`
	Address     string     `gorm:"not null;size:500"`
	Status      string     `gorm:"not null;size:20;index"`
	CancelNote  string     `gorm:"size:500"`
	CancelledAt *time.Time `gorm:""`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomerID retrieves bookings created by a customer with pagination,
// newest first.
func (r *GormBookingRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("customer_id = ?", customerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find customer bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindByProviderID retrieves bookings assigned to a provider, any status.
func (r *GormBookingRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find provider bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindOpenByCategories retrieves unassigned Pending bookings in the given
// categories.
func (r *GormBookingRepository) FindOpenByCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]*bookingDomain.Booking, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND provider_id IS NULL AND category_id IN ?", string(bookingDomain.StatusPending), categoryIDs).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find open bookings: %w", err)
	}
	return toDomainBookings(models)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"provider_id":  model.ProviderID,
			"status":       model.Status,
			"scheduled_at": model.ScheduledAt,
			"address":      model.Address,
			"cancel_note":  model.CancelNote,
			"cancelled_at": model.CancelledAt,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// Claim atomically assigns the provider and moves the booking to Accepted.
// The WHERE clause is the whole arbitration: of any number of concurrent
// claimers, the single UPDATE that still sees (Pending, provider IS NULL)
// wins and every other one affects zero rows.
func (r *GormBookingRepository) Claim(ctx context.Context, id, providerID uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ? AND provider_id IS NULL", id, string(bookingDomain.StatusPending)).
		Updates(map[string]interface{}{
			"provider_id": providerID,
			"status":      string(bookingDomain.StatusAccepted),
			"version":     gorm.Expr("version + 1"),
			"updated_at":  now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to claim booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewAlreadyClaimedError("booking is not available to accept")
	}
	return nil
}

// Delete removes a booking row.
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.CustomerID,
		m.ProviderID,
		m.ServiceID,
		m.CategoryID,
		m.ScheduledAt,
		m.Address,
		status,
		m.CancelNote,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
