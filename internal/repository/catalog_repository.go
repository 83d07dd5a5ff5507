package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/urbanease/service-booking/internal/domain"
	catalogDomain "github.com/urbanease/service-booking/internal/domain/catalog"
)

// ServiceModel is the GORM model for the services table, a read model of the
// catalog service's offerings.
type ServiceModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;size:200"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ServiceModel) TableName() string {
	return "services"
}

// CategoryModel is the GORM model for the categories table.
type CategoryModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"not null;size:100;uniqueIndex"`
}

// TableName returns the table name for the GORM model.
func (CategoryModel) TableName() string {
	return "categories"
}

// GormCatalog reads the catalog read model.
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog creates a new GormCatalog.
func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// ServiceByID retrieves a service offering.
func (r *GormCatalog) ServiceByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Service, error) {
	var model ServiceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Service", id.String())
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}
	return &catalogDomain.Service{
		ID:         model.ID,
		Name:       model.Name,
		CategoryID: model.CategoryID,
	}, nil
}
