package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/urbanease/service-booking/internal/domain"
	providerDomain "github.com/urbanease/service-booking/internal/domain/provider"
)

// ProviderProfileModel is the GORM model for the provider_profiles table, a
// read model of provider skills replicated from the identity service.
type ProviderProfileModel struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Skills    json.RawMessage `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ProviderProfileModel) TableName() string {
	return "provider_profiles"
}

// GormProfileRepository is the GORM-based implementation of ProfileRepository.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository.
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByUserID retrieves the profile for a provider user.
func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*providerDomain.Profile, error) {
	var model ProviderProfileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ProviderProfile", userID.String())
		}
		return nil, fmt.Errorf("failed to find provider profile: %w", err)
	}

	var skills []uuid.UUID
	if err := json.Unmarshal(model.Skills, &skills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal provider skills: %w", err)
	}
	return providerDomain.ReconstructProfile(model.UserID, skills, model.UpdatedAt), nil
}

// Upsert creates the profile or replaces its skill set.
func (r *GormProfileRepository) Upsert(ctx context.Context, p *providerDomain.Profile) error {
	skills, err := json.Marshal(p.Skills())
	if err != nil {
		return fmt.Errorf("failed to marshal provider skills: %w", err)
	}

	model := ProviderProfileModel{
		UserID:    p.UserID(),
		Skills:    skills,
		UpdatedAt: p.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"skills", "updated_at"}),
		}).
		Create(&model).Error; err != nil {
		return fmt.Errorf("failed to upsert provider profile: %w", err)
	}
	return nil
}
