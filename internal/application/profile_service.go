package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/urbanease/service-booking/internal/domain"
	providerDomain "github.com/urbanease/service-booking/internal/domain/provider"
)

// ProfileService maintains the provider-skills read model from identity
// service events.
type ProfileService struct {
	repo   providerDomain.ProfileRepository
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService.
func NewProfileService(repo providerDomain.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{repo: repo, logger: logger}
}

// ReplaceSkills creates or replaces the skill set for a provider.
func (s *ProfileService) ReplaceSkills(ctx context.Context, providerID uuid.UUID, categoryIDs []uuid.UUID) error {
	profile, err := s.repo.FindByUserID(ctx, providerID)
	if err != nil {
		if !domain.IsCode(err, domain.CodeNotFound) {
			return err
		}
		profile, err = providerDomain.NewProfile(providerID, categoryIDs)
		if err != nil {
			return err
		}
	} else {
		profile.ReplaceSkills(categoryIDs)
	}

	if err := s.repo.Upsert(ctx, profile); err != nil {
		return err
	}

	s.logger.Info("provider skills replaced",
		zap.String("provider_id", providerID.String()),
		zap.Int("skills", len(profile.Skills())),
	)
	return nil
}
