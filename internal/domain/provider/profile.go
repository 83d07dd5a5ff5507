package provider

import (
	"time"

	"github.com/google/uuid"

	"github.com/urbanease/service-booking/internal/domain"
)

// Profile is a read model of a provider's skill set, maintained from
// identity-service events. A provider is eligible to claim a booking when the
// booking's service category is in this set.
type Profile struct {
	userID    uuid.UUID
	skills    []uuid.UUID
	updatedAt time.Time
}

// NewProfile creates a provider profile for the given user.
func NewProfile(userID uuid.UUID, skills []uuid.UUID) (*Profile, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("provider user ID is required")
	}
	return &Profile{
		userID:    userID,
		skills:    dedupe(skills),
		updatedAt: time.Now().UTC(),
	}, nil
}

// ReconstructProfile rebuilds a Profile from persistence data.
func ReconstructProfile(userID uuid.UUID, skills []uuid.UUID, updatedAt time.Time) *Profile {
	return &Profile{userID: userID, skills: skills, updatedAt: updatedAt}
}

// UserID returns the provider's user ID.
func (p *Profile) UserID() uuid.UUID { return p.userID }

// Skills returns the provider's skill category IDs.
func (p *Profile) Skills() []uuid.UUID { return p.skills }

// UpdatedAt returns the time the skill set was last replaced.
func (p *Profile) UpdatedAt() time.Time { return p.updatedAt }

// HasSkill returns true if the category is in the provider's skill set.
func (p *Profile) HasSkill(categoryID uuid.UUID) bool {
	for _, s := range p.skills {
		if s == categoryID {
			return true
		}
	}
	return false
}

// ReplaceSkills swaps the entire skill set, as published by the identity
// service.
func (p *Profile) ReplaceSkills(skills []uuid.UUID) {
	p.skills = dedupe(skills)
	p.updatedAt = time.Now().UTC()
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
