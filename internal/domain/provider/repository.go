package provider

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository defines the persistence contract for provider profiles.
type ProfileRepository interface {
	// FindByUserID retrieves the profile for a provider user.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// Upsert creates the profile or replaces its skill set.
	Upsert(ctx context.Context, p *Profile) error
}
