package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service is a read-only view of a service offering from the catalog service.
type Service struct {
	ID         uuid.UUID
	Name       string
	CategoryID uuid.UUID
}

// Category is a read-only view of a service category.
type Category struct {
	ID   uuid.UUID
	Name string
}

// Catalog exposes the service catalog owned by an external collaborator.
// Bookings only need the service-to-category mapping from it.
type Catalog interface {
	// ServiceByID retrieves a service offering, or a not-found error.
	ServiceByID(ctx context.Context, id uuid.UUID) (*Service, error)
}
