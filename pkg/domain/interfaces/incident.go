package interfaces

import (
	"context"

	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

// IncidentMutator changes an incident in place. Returning an error aborts the
// update and leaves the stored incident untouched.
type IncidentMutator func(x *model.Incident) error

// IncidentRepository defines the interface for Incident data access
type IncidentRepository interface {
	// Create stores a new incident and allocates its ID. Allocation is
	// monotonic per year, so IDs are never reused.
	Create(ctx context.Context, x *model.Incident) (*model.Incident, error)

	// Get retrieves an incident by ID.
	// Returns nil, nil if no incident exists with the given ID.
	Get(ctx context.Context, id types.IncidentID) (*model.Incident, error)

	// List retrieves all incidents in insertion order
	List(ctx context.Context) ([]*model.Incident, error)

	// ListByStatus retrieves incidents with the given status in insertion order
	ListByStatus(ctx context.Context, status types.IncidentStatus) ([]*model.Incident, error)

	// Update applies fn to the stored incident as a single read-modify-write.
	// Concurrent updates of the same incident are serialized.
	// Returns nil, nil if no incident exists with the given ID.
	Update(ctx context.Context, id types.IncidentID, fn IncidentMutator) (*model.Incident, error)

	// Import stores incidents with their existing IDs and advances the ID
	// counter past them. Incidents whose ID already exists are left as they
	// are, so importing the same seeds again is a no-op.
	Import(ctx context.Context, incidents []*model.Incident) error
}
