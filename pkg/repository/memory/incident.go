package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
)

type incidentRepository struct {
	mu        sync.RWMutex
	incidents map[types.IncidentID]*model.Incident
	order     []types.IncidentID
	lastSeq   map[int]int64 // year -> last allocated sequence
}

func newIncidentRepository() *incidentRepository {
	return &incidentRepository{
		incidents: make(map[types.IncidentID]*model.Incident),
		lastSeq:   make(map[int]int64),
	}
}

// nextID allocates the next free ID for year. Caller must hold the write lock.
func (r *incidentRepository) nextID(year int) types.IncidentID {
	for {
		r.lastSeq[year]++
		id := types.NewIncidentID(year, r.lastSeq[year])
		if _, exists := r.incidents[id]; !exists {
			return id
		}
	}
}

// observeID advances the year counter past id. Caller must hold the write lock.
func (r *incidentRepository) observeID(id types.IncidentID) {
	year, seq, err := id.Parts()
	if err != nil {
		return
	}
	if seq > r.lastSeq[year] {
		r.lastSeq[year] = seq
	}
}

func (r *incidentRepository) Create(ctx context.Context, x *model.Incident) (*model.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := x.Copy()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.ID = r.nextID(created.CreatedAt.Year())

	r.incidents[created.ID] = created
	r.order = append(r.order, created.ID)
	return created.Copy(), nil
}

func (r *incidentRepository) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	x, exists := r.incidents[id]
	if !exists {
		return nil, nil
	}
	return x.Copy(), nil
}

func (r *incidentRepository) List(ctx context.Context) ([]*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Incident, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.incidents[id].Copy())
	}
	return result, nil
}

func (r *incidentRepository) ListByStatus(ctx context.Context, st types.IncidentStatus) ([]*model.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Incident{}
	for _, id := range r.order {
		if x := r.incidents[id]; x.Status == st {
			result = append(result, x.Copy())
		}
	}
	return result, nil
}

func (r *incidentRepository) Update(ctx context.Context, id types.IncidentID, fn interfaces.IncidentMutator) (*model.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.incidents[id]
	if !exists {
		return nil, nil
	}

	// fn works on a copy so a failed mutation leaves no partial change behind
	updated := existing.Copy()
	if err := fn(updated); err != nil {
		return nil, goerr.Wrap(err, "failed to apply incident update", goerr.V("id", id))
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	r.incidents[id] = updated
	return updated.Copy(), nil
}

func (r *incidentRepository) Import(ctx context.Context, incidents []*model.Incident) error {
	for _, x := range incidents {
		if err := x.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid incident to import")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for i, x := range incidents {
		r.observeID(x.ID)
		if _, exists := r.incidents[x.ID]; exists {
			continue
		}

		imported := x.Copy()
		if imported.CreatedAt.IsZero() {
			imported.CreatedAt = now.Add(time.Duration(i))
		}
		r.incidents[imported.ID] = imported
		r.order = append(r.order, imported.ID)
	}
	return nil
}
