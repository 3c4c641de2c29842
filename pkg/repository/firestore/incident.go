package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type incidentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newIncidentRepository(client *firestore.Client) *incidentRepository {
	return &incidentRepository{
		client:           client,
		collectionPrefix: "",
	}
}

// IncidentCollectionName returns the name of the incident collection for a
// collection prefix
func IncidentCollectionName(prefix string) string {
	if prefix != "" {
		return prefix + "_incidents"
	}
	return "incidents"
}

func (r *incidentRepository) incidentsCollection() string {
	return IncidentCollectionName(r.collectionPrefix)
}

func (r *incidentRepository) counterCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_counters"
	}
	return "counters"
}

func (r *incidentRepository) counterRef(year int) *firestore.DocumentRef {
	return r.client.Collection(r.counterCollection()).Doc(fmt.Sprintf("incident_counter_%d", year))
}

func (r *incidentRepository) docRef(id types.IncidentID) *firestore.DocumentRef {
	return r.client.Collection(r.incidentsCollection()).Doc(string(id))
}

// readCounter returns the last allocated sequence for the year, 0 if none
func readCounter(tx *firestore.Transaction, ref *firestore.DocumentRef) (int64, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, nil
		}
		return 0, goerr.Wrap(err, "failed to get counter")
	}

	v, err := doc.DataAt("value")
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get counter value")
	}
	val, ok := v.(int64)
	if !ok {
		return 0, goerr.New("counter value is not of type int64", goerr.V("value", v))
	}
	return val, nil
}

func (r *incidentRepository) Create(ctx context.Context, x *model.Incident) (*model.Incident, error) {
	created := x.Copy()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	year := created.CreatedAt.Year()
	counterRef := r.counterRef(year)

	err := r.client.RunTransaction(context.WithoutCancel(ctx), func(ctx context.Context, tx *firestore.Transaction) error {
		seq, err := readCounter(tx, counterRef)
		if err != nil {
			return err
		}

		// Skip sequences taken by imported incidents
		for {
			seq++
			created.ID = types.NewIncidentID(year, seq)
			_, err := tx.Get(r.docRef(created.ID))
			if status.Code(err) == codes.NotFound {
				break
			}
			if err != nil {
				return goerr.Wrap(err, "failed to check incident existence", goerr.V("id", created.ID))
			}
		}

		if err := tx.Set(r.docRef(created.ID), toIncidentDoc(created)); err != nil {
			return goerr.Wrap(err, "failed to create incident", goerr.V("id", created.ID))
		}
		return tx.Set(counterRef, map[string]interface{}{"value": seq})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to allocate incident ID", goerr.V("year", year))
	}

	return created, nil
}

func (r *incidentRepository) Get(ctx context.Context, id types.IncidentID) (*model.Incident, error) {
	docSnap, err := r.docRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get incident", goerr.V("id", id))
	}

	var doc incidentDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode incident", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *incidentRepository) List(ctx context.Context) ([]*model.Incident, error) {
	iter := r.client.Collection(r.incidentsCollection()).OrderBy("created_at", firestore.Asc).Documents(ctx)
	return collectIncidents(iter)
}

// ListByStatus requires the (status, created_at) composite index declared by
// the migrate command
func (r *incidentRepository) ListByStatus(ctx context.Context, st types.IncidentStatus) ([]*model.Incident, error) {
	iter := r.client.Collection(r.incidentsCollection()).
		Where("status", "==", st.String()).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	incidents, err := collectIncidents(iter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list incidents by status", goerr.V("status", st))
	}
	return incidents, nil
}

func collectIncidents(iter *firestore.DocumentIterator) ([]*model.Incident, error) {
	defer iter.Stop()

	incidents := []*model.Incident{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate incidents")
		}

		var doc incidentDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode incident", goerr.V("doc_id", docSnap.Ref.ID))
		}
		incidents = append(incidents, doc.toModel())
	}

	return incidents, nil
}

func (r *incidentRepository) Update(ctx context.Context, id types.IncidentID, fn interfaces.IncidentMutator) (*model.Incident, error) {
	ref := r.docRef(id)

	var updated *model.Incident
	err := r.client.RunTransaction(context.WithoutCancel(ctx), func(ctx context.Context, tx *firestore.Transaction) error {
		updated = nil

		docSnap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return goerr.Wrap(err, "failed to get incident", goerr.V("id", id))
		}

		var doc incidentDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to decode incident", goerr.V("id", id))
		}

		x := doc.toModel()
		if err := fn(x); err != nil {
			return goerr.Wrap(err, "failed to apply incident update", goerr.V("id", id))
		}
		x.ID = types.IncidentID(doc.ID)
		x.CreatedAt = doc.CreatedAt

		if err := tx.Set(ref, toIncidentDoc(x)); err != nil {
			return goerr.Wrap(err, "failed to update incident", goerr.V("id", id))
		}
		updated = x
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *incidentRepository) Import(ctx context.Context, incidents []*model.Incident) error {
	maxSeq := make(map[int]int64)
	for _, x := range incidents {
		year, seq, err := x.ID.Parts()
		if err != nil {
			return goerr.Wrap(err, "invalid incident to import")
		}
		if seq > maxSeq[year] {
			maxSeq[year] = seq
		}
	}

	years := make([]int, 0, len(maxSeq))
	for y := range maxSeq {
		years = append(years, y)
	}
	sort.Ints(years)

	now := time.Now().UTC()
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current := make(map[int]int64, len(years))
		for _, y := range years {
			seq, err := readCounter(tx, r.counterRef(y))
			if err != nil {
				return err
			}
			current[y] = seq
		}

		// all reads must precede writes in a transaction
		exists := make(map[types.IncidentID]bool, len(incidents))
		for _, x := range incidents {
			_, err := tx.Get(r.docRef(x.ID))
			if err == nil {
				exists[x.ID] = true
				continue
			}
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to check incident existence", goerr.V("id", x.ID))
			}
		}

		for i, x := range incidents {
			if exists[x.ID] {
				continue
			}
			exists[x.ID] = true

			imported := x.Copy()
			if imported.CreatedAt.IsZero() {
				imported.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
			}
			if err := tx.Create(r.docRef(imported.ID), toIncidentDoc(imported)); err != nil {
				return goerr.Wrap(err, "failed to import incident", goerr.V("id", imported.ID))
			}
		}

		for _, y := range years {
			if maxSeq[y] > current[y] {
				if err := tx.Set(r.counterRef(y), map[string]interface{}{"value": maxSeq[y]}); err != nil {
					return goerr.Wrap(err, "failed to advance counter", goerr.V("year", y))
				}
			}
		}
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to import incidents", goerr.V("count", len(incidents)))
	}

	return nil
}
