package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/domain/interfaces"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/repository/firestore"
	"github.com/secmon-lab/cyberportal/pkg/repository/memory"
)

var incidentIDFormat = regexp.MustCompile(`^INC-\d{4}-\d{3}$`)

func newTestIncident(desc string) *model.Incident {
	return &model.Incident{
		Category:    types.ThreatCategoryPhishing,
		Status:      types.IncidentStatusPending,
		Severity:    types.SeverityHigh,
		Date:        "2024-01-15",
		Time:        "14:30",
		SubmittedBy: "Maj. ****",
		Description: desc,
		Evidence: []model.Evidence{
			{Name: "email_screenshot.png", Type: "image"},
		},
		CreatedAt: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
	}
}

func runIncidentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create allocates sequential IDs", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created1, err := repo.Incident().Create(ctx, newTestIncident("first"))
		gt.NoError(t, err).Required()
		created2, err := repo.Incident().Create(ctx, newTestIncident("second"))
		gt.NoError(t, err).Required()

		gt.B(t, incidentIDFormat.MatchString(string(created1.ID))).True()
		gt.B(t, incidentIDFormat.MatchString(string(created2.ID))).True()
		gt.Value(t, created2.ID).NotEqual(created1.ID)
		gt.Value(t, created1.Description).Equal("first")
		gt.Array(t, created1.Evidence).Length(1)
	})

	t.Run("Create skips IDs taken by imported incidents", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		seed := newTestIncident("seed")
		seed.ID = "INC-2024-004"
		gt.NoError(t, repo.Incident().Import(ctx, []*model.Incident{seed})).Required()

		created, err := repo.Incident().Create(ctx, newTestIncident("new"))
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(types.IncidentID("INC-2024-005"))
	})

	t.Run("Import keeps incidents that already exist", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		seed := newTestIncident("seed")
		seed.ID = "INC-2024-001"
		other := newTestIncident("other seed")
		other.ID = "INC-2024-002"
		seeds := []*model.Incident{seed, other}
		gt.NoError(t, repo.Incident().Import(ctx, seeds)).Required()

		notes := "note-X"
		_, err := repo.Incident().Update(ctx, seed.ID, func(x *model.Incident) error {
			x.Assign("CERT-A-009", &notes)
			return nil
		})
		gt.NoError(t, err).Required()

		before, err := repo.Incident().List(ctx)
		gt.NoError(t, err).Required()

		// same seeds again, as on a restart
		gt.NoError(t, repo.Incident().Import(ctx, seeds)).Required()

		got, err := repo.Incident().Get(ctx, seed.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.AssignedAnalyst).Equal("CERT-A-009")
		gt.Value(t, got.Status).Equal(types.IncidentStatusUnderReview)
		gt.Value(t, got.Notes).Equal("note-X")

		after, err := repo.Incident().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, after).Length(len(before))
		for i := range before {
			gt.Value(t, after[i].ID).Equal(before[i].ID)
			gt.Value(t, after[i].CreatedAt.Equal(before[i].CreatedAt)).Equal(true)
		}

		created, err := repo.Incident().Create(ctx, newTestIncident("new"))
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(types.IncidentID("INC-2024-003"))
	})

	t.Run("Get returns nil for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		got, err := repo.Incident().Get(ctx, "INC-1999-001")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Get returns the created incident", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		x := newTestIncident("lookup")
		x.Playbook = []string{"Block domain", "Alert personnel"}
		x.AnalysisResult = &model.AnalysisResult{
			Status:     "MALICIOUS",
			Confidence: 96,
			Indicators: []string{"Suspicious domain"},
		}
		created, err := repo.Incident().Create(ctx, x)
		gt.NoError(t, err).Required()

		got, err := repo.Incident().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.Description).Equal("lookup")
		gt.Array(t, got.Playbook).Length(2)
		gt.Value(t, got.AnalysisResult.Confidence).Equal(96)
	})

	t.Run("List keeps insertion order and is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var created []types.IncidentID
		for i := 0; i < 3; i++ {
			x, err := repo.Incident().Create(ctx, newTestIncident(fmt.Sprintf("incident %d", i)))
			gt.NoError(t, err).Required()
			created = append(created, x.ID)
		}

		first, err := repo.Incident().List(ctx)
		gt.NoError(t, err).Required()
		second, err := repo.Incident().List(ctx)
		gt.NoError(t, err).Required()

		gt.Array(t, first).Length(3)
		for i, x := range first {
			gt.Value(t, x.ID).Equal(created[i])
			gt.Value(t, second[i].ID).Equal(x.ID)
			gt.Value(t, second[i].Description).Equal(x.Description)
		}
	})

	t.Run("ListByStatus filters and keeps insertion order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var pending []types.IncidentID
		for i := 0; i < 4; i++ {
			x := newTestIncident(fmt.Sprintf("incident %d", i))
			if i%2 == 1 {
				x.Status = types.IncidentStatusResolved
			}
			created, err := repo.Incident().Create(ctx, x)
			gt.NoError(t, err).Required()
			if i%2 == 0 {
				pending = append(pending, created.ID)
			}
		}

		got, err := repo.Incident().ListByStatus(ctx, types.IncidentStatusPending)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0].ID).Equal(pending[0])
		gt.Value(t, got[1].ID).Equal(pending[1])

		none, err := repo.Incident().ListByStatus(ctx, types.IncidentStatusInvestigating)
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})

	t.Run("returned incidents are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Incident().Create(ctx, newTestIncident("copy"))
		gt.NoError(t, err).Required()
		created.Notes = "changed outside"
		created.Evidence[0].Name = "tampered"

		got, err := repo.Incident().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Notes).Equal("")
		gt.Value(t, got.Evidence[0].Name).Equal("email_screenshot.png")
	})

	t.Run("Update applies mutation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Incident().Create(ctx, newTestIncident("update"))
		gt.NoError(t, err).Required()

		updated, err := repo.Incident().Update(ctx, created.ID, func(x *model.Incident) error {
			x.Status = types.IncidentStatusResolved
			return nil
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Status).Equal(types.IncidentStatusResolved)

		got, err := repo.Incident().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.IncidentStatusResolved)
	})

	t.Run("Update returns nil for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		called := false
		updated, err := repo.Incident().Update(ctx, "INC-1999-001", func(x *model.Incident) error {
			called = true
			return nil
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated).Nil()
		gt.B(t, called).False()
	})

	t.Run("failed Update leaves incident unchanged", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Incident().Create(ctx, newTestIncident("rollback"))
		gt.NoError(t, err).Required()

		errBoom := errors.New("boom")
		_, err = repo.Incident().Update(ctx, created.ID, func(x *model.Incident) error {
			x.Notes = "half applied"
			return errBoom
		})
		gt.Error(t, err).Is(errBoom)

		got, err := repo.Incident().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Notes).Equal("")
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Incident().Create(ctx, newTestIncident("race"))
		gt.NoError(t, err).Required()

		const n = 10
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Incident().Update(ctx, created.ID, func(x *model.Incident) error {
					x.AppendNotes("n")
					return nil
				})
				if err != nil {
					t.Errorf("update failed: %v", err)
				}
			}()
		}
		wg.Wait()

		got, err := repo.Incident().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, len(got.Notes)).Equal(n + (n-1)*2)
	})
}

func TestIncidentRepository_Memory(t *testing.T) {
	runIncidentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestIncidentRepository_Firestore(t *testing.T) {
	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}
	databaseID := os.Getenv("FIRESTORE_DATABASE_ID")

	runIncidentRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
		repo, err := firestore.New(context.Background(), projectID, databaseID, firestore.WithCollectionPrefix(prefix))
		gt.NoError(t, err).Required()
		t.Cleanup(func() { _ = repo.Close() })
		return repo
	})
}
