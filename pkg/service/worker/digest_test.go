package worker_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/cyberportal/pkg/domain/model"
	"github.com/secmon-lab/cyberportal/pkg/domain/types"
	"github.com/secmon-lab/cyberportal/pkg/repository/memory"
	"github.com/secmon-lab/cyberportal/pkg/service/worker"
	goslack "github.com/slack-go/slack"
)

type mockSlackService struct {
	mu       sync.Mutex
	texts    []string
	channels []string
	blocks   [][]goslack.Block
	err      error
}

func (m *mockSlackService) PostMessage(_ context.Context, channelID string, blocks []goslack.Block, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.channels = append(m.channels, channelID)
	m.blocks = append(m.blocks, blocks)
	m.texts = append(m.texts, text)
	return "1700000000.000100", nil
}

func (m *mockSlackService) GetChannelName(_ context.Context, channelID string) (string, error) {
	return channelID, nil
}

func (m *mockSlackService) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

func newSeededRepo(t *testing.T) *memory.Memory {
	t.Helper()
	repo := memory.New()
	gt.NoError(t, repo.Incident().Import(context.Background(), []*model.Incident{
		{ID: "INC-2024-001", Category: types.ThreatCategoryPhishing, Status: types.IncidentStatusPending, Severity: types.SeverityHigh, Date: "2024-01-16", SubmittedBy: "a"},
		{ID: "INC-2024-002", Category: types.ThreatCategoryMalware, Status: types.IncidentStatusResolved, Severity: types.SeverityCritical, Date: "2024-01-16", SubmittedBy: "b"},
	})).Required()
	return repo
}

func TestDigestWorker_Post(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC) }

	t.Run("posts stats", func(t *testing.T) {
		svc := &mockSlackService{}
		w := worker.NewDigestWorker(newSeededRepo(t), svc, "C0CERT", time.Hour, worker.WithDigestClock(clock))

		gt.NoError(t, w.Post(context.Background())).Required()
		gt.A(t, svc.texts).Length(1)
		gt.Value(t, svc.channels[0]).Equal("C0CERT")
		gt.Value(t, svc.texts[0]).Equal("Incident digest 2024-01-16: 2 reports, 1 pending, 1 critical")

		section, ok := svc.blocks[0][1].(*goslack.SectionBlock)
		gt.B(t, ok).True()
		gt.A(t, section.Fields).Length(6)
		gt.Value(t, section.Fields[3].Text).Equal("*Resolved Today*\n1")

		gt.A(t, svc.blocks[0]).Length(3)
		queue, ok := svc.blocks[0][2].(*goslack.SectionBlock)
		gt.B(t, ok).True()
		gt.String(t, queue.Text.Text).Contains("INC-2024-001")
		gt.B(t, strings.Contains(queue.Text.Text, "INC-2024-002")).False()
	})

	t.Run("lists at most five pending incidents", func(t *testing.T) {
		repo := memory.New()
		for i := 0; i < 7; i++ {
			_, err := repo.Incident().Create(context.Background(), &model.Incident{
				Category: types.ThreatCategoryOPSEC,
				Status:   types.IncidentStatusPending,
				Severity: types.SeverityLow,
				Date:     "2024-01-16",
			})
			gt.NoError(t, err).Required()
		}

		svc := &mockSlackService{}
		w := worker.NewDigestWorker(repo, svc, "C0CERT", time.Hour, worker.WithDigestClock(clock))
		gt.NoError(t, w.Post(context.Background())).Required()

		queue, ok := svc.blocks[0][2].(*goslack.SectionBlock)
		gt.B(t, ok).True()
		gt.String(t, queue.Text.Text).Contains("… and 2 more")
		gt.Value(t, strings.Count(queue.Text.Text, "• ")).Equal(5)
	})

	t.Run("returns slack error", func(t *testing.T) {
		svc := &mockSlackService{err: errors.New("channel_not_found")}
		w := worker.NewDigestWorker(newSeededRepo(t), svc, "C0CERT", time.Hour, worker.WithDigestClock(clock))
		gt.Value(t, w.Post(context.Background())).NotNil()
	})
}

func TestDigestWorker_StartStop(t *testing.T) {
	t.Run("posts on every tick until stopped", func(t *testing.T) {
		svc := &mockSlackService{}
		w := worker.NewDigestWorker(newSeededRepo(t), svc, "C0CERT", 10*time.Millisecond)

		gt.NoError(t, w.Start(context.Background())).Required()

		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) && svc.count() < 2 {
			time.Sleep(5 * time.Millisecond)
		}
		w.Stop()

		gt.B(t, svc.count() >= 2).True()
		after := svc.count()
		time.Sleep(30 * time.Millisecond)
		gt.Value(t, svc.count()).Equal(after)
	})

	t.Run("exits on context cancel", func(t *testing.T) {
		svc := &mockSlackService{}
		w := worker.NewDigestWorker(newSeededRepo(t), svc, "C0CERT", time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		gt.NoError(t, w.Start(ctx)).Required()
		cancel()

		done := make(chan struct{})
		go func() {
			w.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("worker did not stop")
		}
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		w := worker.NewDigestWorker(newSeededRepo(t), &mockSlackService{}, "C0CERT", 0)
		gt.Value(t, w.Start(context.Background())).NotNil()
	})
}
