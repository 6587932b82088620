package engine

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/comparative"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/config"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/storage"
)

// mockStore 模拟存储
type mockStore struct {
	mu       sync.Mutex
	runs     []*storage.Run
	listErr  error
	saveErr  error
	metrics  map[int]*model.WorkforceImpactSnapshot
	payloads map[string]*model.ComparativeAnalyticsPayload
	saved    []*storage.Run
}

func newMockStore(runs ...*storage.Run) *mockStore {
	return &mockStore{
		runs:     runs,
		metrics:  make(map[int]*model.WorkforceImpactSnapshot),
		payloads: make(map[string]*model.ComparativeAnalyticsPayload),
	}
}

func (m *mockStore) SaveRun(ctx context.Context, run *storage.Run, metric *model.WorkforceImpactSnapshot) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, run)
	id := 100 + len(m.saved)
	m.metrics[id] = metric
	return id, nil
}

func (m *mockStore) ListRuns(ctx context.Context) ([]*storage.Run, error) {
	return m.runs, m.listErr
}

func (m *mockStore) SaveWorkforceMetric(ctx context.Context, runID int, metric *model.WorkforceImpactSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.metrics[runID] = metric
	return nil
}

func (m *mockStore) SavePayload(ctx context.Context, batchID string, payload *model.ComparativeAnalyticsPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[batchID] = payload
	return nil
}

func f(v float64) *float64 { return model.Float(v) }

func reportJSON(t *testing.T, country string) []byte {
	t.Helper()
	data, err := json.Marshal(model.OrgReport{
		Company: model.CompanyProfile{Name: "Co", HQCountry: country, Industry: "Software"},
		Hierarchy: []model.OrgNode{{ID: "root", Name: "Co", Headcount: f(10),
			DominantRoles: []model.DominantRole{{RoleID: "dev", Headcount: f(10)}}}},
		Roles: []model.Role{{Code: "dev", Title: "Developers",
			TaskMixCounts: &model.TaskMixCounts{Automation: 1, Augmentation: 1, Manual: 2}}},
	})
	require.NoError(t, err)
	return data
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Concurrency.Workers = 3
	return &cfg
}

func TestRunRestoresOrRecomputesMetrics(t *testing.T) {
	store := newMockStore(
		&storage.Run{ID: 1, CompanyID: "a", HQCountry: "USA", Industry: "Software", Metric: []byte(`{"score":8,"totalHeadcount":100}`)},
		&storage.Run{ID: 2, CompanyID: "b", HQCountry: "US", Industry: "Tech", Metric: []byte(`{"score":42}`), Report: reportJSON(t, "US")},
		&storage.Run{ID: 3, CompanyID: "c", HQCountry: "Germany"},
		&storage.Run{ID: 4, CompanyID: "d", HQCountry: "Germany", Metric: []byte(`null`), Report: reportJSON(t, "Germany")},
		&storage.Run{ID: 5, CompanyID: "e", HQCountry: "United States", Industry: "Software", Report: reportJSON(t, "United States")},
	)
	e := NewEngine(testConfig(), store, nil)
	e.now = func() time.Time { return time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC) }

	var last int
	res, err := e.Run(context.Background(), RunOptions{
		Persist:          true,
		ProgressCallback: func(status string, progress int) { last = progress },
	})
	require.NoError(t, err)
	assert.Equal(t, 100, last)

	assert.Equal(t, 2, res.Recomputed)
	assert.Contains(t, store.metrics, 2)
	assert.Contains(t, store.metrics, 5)
	assert.NotContains(t, store.metrics, 4)
	require.NotNil(t, store.metrics[5])
	assert.InDelta(t, 5, store.metrics[5].Score, 1e-9)

	var malformed []RunIssue
	for _, is := range res.Issues {
		if is.Kind == model.IssueMalformedMetric {
			malformed = append(malformed, is)
		}
	}
	require.Len(t, malformed, 1)
	assert.Equal(t, 2, malformed[0].RunID)

	p := res.Payload
	assert.Equal(t, 3, p.Coverage.Runs)
	require.Len(t, p.Countries, 1)
	assert.Equal(t, "United States", p.Countries[0].Label)
	assert.Equal(t, 3, p.Countries[0].RunCount)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), p.GeneratedAt)
	assert.Same(t, p, store.payloads[res.BatchID])
}

func TestRunKeepsGoingWhenMetricWriteFails(t *testing.T) {
	store := newMockStore(&storage.Run{ID: 9, CompanyID: "x", HQCountry: "US", Report: reportJSON(t, "US")})
	store.saveErr = errors.New("disk full")

	res, err := NewEngine(testConfig(), store, nil).Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Payload.Coverage.Runs)
	assert.Empty(t, store.payloads)
}

func TestRunFailsWhenRunsCannotBeLoaded(t *testing.T) {
	store := newMockStore()
	store.listErr = errors.New("connection refused")
	_, err := NewEngine(testConfig(), store, nil).Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = NewEngine(testConfig(), nil, nil).Run(context.Background(), RunOptions{})
	assert.Error(t, err)
}

func TestCompareFillsMissingSnapshots(t *testing.T) {
	var report model.OrgReport
	require.NoError(t, json.Unmarshal(reportJSON(t, "UK"), &report))

	e := NewEngine(testConfig(), nil, nil)
	payload, issues := e.Compare([]comparative.Input{
		{CompanyID: "x", Report: &report},
		{CompanyID: "y", HQCountry: "England", WorkforceMetric: &model.WorkforceImpactSnapshot{Score: 2}},
		{CompanyID: "z", HQCountry: "France"},
	})
	assert.Empty(t, issues)
	assert.Equal(t, 2, payload.Coverage.Runs)
	require.Len(t, payload.Countries, 1)
	assert.Equal(t, "United Kingdom", payload.Countries[0].Label)
}

func TestIngestSavesRunWithSnapshot(t *testing.T) {
	var report model.OrgReport
	require.NoError(t, json.Unmarshal(reportJSON(t, "US"), &report))

	store := newMockStore()
	id, res, err := NewEngine(testConfig(), store, nil).Ingest(context.Background(), "", report)
	require.NoError(t, err)
	assert.Equal(t, 101, id)
	require.NotNil(t, res.Snapshot)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "Co", store.saved[0].CompanyID)
	assert.Equal(t, "US", store.saved[0].HQCountry)
	assert.Same(t, res.Snapshot, store.metrics[101])
}
