package data

import (
	"context"
	"fmt"
	"testing"
	"time"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/storage"
)

type fakeStore struct {
	runs []*storage.Run
}

func (s *fakeStore) ListRuns(ctx context.Context) ([]*storage.Run, error) {
	return s.runs, nil
}

func (s *fakeStore) GetRun(ctx context.Context, id int) (*storage.Run, error) {
	for _, r := range s.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("workforce run %d: %w", id, storage.ErrNotFound)
}

func (s *fakeStore) LatestPayload(ctx context.Context) (*model.ComparativeAnalyticsPayload, error) {
	return nil, fmt.Errorf("comparative payload: %w", storage.ErrNotFound)
}

func newFakeStore(n int) *fakeStore {
	s := &fakeStore{}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		s.runs = append(s.runs, &storage.Run{
			ID:        i,
			CompanyID: fmt.Sprintf("c%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return s
}

func TestListRunsPagesNewestFirst(t *testing.T) {
	store := newFakeStore(5)
	store.runs[4].Metric = []byte(`{"score":7}`)
	store.runs[3].Metric = []byte(`{"score":70}`)
	r := newRunRepo(store, log.DefaultLogger)
	ctx := context.Background()

	page, total, err := r.ListRuns(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, 5, page[0].ID)
	assert.Equal(t, 4, page[1].ID)
	require.NotNil(t, page[0].Score)
	assert.InDelta(t, 7, *page[0].Score, 1e-9)
	assert.Nil(t, page[1].Score)

	page, _, err = r.ListRuns(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, page[0].ID)

	page, _, err = r.ListRuns(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestGetRunDecodesReportAndMetric(t *testing.T) {
	store := newFakeStore(2)
	store.runs[0].Report = []byte(`{"company":{"name":"Acme"}}`)
	store.runs[0].Metric = []byte(`{"score":4}`)
	store.runs[1].Metric = []byte(`{"score":`)
	r := newRunRepo(store, log.DefaultLogger)
	ctx := context.Background()

	run, err := r.GetRun(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, run.Report)
	assert.Equal(t, "Acme", run.Report.Company.Name)
	require.NotNil(t, run.Metric)
	assert.InDelta(t, 4, *run.Score, 1e-9)
	assert.False(t, run.MetricMalformed)

	run, err = r.GetRun(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, run.Metric)
	assert.True(t, run.MetricMalformed)

	_, err = r.GetRun(ctx, 3)
	assert.Equal(t, "RUN_NOT_FOUND", kerrors.Reason(err))

	_, err = r.LatestPayload(ctx)
	assert.Equal(t, "PAYLOAD_NOT_FOUND", kerrors.Reason(err))
}
