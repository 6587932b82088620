package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, table := range []string{"workforce_runs", "workforce_metrics", "comparative_payloads"} {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	s, err := NewWithDB(db)
	require.NoError(t, err)
	return s, mock
}

var runCols = []string{"id", "company_id", "company_name", "hq_country", "industry", "report", "metric", "created_at"}

func TestSaveRunWithMetric(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO workforce_runs").
		WithArgs("acme", "Acme", "US", "Tech", []byte(`{"roles":[]}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO workforce_metrics").
		WithArgs(7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.SaveRun(context.Background(), &Run{
		CompanyID: "acme", CompanyName: "Acme", HQCountry: "US", Industry: "Tech",
		Report: []byte(`{"roles":[]}`),
	}, &model.WorkforceImpactSnapshot{Score: 4})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunRollsBackOnError(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO workforce_runs").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := s.SaveRun(context.Background(), &Run{CompanyID: "acme"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert workforce run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWorkforceMetricStoresNull(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec("INSERT INTO workforce_metrics .* ON CONFLICT").
		WithArgs(3, []byte("null")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.SaveWorkforceMetric(context.Background(), 3, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRuns(t *testing.T) {
	s, mock := newMockStorage(t)
	created := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("LEFT JOIN workforce_metrics").WillReturnRows(
		sqlmock.NewRows(runCols).
			AddRow(1, "acme", "Acme", "USA", "Software", []byte(`{}`), []byte(`{"score":3}`), created).
			AddRow(2, "globex", "", "", "", nil, nil, created),
	)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "Acme", runs[0].CompanyName)
	assert.JSONEq(t, `{"score":3}`, string(runs[0].Metric))
	assert.Nil(t, runs[1].Metric)
	assert.Equal(t, created, runs[1].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunNotFound(t *testing.T) {
	s, mock := newMockStorage(t)
	mock.ExpectQuery("WHERE r.id = ").WithArgs(42).WillReturnRows(sqlmock.NewRows(runCols))

	_, err := s.GetRun(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayloadRoundTrip(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec("INSERT INTO comparative_payloads").
		WithArgs("batch-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT payload FROM comparative_payloads").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"coverage":{"companies":2,"runs":3,"totalHeadcount":10,"averageExposure":null}}`)))

	require.NoError(t, s.SavePayload(context.Background(), "batch-1", &model.ComparativeAnalyticsPayload{}))
	p, err := s.LatestPayload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, p.Coverage.Runs)
	assert.Nil(t, p.Coverage.AverageExposure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecodeSnapshot(t *testing.T) {
	for _, raw := range []string{"", "null", "  null "} {
		snap, err := DecodeSnapshot([]byte(raw))
		assert.NoError(t, err)
		assert.Nil(t, snap)
	}

	snap, err := DecodeSnapshot([]byte(`{"score":4.2,"totalHeadcount":10,"automationComponent":0.2,"augmentationComponent":0.22,"coverageComponent":1}`))
	require.NoError(t, err)
	assert.Equal(t, 4.2, snap.Score)

	for _, raw := range []string{
		`{"score":"high"}`,
		`{"score":11}`,
		`{"score":3,"coverageComponent":1.5}`,
		`{"score":3,"totalHeadcount":-1}`,
		`[1,2]`,
	} {
		_, err := DecodeSnapshot([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedMetric, raw)
	}
}

func TestDecodeReport(t *testing.T) {
	r := &Run{ID: 1, Report: []byte(`{"company":{"name":"Acme"},"hierarchy":[{"id":"root","name":"Acme"}]}`)}
	report, err := r.DecodeReport()
	require.NoError(t, err)
	assert.Equal(t, "Acme", report.Company.Name)
	require.Len(t, report.Hierarchy, 1)

	empty, err := (&Run{}).DecodeReport()
	assert.NoError(t, err)
	assert.Nil(t, empty)

	_, err = (&Run{ID: 2, Report: []byte(`{`)}).DecodeReport()
	assert.Error(t, err)
}
