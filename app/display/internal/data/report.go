package data

import (
	"context"
	"errors"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/workforce_radar/app/display/internal/domain"
	"github.com/iWorld-y/workforce_radar/app/display/internal/repo"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/storage"
)

// runStore 仓库依赖的存储能力
type runStore interface {
	ListRuns(ctx context.Context) ([]*storage.Run, error)
	GetRun(ctx context.Context, id int) (*storage.Run, error)
	LatestPayload(ctx context.Context) (*model.ComparativeAnalyticsPayload, error)
}

type runRepo struct {
	store runStore
	log   *log.Helper
}

func NewRunRepo(data *Data, logger log.Logger) repo.RunRepo {
	return newRunRepo(data.store, logger)
}

func newRunRepo(store runStore, logger log.Logger) *runRepo {
	return &runRepo{
		store: store,
		log:   log.NewHelper(logger),
	}
}

// ListRuns 按创建时间倒序分页
func (r *runRepo) ListRuns(ctx context.Context, page, pageSize int) ([]*domain.RunSummary, int, error) {
	runs, err := r.store.ListRuns(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := len(runs)

	offset := (page - 1) * pageSize
	if offset >= total {
		return []*domain.RunSummary{}, total, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	summaries := make([]*domain.RunSummary, 0, end-offset)
	for i := total - 1 - offset; i >= total-end; i-- {
		run := runs[i]
		s := summarize(run)
		if metric, err := storage.DecodeSnapshot(run.Metric); err == nil && metric != nil {
			s.Score = model.Float(metric.Score)
		}
		summaries = append(summaries, &s)
	}
	return summaries, total, nil
}

func (r *runRepo) GetRun(ctx context.Context, id int) (*domain.Run, error) {
	run, err := r.store.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, kerrors.NotFound("RUN_NOT_FOUND", "run not found")
		}
		return nil, err
	}

	out := &domain.Run{RunSummary: summarize(run)}
	report, err := run.DecodeReport()
	if err != nil {
		r.log.Warnf("run %d: %v", id, err)
	}
	out.Report = report

	metric, err := storage.DecodeSnapshot(run.Metric)
	if err != nil {
		r.log.Warnf("run %d: %v", id, err)
		out.MetricMalformed = true
	}
	out.Metric = metric
	if metric != nil {
		out.Score = model.Float(metric.Score)
	}
	return out, nil
}

func (r *runRepo) LatestPayload(ctx context.Context) (*model.ComparativeAnalyticsPayload, error) {
	payload, err := r.store.LatestPayload(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, kerrors.NotFound("PAYLOAD_NOT_FOUND", "comparative analytics not generated yet")
		}
		return nil, err
	}
	return payload, nil
}

func summarize(run *storage.Run) domain.RunSummary {
	return domain.RunSummary{
		ID:          run.ID,
		CompanyID:   run.CompanyID,
		CompanyName: run.CompanyName,
		HQCountry:   run.HQCountry,
		Industry:    run.Industry,
		CreatedAt:   run.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
