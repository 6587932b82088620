package usecase

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/workforce_radar/app/display/internal/domain"
	"github.com/iWorld-y/workforce_radar/app/display/internal/repo"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/impact"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// ReportUseCase 运行与劳动力影响业务逻辑
type ReportUseCase struct {
	repo repo.RunRepo
	calc *impact.Calculator
	log  *log.Helper
}

// NewReportUseCase 创建业务逻辑实例
func NewReportUseCase(repo repo.RunRepo, calc *impact.Calculator, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{repo: repo, calc: calc, log: log.NewHelper(logger)}
}

// List 分页列出运行摘要
func (uc *ReportUseCase) List(ctx context.Context, page, pageSize int) ([]*domain.RunSummary, int, error) {
	return uc.repo.ListRuns(ctx, page, pageSize)
}

// GetImpact 获取运行的劳动力影响；有报告时现场计算岗位视图，快照优先使用已存指标
func (uc *ReportUseCase) GetImpact(ctx context.Context, id int) (*domain.RunImpact, error) {
	run, err := uc.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Report == nil && run.Metric == nil {
		return nil, errors.NotFound("IMPACT_NOT_AVAILABLE", "run has neither a report nor a stored workforce metric")
	}

	out := &domain.RunImpact{
		RunSummary: run.RunSummary,
		Snapshot:   run.Metric,
		Stored:     run.Metric != nil,
	}
	if run.MetricMalformed {
		out.Issues = append(out.Issues, model.Issue{
			Kind:   model.IssueMalformedMetric,
			Reason: "stored workforce metric could not be decoded",
		})
	}
	if run.Report == nil {
		return out, nil
	}

	res := uc.calc.Calculate(*run.Report)
	if out.Snapshot == nil {
		out.Snapshot = res.Snapshot
		if res.Snapshot != nil {
			out.Score = model.Float(res.Snapshot.Score)
		}
	}
	out.TaskMixRoles = res.Roles
	out.NodeShareRoles = impact.CollectRoleImpacts(res.Graph)
	out.Aggregations = impact.CollectAggregationImpacts(run.Report.Aggregations)
	out.Issues = append(out.Issues, res.Issues...)
	uc.log.Debugf("run %d impact: stored=%t issues=%d", id, out.Stored, len(out.Issues))
	return out, nil
}
