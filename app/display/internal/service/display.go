package service

import (
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/workforce_radar/app/display/internal/domain"
	"github.com/iWorld-y/workforce_radar/app/display/internal/usecase"
)

// ListRunsReply 运行列表响应
type ListRunsReply struct {
	Runs  []*domain.RunSummary `json:"runs"`
	Total int                  `json:"total"`
}

type DisplayService struct {
	ucReport    *usecase.ReportUseCase
	ucAnalytics *usecase.AnalyticsUseCase
	log         *log.Helper
}

func NewDisplayService(ucReport *usecase.ReportUseCase, ucAnalytics *usecase.AnalyticsUseCase, logger log.Logger) *DisplayService {
	return &DisplayService{
		ucReport:    ucReport,
		ucAnalytics: ucAnalytics,
		log:         log.NewHelper(logger),
	}
}

// ListRuns GET /v1/runs?page=&page_size=
func (s *DisplayService) ListRuns(ctx http.Context) error {
	q := ctx.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 {
		pageSize = 10
	}

	runs, total, err := s.ucReport.List(ctx, page, pageSize)
	if err != nil {
		return err
	}
	return ctx.Result(200, &ListRunsReply{Runs: runs, Total: total})
}

// GetRunImpact GET /v1/runs/{id}/impact
func (s *DisplayService) GetRunImpact(ctx http.Context) error {
	id, err := strconv.Atoi(ctx.Vars().Get("id"))
	if err != nil || id <= 0 {
		return errors.BadRequest("INVALID_RUN_ID", "run id must be a positive integer")
	}
	res, err := s.ucReport.GetImpact(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(200, res)
}

// GetComparative GET /v1/analytics/comparative
func (s *DisplayService) GetComparative(ctx http.Context) error {
	payload, err := s.ucAnalytics.Latest(ctx)
	if err != nil {
		return err
	}
	return ctx.Result(200, payload)
}

// RefreshComparative POST /v1/analytics/comparative/refresh
func (s *DisplayService) RefreshComparative(ctx http.Context) error {
	res, err := s.ucAnalytics.Refresh(ctx)
	if err != nil {
		return err
	}
	s.log.Infof("comparative payload refreshed by %s", ctx.Request().RemoteAddr)
	return ctx.Result(200, res)
}
