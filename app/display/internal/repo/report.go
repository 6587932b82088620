package repo

import (
	"context"

	"github.com/iWorld-y/workforce_radar/app/display/internal/domain"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// RunRepo 运行仓库接口
type RunRepo interface {
	// ListRuns 分页获取运行摘要列表
	ListRuns(ctx context.Context, page, pageSize int) ([]*domain.RunSummary, int, error)
	// GetRun 根据ID获取运行详情
	GetRun(ctx context.Context, id int) (*domain.Run, error)
	// LatestPayload 获取最近一次对比分析结果
	LatestPayload(ctx context.Context) (*model.ComparativeAnalyticsPayload, error)
}
