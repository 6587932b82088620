package usecase

import (
	"context"
	"sync"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/workforce_radar/app/display/internal/repo"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/engine"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// BatchRunner 对比分析批处理
type BatchRunner interface {
	Run(ctx context.Context, opts engine.RunOptions) (*engine.Result, error)
}

// AnalyticsUseCase 对比分析业务逻辑
type AnalyticsUseCase struct {
	repo   repo.RunRepo
	runner BatchRunner
	log    *log.Helper

	mu      sync.Mutex
	running bool
}

// NewAnalyticsUseCase 创建对比分析业务逻辑实例
func NewAnalyticsUseCase(repo repo.RunRepo, runner BatchRunner, logger log.Logger) *AnalyticsUseCase {
	return &AnalyticsUseCase{repo: repo, runner: runner, log: log.NewHelper(logger)}
}

// Latest 最近一次对比分析结果
func (uc *AnalyticsUseCase) Latest(ctx context.Context) (*model.ComparativeAnalyticsPayload, error) {
	return uc.repo.LatestPayload(ctx)
}

// Refresh 同步执行一次批处理并保存结果，同一时间只允许一个批处理
func (uc *AnalyticsUseCase) Refresh(ctx context.Context) (*engine.Result, error) {
	uc.mu.Lock()
	if uc.running {
		uc.mu.Unlock()
		return nil, errors.Conflict("BATCH_RUNNING", "a comparative batch is already running")
	}
	uc.running = true
	uc.mu.Unlock()
	defer func() {
		uc.mu.Lock()
		uc.running = false
		uc.mu.Unlock()
	}()

	res, err := uc.runner.Run(ctx, engine.RunOptions{
		Persist: true,
		ProgressCallback: func(status string, progress int) {
			uc.log.Debugf("[%3d%%] %s", progress, status)
		},
	})
	if err != nil {
		uc.log.Errorf("comparative batch failed: %v", err)
		return nil, err
	}
	uc.log.Infof("comparative batch %s done: %d runs, %d issues", res.BatchID, res.Payload.Coverage.Runs, len(res.Issues))
	return res, nil
}
