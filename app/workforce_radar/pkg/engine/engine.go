package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/comparative"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/config"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/impact"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/logger"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/storage"
)

// Store 批处理依赖的存储能力
type Store interface {
	SaveRun(ctx context.Context, run *storage.Run, metric *model.WorkforceImpactSnapshot) (int, error)
	ListRuns(ctx context.Context) ([]*storage.Run, error)
	SaveWorkforceMetric(ctx context.Context, runID int, metric *model.WorkforceImpactSnapshot) error
	SavePayload(ctx context.Context, batchID string, payload *model.ComparativeAnalyticsPayload) error
}

// Engine 对比分析批处理引擎
type Engine struct {
	cfg        *config.Config
	store      Store
	calculator *impact.Calculator
	aggregator *comparative.Aggregator
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewEngine 创建引擎实例，store 为 nil 时只能使用 Compare
func NewEngine(cfg *config.Config, store Store, cat *catalog.Catalog) *Engine {
	// 初始化限流器，用于控制指标回写
	limit := rate.Inf
	if cfg.Concurrency.RPM > 0 {
		limit = rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	}
	burst := cfg.Concurrency.QPS
	if burst <= 0 {
		burst = 1
	}

	return &Engine{
		cfg:        cfg,
		store:      store,
		calculator: impact.NewCalculator(cat),
		aggregator: comparative.NewAggregator(cat, cfg.Analytics),
		limiter:    rate.NewLimiter(limit, burst),
		now:        time.Now,
	}
}

// Calculator 引擎使用的影响计算器
func (e *Engine) Calculator() *impact.Calculator {
	return e.calculator
}

// RunIssue 带运行 ID 的数据质量问题
type RunIssue struct {
	RunID int `json:"runId"`
	model.Issue
}

// RunOptions 运行选项
type RunOptions struct {
	Persist          bool // 是否保存对比分析结果
	ProgressCallback func(status string, progress int)
}

// Result 一次批处理的结果
type Result struct {
	BatchID    string                             `json:"batchId"`
	Payload    *model.ComparativeAnalyticsPayload `json:"payload"`
	Issues     []RunIssue                         `json:"issues"`
	Recomputed int                                `json:"recomputed"`
}

type runOutcome struct {
	input      comparative.Input
	issues     []model.Issue
	recomputed bool
}

// Run 加载全部运行，恢复或重算快照，生成对比分析结果
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if e.store == nil {
		return nil, errors.New("engine has no store")
	}
	start := time.Now()
	defer observeBatch(start)

	batchID := uuid.NewString()
	log := logger.Log.WithField("batch", batchID)
	progress := func(status string, p int) {
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(status, p)
		}
	}
	progress("starting", 0)

	runs, err := e.store.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}
	log.Infof("开始对比分析批处理，共 %d 次运行", len(runs))
	progress("runs loaded", 10)

	outcomes := make([]runOutcome, len(runs))
	var (
		mu        sync.Mutex
		completed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, run := range runs {
		g.Go(func() error {
			out, err := e.resolveRun(gctx, run)
			if err != nil {
				return err
			}
			outcomes[i] = out

			mu.Lock()
			completed++
			p := 10 + int(float64(completed)/float64(len(runs))*70) // 10% -> 80%
			progress(fmt.Sprintf("resolved run %d", run.ID), p)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{BatchID: batchID}
	inputs := make([]comparative.Input, 0, len(outcomes))
	for i, out := range outcomes {
		inputs = append(inputs, out.input)
		if out.recomputed {
			res.Recomputed++
		}
		for _, is := range out.issues {
			res.Issues = append(res.Issues, RunIssue{RunID: runs[i].ID, Issue: is})
		}
	}

	progress("aggregating", 85)
	res.Payload = e.aggregator.Aggregate(inputs, e.now().UTC())

	if opts.Persist {
		if err := e.store.SavePayload(ctx, batchID, res.Payload); err != nil {
			return nil, fmt.Errorf("save comparative payload: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"runs":       res.Payload.Coverage.Runs,
		"companies":  res.Payload.Coverage.Companies,
		"recomputed": res.Recomputed,
		"issues":     len(res.Issues),
	}).Info("对比分析批处理完成")
	progress("completed", 100)
	return res, nil
}

// resolveRun 解码已存指标；缺失或损坏时由报告重算并回写
func (e *Engine) resolveRun(ctx context.Context, run *storage.Run) (runOutcome, error) {
	log := logger.Log.WithField("run", run.ID)
	var out runOutcome

	report, err := run.DecodeReport()
	if err != nil {
		log.Warnf("报告无法解码，按无报告处理: %v", err)
		report = nil
	}

	metric, err := storage.DecodeSnapshot(run.Metric)
	malformed := errors.Is(err, storage.ErrMalformedMetric)
	if malformed {
		out.issues = append(out.issues, model.Issue{
			Kind:   model.IssueMalformedMetric,
			Ref:    "run:" + strconv.Itoa(run.ID),
			Reason: err.Error(),
		})
	}

	source := sourceStored
	switch {
	case metric != nil:
		// 已存指标有效
	case len(run.Metric) > 0 && !malformed:
		source = sourceNoSignal
	case report == nil:
		source = sourceMissing
	default:
		calc := e.calculator.Calculate(*report)
		metric = calc.Snapshot
		out.issues = append(out.issues, calc.Issues...)
		out.recomputed = true
		source = sourceRecomputed
		if err := e.persistMetric(ctx, run.ID, metric); err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			metricWriteFailures.Inc()
			log.Errorf("回写劳动力指标失败: %v", err)
		}
	}
	recordRun(source)
	recordIssues(out.issues)
	for _, is := range out.issues {
		log.WithFields(logrus.Fields{"kind": is.Kind, "ref": is.Ref, "node": is.NodeID}).Warn(is.Reason)
	}

	out.input = comparative.Input{
		RunID:           strconv.Itoa(run.ID),
		CompanyID:       run.CompanyID,
		CompanyName:     run.CompanyName,
		HQCountry:       run.HQCountry,
		Industry:        run.Industry,
		WorkforceMetric: metric,
		Report:          report,
	}
	return out, nil
}

func (e *Engine) persistMetric(ctx context.Context, runID int, metric *model.WorkforceImpactSnapshot) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return err
	}
	return e.store.SaveWorkforceMetric(ctx, runID, metric)
}

func (e *Engine) workers() int {
	w := e.cfg.Concurrency.Workers
	if w <= 0 {
		return 1
	}
	return w
}

// Compare 对内存中的输入执行聚合；缺少快照但带报告的输入当场计算
func (e *Engine) Compare(inputs []comparative.Input) (*model.ComparativeAnalyticsPayload, []model.Issue) {
	var issues []model.Issue
	filled := make([]comparative.Input, len(inputs))
	for i, in := range inputs {
		if in.WorkforceMetric == nil && in.Report != nil {
			calc := e.calculator.Calculate(*in.Report)
			in.WorkforceMetric = calc.Snapshot
			issues = append(issues, calc.Issues...)
		}
		filled[i] = in
	}
	return e.aggregator.Aggregate(filled, e.now().UTC()), issues
}

// Ingest 计算报告的快照并与报告一起保存为一次新的运行
func (e *Engine) Ingest(ctx context.Context, companyID string, report model.OrgReport) (int, impact.Result, error) {
	if e.store == nil {
		return 0, impact.Result{}, errors.New("engine has no store")
	}
	res := e.calculator.Calculate(report)
	recordIssues(res.Issues)

	data, err := json.Marshal(report)
	if err != nil {
		return 0, res, fmt.Errorf("encode report: %w", err)
	}
	if companyID == "" {
		companyID = report.Company.Name
	}
	runID, err := e.store.SaveRun(ctx, &storage.Run{
		CompanyID:   companyID,
		CompanyName: report.Company.Name,
		HQCountry:   report.Company.HQCountry,
		Industry:    report.Company.Industry,
		Report:      data,
	}, res.Snapshot)
	if err != nil {
		return 0, res, fmt.Errorf("save run: %w", err)
	}
	logger.Log.WithFields(logrus.Fields{"run": runID, "company": report.Company.Name, "issues": len(res.Issues)}).Info("报告已入库")
	return runID, res, nil
}
