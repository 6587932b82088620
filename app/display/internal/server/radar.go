package server

import (
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/workforce_radar/app/display/internal/conf"
	"github.com/iWorld-y/workforce_radar/app/display/internal/data"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/config"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/engine"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/impact"
	wrLogger "github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/logger"
)

// NewRadarConfig 将 internal/conf.Radar 转换为 pkg/config.Config，未配置项保留默认值
func NewRadarConfig(c *conf.Radar, logger log.Logger) (*config.Config, error) {
	cfg := config.Default()
	if c != nil {
		cfg.Catalog.Path = c.CatalogPath
		if c.Log != nil {
			cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
		}
		if c.Concurrency != nil {
			cfg.Concurrency = config.ConcurrencyConfig{
				Workers: int(c.Concurrency.Workers),
				QPS:     int(c.Concurrency.Qps),
				RPM:     int(c.Concurrency.Rpm),
			}
		}
		if a := c.Analytics; a != nil {
			cfg.Analytics.HighRiskThreshold = a.HighRiskThreshold
			cfg.Analytics.TopTaskLimit = int(a.TopTaskLimit)
			cfg.Analytics.MinTaskExposure = a.MinTaskExposure
			cfg.Analytics.MaxContributors = int(a.MaxContributors)
			cfg.Analytics.MaxSampleRoles = int(a.MaxSampleRoles)
		}
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	// 初始化日志
	if err := wrLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.NewHelper(logger).Errorf("Failed to init workforce_radar logger: %v", err)
		_ = wrLogger.InitLogger("info", "") // 降级处理
	}
	return &cfg, nil
}

// NewCatalog 加载职业目录，未配置时返回 nil
func NewCatalog(cfg *config.Config, logger log.Logger) (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return nil, nil
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.NewHelper(logger).Errorf("Failed to load occupation catalog: %v", err)
		return nil, err
	}
	return cat, nil
}

// NewCalculator 劳动力影响计算器
func NewCalculator(cat *catalog.Catalog) *impact.Calculator {
	return impact.NewCalculator(cat)
}

// NewRadarEngine 初始化对比分析引擎，复用展示服务的数据库连接
func NewRadarEngine(cfg *config.Config, d *data.Data, cat *catalog.Catalog) *engine.Engine {
	return engine.NewEngine(cfg, d.Store(), cat)
}
