package model

import "time"

// WorkforceImpactSnapshot 单个公司的劳动力暴露度快照，没有可用信号时整体为 nil
type WorkforceImpactSnapshot struct {
	Score                 float64 `json:"score" validate:"gte=0,lte=10"`
	TotalHeadcount        float64 `json:"totalHeadcount" validate:"gte=0"`
	AutomationImpact      float64 `json:"automationImpact" validate:"gte=0"`
	AugmentationImpact    float64 `json:"augmentationImpact" validate:"gte=0"`
	CoverageHeadcount     float64 `json:"coverageHeadcount" validate:"gte=0"`
	AutomationComponent   float64 `json:"automationComponent" validate:"gte=0,lte=1"`
	AugmentationComponent float64 `json:"augmentationComponent" validate:"gte=0,lte=1"`
	CoverageComponent     float64 `json:"coverageComponent" validate:"gte=0,lte=1"`
}

// Coverage 跨公司覆盖情况
type Coverage struct {
	Companies       int      `json:"companies"`
	Runs            int      `json:"runs"`
	TotalHeadcount  float64  `json:"totalHeadcount"`
	AverageExposure *float64 `json:"averageExposure"`
}

// GroupMetrics 按国家或行业分组后的指标
type GroupMetrics struct {
	Key                   string   `json:"key"`
	Label                 string   `json:"label"`
	RunCount              int      `json:"runCount"`
	CompanyCount          int      `json:"companyCount"`
	TotalHeadcount        float64  `json:"totalHeadcount"`
	AverageScore          *float64 `json:"averageScore"`
	AutomationComponent   *float64 `json:"automationComponent"`
	AugmentationComponent *float64 `json:"augmentationComponent"`
	CoverageComponent     *float64 `json:"coverageComponent"`
	HighRiskShare         float64  `json:"highRiskShare"`
}

// HeatmapCell 国家×行业热力图中的一格
type HeatmapCell struct {
	CountryKey    string   `json:"countryKey"`
	Country       string   `json:"country"`
	IndustryKey   string   `json:"industryKey"`
	Industry      string   `json:"industry"`
	RunCount      int      `json:"runCount"`
	AverageScore  *float64 `json:"averageScore"`
	HighRiskShare float64  `json:"highRiskShare"`
}

// Distribution 分组内得分的五数概括，基于未加权原始得分
type Distribution struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Count  int      `json:"count"`
	Min    *float64 `json:"min"`
	Q1     *float64 `json:"q1"`
	Median *float64 `json:"median"`
	Q3     *float64 `json:"q3"`
	Max    *float64 `json:"max"`
}

// Distributions 按国家和行业的分布
type Distributions struct {
	ByCountry  []Distribution `json:"byCountry"`
	ByIndustry []Distribution `json:"byIndustry"`
}

// TaskContributor 对某项任务暴露度贡献最大的公司
type TaskContributor struct {
	CompanyID            string  `json:"companyId"`
	CompanyName          string  `json:"companyName,omitempty"`
	Exposure             float64 `json:"exposure"`
	AutomationExposure   float64 `json:"automationExposure"`
	AugmentationExposure float64 `json:"augmentationExposure"`
}

// TopTask 按总暴露度排序的任务
type TopTask struct {
	Key                  string            `json:"key"`
	Task                 string            `json:"task"`
	AutomationExposure   float64           `json:"automationExposure"`
	AugmentationExposure float64           `json:"augmentationExposure"`
	TotalExposure        float64           `json:"totalExposure"`
	RunCount             int               `json:"runCount"`
	CompanyCount         int               `json:"companyCount"`
	SampleRoles          []string          `json:"sampleRoles"`
	Contributors         []TaskContributor `json:"contributors"`
}

// ComparativeAnalyticsPayload 跨公司对比分析结果，每次全量重新生成
type ComparativeAnalyticsPayload struct {
	GeneratedAt   time.Time      `json:"generatedAt"`
	Coverage      Coverage       `json:"coverage"`
	Countries     []GroupMetrics `json:"countries"`
	Industries    []GroupMetrics `json:"industries"`
	Heatmap       []HeatmapCell  `json:"heatmap"`
	Distributions Distributions  `json:"distributions"`
	TopTasks      []TopTask      `json:"topTasks"`
}
