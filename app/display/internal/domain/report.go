package domain

import (
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/impact"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// RunSummary 运行摘要信息
type RunSummary struct {
	ID          int      `json:"id"`
	CompanyID   string   `json:"companyId"`
	CompanyName string   `json:"companyName"`
	HQCountry   string   `json:"hqCountry"`
	Industry    string   `json:"industry"`
	Score       *float64 `json:"score"`
	CreatedAt   string   `json:"createdAt"`
}

// Run 运行详情，报告和指标已解码
type Run struct {
	RunSummary
	Report *model.OrgReport
	// Metric 已存的劳动力指标，nil 表示未存或存的是空信号
	Metric *model.WorkforceImpactSnapshot
	// MetricMalformed 已存指标无法解码或越界
	MetricMalformed bool
}

// RunImpact 单次运行的劳动力影响详情
type RunImpact struct {
	RunSummary
	Snapshot       *model.WorkforceImpactSnapshot `json:"snapshot"`
	Stored         bool                           `json:"stored"`
	TaskMixRoles   []impact.RoleExposure          `json:"taskMixRoles"`
	NodeShareRoles []impact.RoleImpact            `json:"nodeShareRoles"`
	Aggregations   []impact.AggregationImpact     `json:"aggregations"`
	Issues         []model.Issue                  `json:"issues"`
}
