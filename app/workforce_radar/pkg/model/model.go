package model

// CompanyProfile 报告所属公司的基础信息
type CompanyProfile struct {
	Name      string `json:"name"`
	HQCountry string `json:"hqCountry"`
	Industry  string `json:"industry"`
}

// DominantRole 节点下的主导岗位及其人数
type DominantRole struct {
	RoleID    string   `json:"roleId"`
	Headcount *float64 `json:"headcount,omitempty"`
}

// OrgNode 组织架构中的一个单元
type OrgNode struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	Level             int            `json:"level"`
	ParentID          string         `json:"parentId,omitempty"` // 空字符串表示根节点
	Headcount         *float64       `json:"headcount,omitempty"`
	AutomationShare   *float64       `json:"automationShare,omitempty"`
	AugmentationShare *float64       `json:"augmentationShare,omitempty"`
	DominantRoles     []DominantRole `json:"dominantRoles,omitempty"`
	DominantRoleIDs   []string       `json:"dominantRoleIds,omitempty"` // 只引用岗位，不携带人数
}

// TaskMixCounts 岗位任务在自动化/增强/人工三个桶中的数量
type TaskMixCounts struct {
	Automation   int `json:"automation"`
	Augmentation int `json:"augmentation"`
	Manual       int `json:"manual"`
}

// Total 任务总数
func (c TaskMixCounts) Total() int {
	return c.Automation + c.Augmentation + c.Manual
}

// TaskMixShares 岗位任务在三个桶中的占比
type TaskMixShares struct {
	Automation   float64 `json:"automation"`
	Augmentation float64 `json:"augmentation"`
	Manual       float64 `json:"manual"`
}

// Exposure 自动化与增强占比之和
func (s TaskMixShares) Exposure() float64 {
	return s.Automation + s.Augmentation
}

// RoleTask 报告中随岗位一起给出的任务
type RoleTask struct {
	Name              string  `json:"name"`
	Weight            float64 `json:"weight,omitempty"`
	AutomationScore   float64 `json:"automationScore"`
	AugmentationScore float64 `json:"augmentationScore"`
}

// Role 标准职业记录
type Role struct {
	Code              string         `json:"code"`
	Title             string         `json:"title"`
	NormalizedTitle   string         `json:"normalizedTitle,omitempty"`
	Headcount         *float64       `json:"headcount,omitempty"`
	AutomationShare   *float64       `json:"automationShare,omitempty"`
	AugmentationShare *float64       `json:"augmentationShare,omitempty"`
	TaskMixCounts     *TaskMixCounts `json:"taskMixCounts,omitempty"`
	TaskMixShares     *TaskMixShares `json:"taskMixShares,omitempty"`
	TopTasks          []RoleTask     `json:"topTasks,omitempty"`
}

// 聚合桶维度
const (
	DimensionFunction  = "function"
	DimensionGeography = "geography"
	DimensionSeniority = "seniority"
)

// AggregationBucket 生产方直接给出的命名聚合桶（职能、地域、职级）
type AggregationBucket struct {
	Dimension         string   `json:"dimension"`
	Name              string   `json:"name"`
	Headcount         *float64 `json:"headcount,omitempty"`
	AutomationShare   *float64 `json:"automationShare,omitempty"`
	AugmentationShare *float64 `json:"augmentationShare,omitempty"`
}

// ReportMetadata 报告元数据
type ReportMetadata struct {
	TotalWorkforceEstimate *float64 `json:"totalWorkforceEstimate,omitempty"`
	GeneratedBy            string   `json:"generatedBy,omitempty"`
}

// OrgReport 已校验的组织报告
type OrgReport struct {
	Company      CompanyProfile      `json:"company"`
	Hierarchy    []OrgNode           `json:"hierarchy"`
	Roles        []Role              `json:"roles"`
	Aggregations []AggregationBucket `json:"aggregations,omitempty"`
	Metadata     ReportMetadata      `json:"metadata"`
}

// Float 返回 v 的指针，便于构造可空字段
func Float(v float64) *float64 {
	return &v
}
