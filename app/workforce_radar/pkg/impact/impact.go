package impact

import (
	"math"
	"sort"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/orggraph"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/taskmix"
)

// ScoreScale 暴露度得分的满分
const ScoreScale = 10.0

// RoleHeadcount 某个岗位在整棵组织树中累计的人数
type RoleHeadcount struct {
	Key       string
	Ref       string // 第一次出现时的原始引用
	NodeID    string // 第一次出现的节点
	Role      *model.Role
	Headcount float64
}

// RoleExposure 任务目录视角下单个岗位的暴露度
type RoleExposure struct {
	Key                string         `json:"key"`
	Code               string         `json:"code"`
	Title              string         `json:"title"`
	Headcount          float64        `json:"headcount"`
	AutomationShare    float64        `json:"automationShare"`
	AugmentationShare  float64        `json:"augmentationShare"`
	AutomationImpact   float64        `json:"automationImpact"`
	AugmentationImpact float64        `json:"augmentationImpact"`
	Source             taskmix.Source `json:"source"`
}

// Result 单份报告的计算结果；Snapshot 为 nil 表示没有可用信号
type Result struct {
	Snapshot *model.WorkforceImpactSnapshot `json:"snapshot"`
	Roles    []RoleExposure                 `json:"roles"`
	Issues   []model.Issue                  `json:"issues"`
	Graph    *orggraph.Graph                `json:"-"`
}

// Calculator 劳动力影响计算器，无状态，可并发使用
type Calculator struct {
	resolver *taskmix.Resolver
}

// NewCalculator 创建计算器，c 为 nil 时只使用报告自带的任务数据
func NewCalculator(c *catalog.Catalog) *Calculator {
	return &Calculator{resolver: taskmix.NewResolver(c)}
}

// Resolver 计算器使用的任务结构解析器
func (c *Calculator) Resolver() *taskmix.Resolver {
	return c.resolver
}

// Calculate 把节点上的岗位人数与岗位任务结构结合成公司级快照
func (c *Calculator) Calculate(report model.OrgReport) Result {
	g := orggraph.Build(report.Hierarchy, report.Roles)
	res := Result{Graph: g}
	res.Issues = append(res.Issues, g.Issues()...)

	var (
		summed     float64
		known      float64
		automation float64
		augment    float64
	)
	for _, rh := range RoleHeadcounts(g) {
		if rh.Headcount <= 0 {
			continue
		}
		summed += rh.Headcount
		if rh.Role == nil {
			// 未解析引用已由 orggraph 记录
			continue
		}
		_, source, _ := c.resolver.Counts(*rh.Role)
		shares, ok := c.resolver.Shares(*rh.Role)
		if !ok {
			res.Issues = append(res.Issues, model.Issue{
				Kind:   model.IssueMissingSignal,
				Ref:    rh.Ref,
				NodeID: rh.NodeID,
				Reason: "role has no task mix",
			})
			continue
		}
		re := RoleExposure{
			Key:                rh.Key,
			Code:               rh.Role.Code,
			Title:              rh.Role.Title,
			Headcount:          rh.Headcount,
			AutomationShare:    shares.Automation,
			AugmentationShare:  shares.Augmentation,
			AutomationImpact:   rh.Headcount * shares.Automation,
			AugmentationImpact: rh.Headcount * shares.Augmentation,
			Source:             source,
		}
		automation += re.AutomationImpact
		augment += re.AugmentationImpact
		known += rh.Headcount
		res.Roles = append(res.Roles, re)
	}
	sort.SliceStable(res.Roles, func(i, j int) bool {
		a, b := res.Roles[i], res.Roles[j]
		ia, ib := a.AutomationImpact+a.AugmentationImpact, b.AutomationImpact+b.AugmentationImpact
		if ia != ib {
			return ia > ib
		}
		return a.Key < b.Key
	})

	if known == 0 {
		res.Issues = append(res.Issues, model.Issue{
			Kind:   model.IssueMissingSignal,
			Ref:    report.Company.Name,
			Reason: "no headcount backed by a resolvable role",
		})
		return res
	}

	denominator := Denominator(summed, report.Metadata.TotalWorkforceEstimate, known)
	snap := &model.WorkforceImpactSnapshot{
		TotalHeadcount:        denominator,
		AutomationImpact:      automation,
		AugmentationImpact:    augment,
		CoverageHeadcount:     known,
		AutomationComponent:   automation / denominator,
		AugmentationComponent: augment / denominator,
		CoverageComponent:     known / denominator,
	}
	snap.Score = ScoreScale * (snap.AutomationComponent + snap.AugmentationComponent)
	res.Snapshot = snap
	return res
}

// Denominator 依次取岗位人数合计、报告声明的员工总数、已解析人数，最小为 1
func Denominator(summed float64, estimate *float64, known float64) float64 {
	d := known
	switch {
	case summed > 0:
		d = summed
	case estimate != nil && *estimate > 0 && !math.IsInf(*estimate, 0):
		d = *estimate
	}
	return math.Max(d, 1)
}

// RoleHeadcounts 汇总每个岗位在所有节点上的人数，同一岗位出现在多个节点时累加。
// 节点上没有任何岗位人数时，退回使用岗位自身声明的人数。
func RoleHeadcounts(g *orggraph.Graph) []RoleHeadcount {
	var out []RoleHeadcount
	index := make(map[string]int)
	add := func(key, ref, nodeID string, role *model.Role, hc float64) {
		if i, ok := index[key]; ok {
			out[i].Headcount += hc
			return
		}
		index[key] = len(out)
		out = append(out, RoleHeadcount{Key: key, Ref: ref, NodeID: nodeID, Role: role, Headcount: hc})
	}

	for _, n := range g.Nodes() {
		for _, dr := range n.DominantRoles {
			if dr.Headcount == nil || !finite(*dr.Headcount) || *dr.Headcount <= 0 {
				continue
			}
			if role, ok := g.ResolveRole(dr.RoleID); ok {
				add(orggraph.RoleKey(*role), dr.RoleID, n.ID, role, *dr.Headcount)
				continue
			}
			add("ref:"+orggraph.RefKey(dr.RoleID), dr.RoleID, n.ID, nil, *dr.Headcount)
		}
	}
	if len(out) > 0 {
		return out
	}

	roles := g.RoleIndex().Roles()
	for i := range roles {
		r := &roles[i]
		if r.Headcount == nil || !finite(*r.Headcount) || *r.Headcount <= 0 {
			continue
		}
		add(orggraph.RoleKey(*r), r.Code, "", r, *r.Headcount)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
