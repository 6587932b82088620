package impact

import (
	"sort"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/orggraph"
)

// RoleImpact 节点占比视角下的岗位影响，与任务目录视角的 RoleExposure 相互独立，二者可以不一致
type RoleImpact struct {
	Key                string  `json:"key"`
	Title              string  `json:"title"`
	Resolved           bool    `json:"resolved"`
	Headcount          float64 `json:"headcount"`
	AutomationImpact   float64 `json:"automationImpact"`
	AugmentationImpact float64 `json:"augmentationImpact"`
	TotalImpact        float64 `json:"totalImpact"`
	NodeCount          int     `json:"nodeCount"`
}

// AggregationImpact 命名聚合桶的影响
type AggregationImpact struct {
	Dimension          string  `json:"dimension"`
	Name               string  `json:"name"`
	Headcount          float64 `json:"headcount"`
	AutomationImpact   float64 `json:"automationImpact"`
	AugmentationImpact float64 `json:"augmentationImpact"`
	Impact             float64 `json:"impact"`
}

// CollectRoleImpacts 用节点自身占比（缺失时用子树汇总占比）乘以节点上的岗位人数，按岗位累加。
// 两种占比都没有的节点跳过。
func CollectRoleImpacts(g *orggraph.Graph) []RoleImpact {
	var out []RoleImpact
	index := make(map[string]int)

	for _, n := range g.Nodes() {
		auto, aug := n.AutomationShare, n.AugmentationShare
		if agg, ok := g.Aggregate(n.ID); ok {
			if auto == nil {
				auto = agg.AutomationShare
			}
			if aug == nil {
				aug = agg.AugmentationShare
			}
		}
		if auto == nil && aug == nil {
			continue
		}

		seen := make(map[string]bool)
		for _, dr := range n.DominantRoles {
			if dr.Headcount == nil || !finite(*dr.Headcount) || *dr.Headcount <= 0 {
				continue
			}
			key, title, resolved := "ref:"+orggraph.RefKey(dr.RoleID), dr.RoleID, false
			if role, ok := g.ResolveRole(dr.RoleID); ok {
				key, title, resolved = orggraph.RoleKey(*role), role.Title, true
			}
			i, ok := index[key]
			if !ok {
				i = len(out)
				index[key] = i
				out = append(out, RoleImpact{Key: key, Title: title, Resolved: resolved})
			}
			hc := *dr.Headcount
			ri := &out[i]
			ri.Headcount += hc
			ri.AutomationImpact += hc * valueOr(auto)
			ri.AugmentationImpact += hc * valueOr(aug)
			if !seen[key] {
				seen[key] = true
				ri.NodeCount++
			}
		}
	}

	for i := range out {
		out[i].TotalImpact = out[i].AutomationImpact + out[i].AugmentationImpact
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalImpact != out[j].TotalImpact {
			return out[i].TotalImpact > out[j].TotalImpact
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// CollectAggregationImpacts 对生产方给出的命名桶直接计算 headcount*(automation+augmentation)，不需要解析岗位
func CollectAggregationImpacts(buckets []model.AggregationBucket) []AggregationImpact {
	out := make([]AggregationImpact, 0, len(buckets))
	for _, b := range buckets {
		if b.Headcount == nil || !finite(*b.Headcount) || *b.Headcount <= 0 {
			continue
		}
		if b.AutomationShare == nil && b.AugmentationShare == nil {
			continue
		}
		hc := *b.Headcount
		ai := AggregationImpact{
			Dimension:          b.Dimension,
			Name:               b.Name,
			Headcount:          hc,
			AutomationImpact:   hc * valueOr(b.AutomationShare),
			AugmentationImpact: hc * valueOr(b.AugmentationShare),
		}
		ai.Impact = ai.AutomationImpact + ai.AugmentationImpact
		out = append(out, ai)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dimension != out[j].Dimension {
			return out[i].Dimension < out[j].Dimension
		}
		if out[i].Impact != out[j].Impact {
			return out[i].Impact > out[j].Impact
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func valueOr(v *float64) float64 {
	if v == nil || !finite(*v) || *v < 0 {
		return 0
	}
	return *v
}
