package taskmix

import (
	"math"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// Source 任务结构的数据来源
type Source string

const (
	SourceNone    Source = ""
	SourceCounts  Source = "counts"
	SourceTasks   Source = "tasks"
	SourceShares  Source = "shares"
	SourceCatalog Source = "catalog"
)

// WeightedTask 岗位下权重已归一化的任务
type WeightedTask struct {
	Key          string
	Name         string
	Weight       float64
	Automation   float64
	Augmentation float64
}

// Resolver 把岗位解析为任务结构，目录作为参数显式传入
type Resolver struct {
	catalog *catalog.Catalog
	total   int
}

// NewResolver 创建解析器，c 可以为 nil
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c, total: DefaultTaskTotal}
}

// Catalog 解析器使用的目录
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.catalog
}

// Occupation 为岗位匹配目录中的职业：代码优先，其次归一化标题，最后原始标题
func (r *Resolver) Occupation(role model.Role) (catalog.Occupation, bool) {
	if occ, ok := r.catalog.Lookup(role.Code, role.NormalizedTitle); ok {
		return occ, true
	}
	return r.catalog.ByTitle(role.Title)
}

// Counts 解析岗位的任务数：已存计数 → 岗位自带任务分类 → 占比合成 → 目录回退
func (r *Resolver) Counts(role model.Role) (model.TaskMixCounts, Source, bool) {
	if c := role.TaskMixCounts; c != nil && c.Total() > 0 && nonNegative(*c) {
		return *c, SourceCounts, true
	}
	if len(role.TopTasks) > 0 {
		c := classifyRoleTasks(role.TopTasks)
		if c.Total() > 0 {
			return c, SourceTasks, true
		}
	}
	if s, ok := storedShares(role); ok {
		return CountsFromShares(s, r.total), SourceShares, true
	}
	if occ, ok := r.Occupation(role); ok {
		c := ClassifyOccupation(occ)
		if c.Total() > 0 {
			return c, SourceCatalog, true
		}
	}
	return model.TaskMixCounts{}, SourceNone, false
}

// Shares 岗位各桶占比；只有占比时直接使用，不经过取整
func (r *Resolver) Shares(role model.Role) (model.TaskMixShares, bool) {
	counts, source, ok := r.Counts(role)
	if !ok {
		return model.TaskMixShares{}, false
	}
	if source == SourceShares {
		s, _ := storedShares(role)
		return s, true
	}
	return SharesFromCounts(counts), true
}

// Tasks 岗位的任务及权重：目录任务优先，其次岗位自带任务；权重只在正权重任务间归一化
func (r *Resolver) Tasks(role model.Role) []WeightedTask {
	var raw []WeightedTask
	if occ, ok := r.Occupation(role); ok && len(occ.Tasks) > 0 {
		for _, t := range occ.Tasks {
			raw = append(raw, WeightedTask{
				Key:          t.Key(),
				Name:         taskName(t),
				Weight:       t.Weight,
				Automation:   t.Automation,
				Augmentation: t.Augmentation,
			})
		}
	} else if len(role.TopTasks) > 0 {
		unweighted := true
		for _, t := range role.TopTasks {
			if t.Weight > 0 {
				unweighted = false
				break
			}
		}
		for _, t := range role.TopTasks {
			w := t.Weight
			if unweighted {
				w = 1
			}
			raw = append(raw, WeightedTask{
				Key:          catalog.NormalizeTitle(t.Name),
				Name:         t.Name,
				Weight:       w,
				Automation:   clamp01(t.AutomationScore),
				Augmentation: clamp01(t.AugmentationScore),
			})
		}
	}

	sum := 0.0
	for _, t := range raw {
		if validShare(t.Weight) && t.Key != "" {
			sum += t.Weight
		}
	}
	if sum == 0 {
		return nil
	}
	out := make([]WeightedTask, 0, len(raw))
	for _, t := range raw {
		if !validShare(t.Weight) || t.Key == "" {
			continue
		}
		t.Weight /= sum
		out = append(out, t)
	}
	return out
}

// ClassifyOccupation 对目录职业的任务逐项分类计数
func ClassifyOccupation(occ catalog.Occupation) model.TaskMixCounts {
	var c model.TaskMixCounts
	for _, t := range occ.Tasks {
		add(&c, ClassifyTask(t.Automation, t.Augmentation))
	}
	return c
}

// CountsFromShares 用最大余数法把占比转换为整数计数
func CountsFromShares(s model.TaskMixShares, total int) model.TaskMixCounts {
	n := LargestRemainder([]float64{s.Automation, s.Augmentation, s.Manual}, total)
	return model.TaskMixCounts{Automation: n[0], Augmentation: n[1], Manual: n[2]}
}

// SharesFromCounts 计数换算为占比，总数为 0 时返回零值
func SharesFromCounts(c model.TaskMixCounts) model.TaskMixShares {
	total := float64(c.Total())
	if total <= 0 {
		return model.TaskMixShares{}
	}
	return model.TaskMixShares{
		Automation:   float64(c.Automation) / total,
		Augmentation: float64(c.Augmentation) / total,
		Manual:       float64(c.Manual) / total,
	}
}

func classifyRoleTasks(tasks []model.RoleTask) model.TaskMixCounts {
	var c model.TaskMixCounts
	for _, t := range tasks {
		add(&c, ClassifyTask(t.AutomationScore, t.AugmentationScore))
	}
	return c
}

// storedShares 补全人工占比并归一化；三项均为 0 视为无数据
func storedShares(role model.Role) (model.TaskMixShares, bool) {
	if role.TaskMixShares == nil {
		return model.TaskMixShares{}, false
	}
	s := model.TaskMixShares{
		Automation:   positive(role.TaskMixShares.Automation),
		Augmentation: positive(role.TaskMixShares.Augmentation),
		Manual:       positive(role.TaskMixShares.Manual),
	}
	if s.Automation+s.Augmentation+s.Manual == 0 {
		return model.TaskMixShares{}, false
	}
	if s.Manual == 0 && s.Automation+s.Augmentation < 1 {
		s.Manual = 1 - s.Automation - s.Augmentation
	}
	sum := s.Automation + s.Augmentation + s.Manual
	if sum <= 0 {
		return model.TaskMixShares{}, false
	}
	if sum != 1 {
		s.Automation /= sum
		s.Augmentation /= sum
		s.Manual /= sum
	}
	return s, true
}

func add(c *model.TaskMixCounts, b Bucket) {
	switch b {
	case BucketAutomation:
		c.Automation++
	case BucketAugmentation:
		c.Augmentation++
	default:
		c.Manual++
	}
}

func nonNegative(c model.TaskMixCounts) bool {
	return c.Automation >= 0 && c.Augmentation >= 0 && c.Manual >= 0
}

func positive(v float64) float64 {
	if validShare(v) {
		return v
	}
	return 0
}

func clamp01(v float64) float64 {
	return math.Min(positive(v), 1)
}

func taskName(t catalog.Task) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
