package comparative

import (
	"sort"
	"strings"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/impact"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/orggraph"
)

type taskAcc struct {
	key          string
	name         string
	automation   float64
	augmentation float64
	runs         map[int]struct{}
	companies    map[string]*model.TaskContributor
	roles        map[string]float64
}

type taskTable struct {
	byKey map[string]*taskAcc
}

func newTaskTable() *taskTable {
	return &taskTable{byKey: make(map[string]*taskAcc)}
}

func (t *taskTable) get(key, name string) *taskAcc {
	if acc, ok := t.byKey[key]; ok {
		return acc
	}
	acc := &taskAcc{
		key:       key,
		name:      name,
		runs:      make(map[int]struct{}),
		companies: make(map[string]*model.TaskContributor),
		roles:     make(map[string]float64),
	}
	t.byKey[key] = acc
	return acc
}

// collectTasks 把有暴露度的岗位人数按任务权重拆分到各任务上累计
func (a *Aggregator) collectTasks(t *taskTable, run int, company string, in Input) {
	g := orggraph.Build(in.Report.Hierarchy, in.Report.Roles)
	for _, rh := range impact.RoleHeadcounts(g) {
		if rh.Role == nil || rh.Headcount <= 0 {
			continue
		}
		if !a.exposed(*rh.Role) {
			continue
		}
		title := strings.TrimSpace(rh.Role.Title)
		if title == "" {
			title = rh.Role.Code
		}
		for _, task := range a.resolver.Tasks(*rh.Role) {
			taskHeadcount := rh.Headcount * task.Weight
			auto := taskHeadcount * task.Automation
			aug := taskHeadcount * task.Augmentation
			if auto+aug <= 0 {
				continue
			}

			acc := t.get(task.Key, task.Name)
			acc.automation += auto
			acc.augmentation += aug
			acc.runs[run] = struct{}{}

			c, ok := acc.companies[company]
			if !ok {
				c = &model.TaskContributor{CompanyID: in.CompanyID, CompanyName: in.name()}
				acc.companies[company] = c
			}
			c.AutomationExposure += auto
			c.AugmentationExposure += aug
			c.Exposure += auto + aug

			if title != "" {
				acc.roles[title] += auto + aug
			}
		}
	}
}

// exposed 岗位的自动化与增强占比之和是否为正：任务结构优先，其次岗位自身声明的占比
func (a *Aggregator) exposed(role model.Role) bool {
	if s, ok := a.resolver.Shares(role); ok {
		return s.Exposure() > 0
	}
	total := 0.0
	if role.AutomationShare != nil {
		total += *role.AutomationShare
	}
	if role.AugmentationShare != nil {
		total += *role.AugmentationShare
	}
	return total > 0
}

// rank 过滤低于下限的任务，按总暴露度降序、运行次数降序、键升序排序并截断
func (t *taskTable) rank(opts Options) []model.TopTask {
	out := make([]model.TopTask, 0, len(t.byKey))
	for _, acc := range t.byKey {
		total := acc.automation + acc.augmentation
		if total <= opts.MinTaskExposure {
			continue
		}
		out = append(out, model.TopTask{
			Key:                  acc.key,
			Task:                 acc.name,
			AutomationExposure:   acc.automation,
			AugmentationExposure: acc.augmentation,
			TotalExposure:        total,
			RunCount:             len(acc.runs),
			CompanyCount:         len(acc.companies),
			SampleRoles:          topRoles(acc.roles, opts.MaxSampleRoles),
			Contributors:         topContributors(acc.companies, opts.MaxContributors),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalExposure != out[j].TotalExposure {
			return out[i].TotalExposure > out[j].TotalExposure
		}
		if out[i].RunCount != out[j].RunCount {
			return out[i].RunCount > out[j].RunCount
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > opts.TopTaskLimit {
		out = out[:opts.TopTaskLimit]
	}
	return out
}

func topContributors(companies map[string]*model.TaskContributor, limit int) []model.TaskContributor {
	out := make([]model.TaskContributor, 0, len(companies))
	for _, c := range companies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Exposure != out[j].Exposure {
			return out[i].Exposure > out[j].Exposure
		}
		if out[i].CompanyName != out[j].CompanyName {
			return out[i].CompanyName < out[j].CompanyName
		}
		return out[i].CompanyID < out[j].CompanyID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func topRoles(roles map[string]float64, limit int) []string {
	titles := make([]string, 0, len(roles))
	for title := range roles {
		titles = append(titles, title)
	}
	sort.Slice(titles, func(i, j int) bool {
		if roles[titles[i]] != roles[titles[j]] {
			return roles[titles[i]] > roles[titles[j]]
		}
		return titles[i] < titles[j]
	})
	if len(titles) > limit {
		titles = titles[:limit]
	}
	return titles
}
