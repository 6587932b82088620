package comparative

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/taskmix"
)

// Options 聚合参数
type Options struct {
	HighRiskThreshold float64 `yaml:"high_risk_threshold" json:"highRiskThreshold" validate:"gte=0,lte=10"`
	TopTaskLimit      int     `yaml:"top_task_limit" json:"topTaskLimit" validate:"gte=0"`
	MinTaskExposure   float64 `yaml:"min_task_exposure" json:"minTaskExposure" validate:"gte=0"`
	MaxContributors   int     `yaml:"max_contributors" json:"maxContributors" validate:"gte=0"`
	MaxSampleRoles    int     `yaml:"max_sample_roles" json:"maxSampleRoles" validate:"gte=0"`
}

// DefaultOptions 默认参数
func DefaultOptions() Options {
	return Options{
		HighRiskThreshold: 6,
		TopTaskLimit:      20,
		MinTaskExposure:   0.5,
		MaxContributors:   5,
		MaxSampleRoles:    3,
	}
}

// withDefaults 为零值字段补默认值；MinTaskExposure 的 0 是合法取值，不做替换
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HighRiskThreshold <= 0 {
		o.HighRiskThreshold = d.HighRiskThreshold
	}
	if o.TopTaskLimit <= 0 {
		o.TopTaskLimit = d.TopTaskLimit
	}
	if o.MinTaskExposure < 0 {
		o.MinTaskExposure = 0
	}
	if o.MaxContributors <= 0 {
		o.MaxContributors = d.MaxContributors
	}
	if o.MaxSampleRoles <= 0 {
		o.MaxSampleRoles = d.MaxSampleRoles
	}
	return o
}

// Input 一次已完成的分析运行
type Input struct {
	RunID           string                         `json:"runId,omitempty"`
	CompanyID       string                         `json:"companyId"`
	CompanyName     string                         `json:"companyName,omitempty"`
	HQCountry       string                         `json:"hqCountry,omitempty"`
	Industry        string                         `json:"industry,omitempty"`
	WorkforceMetric *model.WorkforceImpactSnapshot `json:"workforceMetric"`
	Report          *model.OrgReport               `json:"report,omitempty"`
}

func (in Input) country() string {
	if strings.TrimSpace(in.HQCountry) == "" && in.Report != nil {
		return in.Report.Company.HQCountry
	}
	return in.HQCountry
}

func (in Input) industry() string {
	if strings.TrimSpace(in.Industry) == "" && in.Report != nil {
		return in.Report.Company.Industry
	}
	return in.Industry
}

func (in Input) name() string {
	if in.CompanyName == "" && in.Report != nil {
		return in.Report.Company.Name
	}
	return in.CompanyName
}

// companyKey 公司去重键：ID 优先，其次名称
func (in Input) companyKey() string {
	if id := strings.TrimSpace(in.CompanyID); id != "" {
		return "id:" + id
	}
	if name := catalog.NormalizeTitle(in.name()); name != "" {
		return "name:" + name
	}
	return ""
}

// Aggregator 跨公司对比聚合器，每次调用都从输入全量重算
type Aggregator struct {
	opts     Options
	resolver *taskmix.Resolver
}

// NewAggregator 创建聚合器，目录用于任务排行
func NewAggregator(c *catalog.Catalog, opts Options) *Aggregator {
	return &Aggregator{opts: opts.withDefaults(), resolver: taskmix.NewResolver(c)}
}

// Options 实际生效的参数
func (a *Aggregator) Options() Options {
	return a.opts
}

type sample struct {
	score, automation, augmentation, coverage, weight float64
}

type group struct {
	key, label string
	companies  map[string]struct{}
	headcount  float64
	samples    []sample
	highRisk   int
}

func (g *group) add(s sample, company string, highRisk bool) {
	g.samples = append(g.samples, s)
	g.headcount += s.weight
	if company != "" {
		g.companies[company] = struct{}{}
	}
	if highRisk {
		g.highRisk++
	}
}

type groupSet struct {
	byKey map[string]*group
	order []*group
}

func newGroupSet() *groupSet {
	return &groupSet{byKey: make(map[string]*group)}
}

func (gs *groupSet) get(key, label string) *group {
	if g, ok := gs.byKey[key]; ok {
		return g
	}
	g := &group{key: key, label: label, companies: make(map[string]struct{})}
	gs.byKey[key] = g
	gs.order = append(gs.order, g)
	return g
}

// sorted 按运行次数降序，再按标签、键升序
func (gs *groupSet) sorted() []*group {
	out := append([]*group(nil), gs.order...)
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].samples) != len(out[j].samples) {
			return len(out[i].samples) > len(out[j].samples)
		}
		if out[i].label != out[j].label {
			return out[i].label < out[j].label
		}
		return out[i].key < out[j].key
	})
	return out
}

// Aggregate 生成对比分析结果。没有快照的输入不参与任何统计。
func (a *Aggregator) Aggregate(inputs []Input, generatedAt time.Time) *model.ComparativeAnalyticsPayload {
	countries := newGroupSet()
	industries := newGroupSet()
	cells := newGroupSet()
	cellAxes := make(map[string][2]*group)
	tasks := newTaskTable()

	var (
		all       []sample
		companies = make(map[string]struct{})
	)
	for i, in := range inputs {
		m := in.WorkforceMetric
		if m == nil || !usable(m) {
			continue
		}
		s := sample{
			score:        m.Score,
			automation:   m.AutomationComponent,
			augmentation: m.AugmentationComponent,
			coverage:     m.CoverageComponent,
			weight:       m.TotalHeadcount,
		}
		highRisk := m.Score >= a.opts.HighRiskThreshold
		company := in.companyKey()
		if company == "" {
			company = "run:" + strconv.Itoa(i)
		}
		all = append(all, s)
		companies[company] = struct{}{}

		var cg, ig *group
		if label := CanonicalCountry(in.country()); label != "" {
			cg = countries.get(groupKey(label), label)
			cg.add(s, company, highRisk)
		}
		if label := CanonicalIndustry(in.industry()); label != "" {
			ig = industries.get(groupKey(label), label)
			ig.add(s, company, highRisk)
		}
		if cg != nil && ig != nil {
			key := cg.key + "\x00" + ig.key
			cell := cells.get(key, "")
			cell.add(s, company, highRisk)
			cellAxes[key] = [2]*group{cg, ig}
		}

		if in.Report != nil {
			a.collectTasks(tasks, i, company, in)
		}
	}

	payload := &model.ComparativeAnalyticsPayload{
		GeneratedAt: generatedAt,
		Coverage:    coverage(all, len(companies)),
		Countries:   []model.GroupMetrics{},
		Industries:  []model.GroupMetrics{},
		Heatmap:     []model.HeatmapCell{},
		Distributions: model.Distributions{
			ByCountry:  []model.Distribution{},
			ByIndustry: []model.Distribution{},
		},
	}
	for _, g := range countries.sorted() {
		payload.Countries = append(payload.Countries, metrics(g))
		payload.Distributions.ByCountry = append(payload.Distributions.ByCountry, distribution(g))
	}
	for _, g := range industries.sorted() {
		payload.Industries = append(payload.Industries, metrics(g))
		payload.Distributions.ByIndustry = append(payload.Distributions.ByIndustry, distribution(g))
	}
	payload.Heatmap = heatmap(cells, cellAxes)
	payload.TopTasks = tasks.rank(a.opts)
	return payload
}

func usable(m *model.WorkforceImpactSnapshot) bool {
	for _, v := range []float64{m.Score, m.TotalHeadcount, m.AutomationComponent, m.AugmentationComponent, m.CoverageComponent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func coverage(all []sample, companies int) model.Coverage {
	c := model.Coverage{Companies: companies, Runs: len(all)}
	exposures := make([]float64, len(all))
	weights := make([]float64, len(all))
	for i, s := range all {
		c.TotalHeadcount += s.weight
		exposures[i] = s.automation + s.augmentation
		weights[i] = s.weight
	}
	if v, ok := WeightedMean(exposures, weights); ok {
		c.AverageExposure = &v
	}
	return c
}

func weightedField(samples []sample, field func(sample) float64) *float64 {
	values := make([]float64, len(samples))
	weights := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = field(s)
		weights[i] = s.weight
	}
	v, ok := WeightedMean(values, weights)
	if !ok {
		return nil
	}
	return &v
}

func highRiskShare(g *group) float64 {
	if len(g.samples) == 0 {
		return 0
	}
	return float64(g.highRisk) / float64(len(g.samples))
}

func metrics(g *group) model.GroupMetrics {
	return model.GroupMetrics{
		Key:                   g.key,
		Label:                 g.label,
		RunCount:              len(g.samples),
		CompanyCount:          len(g.companies),
		TotalHeadcount:        g.headcount,
		AverageScore:          weightedField(g.samples, func(s sample) float64 { return s.score }),
		AutomationComponent:   weightedField(g.samples, func(s sample) float64 { return s.automation }),
		AugmentationComponent: weightedField(g.samples, func(s sample) float64 { return s.augmentation }),
		CoverageComponent:     weightedField(g.samples, func(s sample) float64 { return s.coverage }),
		HighRiskShare:         highRiskShare(g),
	}
}

func distribution(g *group) model.Distribution {
	scores := make([]float64, len(g.samples))
	for i, s := range g.samples {
		scores[i] = s.score
	}
	fn := Summarize(scores)
	return model.Distribution{
		Key:    g.key,
		Label:  g.label,
		Count:  len(scores),
		Min:    fn.Min,
		Q1:     fn.Q1,
		Median: fn.Median,
		Q3:     fn.Q3,
		Max:    fn.Max,
	}
}

// heatmap 按国家标签、行业标签排序
func heatmap(cells *groupSet, axes map[string][2]*group) []model.HeatmapCell {
	out := make([]model.HeatmapCell, 0, len(cells.order))
	for _, c := range cells.order {
		ax := axes[c.key]
		out = append(out, model.HeatmapCell{
			CountryKey:    ax[0].key,
			Country:       ax[0].label,
			IndustryKey:   ax[1].key,
			Industry:      ax[1].label,
			RunCount:      len(c.samples),
			AverageScore:  weightedField(c.samples, func(s sample) float64 { return s.score }),
			HighRiskShare: highRiskShare(c),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		if out[i].Industry != out[j].Industry {
			return out[i].Industry < out[j].Industry
		}
		if out[i].CountryKey != out[j].CountryKey {
			return out[i].CountryKey < out[j].CountryKey
		}
		return out[i].IndustryKey < out[j].IndustryKey
	})
	return out
}
