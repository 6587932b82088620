package catalog

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Task 职业下的一项任务及其使用分类权重
type Task struct {
	ID           string  `yaml:"id" json:"id"`
	Name         string  `yaml:"name" json:"name"`
	Weight       float64 `yaml:"weight" json:"weight"`             // 使用频率权重，未归一化
	Automation   float64 `yaml:"automation" json:"automation"`     // 被归类为自动化的使用比例 [0,1]
	Augmentation float64 `yaml:"augmentation" json:"augmentation"` // 被归类为增强的使用比例 [0,1]
}

// Key 任务在跨公司排行中的聚合键
func (t Task) Key() string {
	if t.ID != "" {
		return NormalizeCode(t.ID)
	}
	return NormalizeTitle(t.Name)
}

// Occupation 标准职业及其任务列表
type Occupation struct {
	Code    string   `yaml:"code" json:"code"`
	Title   string   `yaml:"title" json:"title"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
	Tasks   []Task   `yaml:"tasks" json:"tasks"`
}

type file struct {
	Occupations []Occupation `yaml:"occupations"`
}

// Catalog 只读的职业目录索引，构建后不再修改，可在多个 goroutine 间共享
type Catalog struct {
	occupations []Occupation
	byCode      map[string]int
	byTitle     map[string]int
}

// New 从职业列表构建目录，数据本身有误时直接报错
func New(occupations []Occupation) (*Catalog, error) {
	c := &Catalog{
		occupations: make([]Occupation, 0, len(occupations)),
		byCode:      make(map[string]int, len(occupations)),
		byTitle:     make(map[string]int, len(occupations)),
	}
	for i, occ := range occupations {
		code := NormalizeCode(occ.Code)
		if code == "" {
			return nil, fmt.Errorf("catalog entry %d: empty occupation code", i)
		}
		if _, dup := c.byCode[code]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate occupation code %q", i, occ.Code)
		}
		if strings.TrimSpace(occ.Title) == "" {
			return nil, fmt.Errorf("catalog entry %q: empty title", occ.Code)
		}
		for j, t := range occ.Tasks {
			if err := validateTask(t); err != nil {
				return nil, fmt.Errorf("catalog entry %q task %d: %w", occ.Code, j, err)
			}
		}

		idx := len(c.occupations)
		c.occupations = append(c.occupations, occ)
		c.byCode[code] = idx
		for _, title := range append([]string{occ.Title}, occ.Aliases...) {
			key := NormalizeTitle(title)
			if key == "" {
				continue
			}
			// 同名标题以先出现者为准
			if _, exists := c.byTitle[key]; !exists {
				c.byTitle[key] = idx
			}
		}
	}
	return c, nil
}

// Load 从 YAML 文件加载目录
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	c, err := New(f.Occupations)
	if err != nil {
		return nil, fmt.Errorf("build catalog %s: %w", path, err)
	}
	return c, nil
}

func validateTask(t Task) error {
	if strings.TrimSpace(t.Name) == "" && strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task has neither id nor name")
	}
	for name, v := range map[string]float64{"weight": t.Weight, "automation": t.Automation, "augmentation": t.Augmentation} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s must be a finite non-negative number, got %v", name, v)
		}
	}
	if t.Automation > 1 || t.Augmentation > 1 {
		return fmt.Errorf("scores must be within [0,1], got automation=%v augmentation=%v", t.Automation, t.Augmentation)
	}
	return nil
}

// Len 目录中的职业数量
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.occupations)
}

// ByCode 按职业代码查找
func (c *Catalog) ByCode(code string) (Occupation, bool) {
	if c == nil {
		return Occupation{}, false
	}
	idx, ok := c.byCode[NormalizeCode(code)]
	if !ok {
		return Occupation{}, false
	}
	return c.occupations[idx], true
}

// ByTitle 按归一化后的标题查找
func (c *Catalog) ByTitle(title string) (Occupation, bool) {
	if c == nil {
		return Occupation{}, false
	}
	idx, ok := c.byTitle[NormalizeTitle(title)]
	if !ok {
		return Occupation{}, false
	}
	return c.occupations[idx], true
}

// Lookup 先按代码再按标题查找
func (c *Catalog) Lookup(code, title string) (Occupation, bool) {
	if code != "" {
		if occ, ok := c.ByCode(code); ok {
			return occ, true
		}
	}
	if title != "" {
		return c.ByTitle(title)
	}
	return Occupation{}, false
}
