package orggraph

import (
	"strings"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// RoleIndex 报告内岗位的查找表：标准代码 → 归一化标题 → 原始标题，先注册者优先
type RoleIndex struct {
	roles       []model.Role
	byCode      map[string]int
	byNormTitle map[string]int
	byRawTitle  map[string]int
}

// NewRoleIndex 为岗位列表建立索引
func NewRoleIndex(roles []model.Role) *RoleIndex {
	ix := &RoleIndex{
		roles:       append([]model.Role(nil), roles...),
		byCode:      make(map[string]int, len(roles)),
		byNormTitle: make(map[string]int, len(roles)),
		byRawTitle:  make(map[string]int, len(roles)),
	}
	for i, r := range ix.roles {
		register(ix.byCode, catalog.NormalizeCode(r.Code), i)
		normalized := r.NormalizedTitle
		if normalized == "" {
			normalized = r.Title
		}
		register(ix.byNormTitle, catalog.NormalizeTitle(normalized), i)
		register(ix.byRawTitle, strings.ToLower(strings.TrimSpace(r.Title)), i)
	}
	return ix
}

func register(m map[string]int, key string, idx int) {
	if key == "" {
		return
	}
	if _, exists := m[key]; !exists {
		m[key] = idx
	}
}

// Resolve 按引用查找岗位，大小写与首尾空白不敏感
func (ix *RoleIndex) Resolve(ref string) (*model.Role, bool) {
	key := strings.ToLower(strings.TrimSpace(ref))
	if key == "" {
		return nil, false
	}
	if i, ok := ix.byCode[key]; ok {
		return &ix.roles[i], true
	}
	if i, ok := ix.byNormTitle[catalog.NormalizeTitle(ref)]; ok {
		return &ix.roles[i], true
	}
	if i, ok := ix.byRawTitle[key]; ok {
		return &ix.roles[i], true
	}
	return nil, false
}

// Roles 索引中的全部岗位
func (ix *RoleIndex) Roles() []model.Role {
	return ix.roles
}

// RoleKey 岗位的稳定键：有代码用代码，否则用归一化标题
func RoleKey(r model.Role) string {
	if code := catalog.NormalizeCode(r.Code); code != "" {
		return code
	}
	if r.NormalizedTitle != "" {
		return catalog.NormalizeTitle(r.NormalizedTitle)
	}
	return catalog.NormalizeTitle(r.Title)
}

// RefKey 未解析引用的稳定键
func RefKey(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}
