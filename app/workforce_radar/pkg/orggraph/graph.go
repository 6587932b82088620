package orggraph

import (
	"fmt"
	"sort"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
)

// Aggregate 节点子树的汇总：人数未知时为 nil，与 0 不同
type Aggregate struct {
	Headcount         *float64 `json:"headcount"`
	AutomationShare   *float64 `json:"automationShare"`
	AugmentationShare *float64 `json:"augmentationShare"`
	DescendantCount   int      `json:"descendantCount"`
}

type rollup struct {
	headcount    float64
	hasHeadcount bool
	autoSum      float64
	autoWeight   float64
	augSum       float64
	augWeight    float64
	descendants  int
}

// Graph 一份报告的只读组织树视图，每份报告重新构建，用完即弃
type Graph struct {
	nodes      map[string]*model.OrgNode
	order      []*model.OrgNode
	children   map[string][]*model.OrgNode
	roots      []*model.OrgNode
	roles      *RoleIndex
	nodeRoles  map[string][]*model.Role
	aggregates map[string]Aggregate
	issues     []model.Issue
}

// Build 由扁平节点列表和岗位列表构建组织树并完成自底向上汇总
func Build(nodes []model.OrgNode, roles []model.Role) *Graph {
	g := &Graph{
		nodes:      make(map[string]*model.OrgNode, len(nodes)),
		children:   make(map[string][]*model.OrgNode),
		roles:      NewRoleIndex(roles),
		nodeRoles:  make(map[string][]*model.Role),
		aggregates: make(map[string]Aggregate, len(nodes)),
	}

	owned := append([]model.OrgNode(nil), nodes...)
	for i := range owned {
		n := &owned[i]
		if _, dup := g.nodes[n.ID]; dup {
			g.issue(model.IssueUnresolvedReference, n.ID, n.ID, "duplicate node id, later occurrence ignored")
			continue
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n)
	}

	g.link()
	g.breakCycles()
	for id := range g.children {
		sortSiblings(g.children[id])
	}
	sortSiblings(g.roots)
	g.resolveRoles()
	g.computeAggregates()
	return g
}

func (g *Graph) issue(kind model.IssueKind, ref, nodeID, reason string) {
	g.issues = append(g.issues, model.Issue{Kind: kind, Ref: ref, NodeID: nodeID, Reason: reason})
}

// link 建立父子关系；父节点不存在时提升为根节点，避免丢失人数
func (g *Graph) link() {
	for _, n := range g.order {
		switch {
		case n.ParentID == "":
			g.roots = append(g.roots, n)
		case n.ParentID == n.ID:
			g.roots = append(g.roots, n)
			g.issue(model.IssueUnresolvedReference, n.ParentID, n.ID, "node is its own parent, promoted to root")
		default:
			if _, ok := g.nodes[n.ParentID]; !ok {
				g.roots = append(g.roots, n)
				g.issue(model.IssueUnresolvedReference, n.ParentID, n.ID, "parent not found, promoted to root")
				continue
			}
			g.children[n.ParentID] = append(g.children[n.ParentID], n)
		}
	}
}

// breakCycles 从根出发不可达的节点必然处于环上或挂在环下，逐个提升为根直到全部可达
func (g *Graph) breakCycles() {
	visited := make(map[string]bool, len(g.nodes))
	stack := make([]*model.OrgNode, 0, len(g.nodes))
	mark := func(start *model.OrgNode) {
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			stack = append(stack, g.children[n.ID]...)
		}
	}
	for _, r := range g.roots {
		mark(r)
	}
	for _, n := range g.order {
		if visited[n.ID] {
			continue
		}
		// 沿父链上溯直到重复出现，重复的节点即环的入口
		entry := n
		onPath := make(map[string]bool)
		for !onPath[entry.ID] {
			onPath[entry.ID] = true
			entry = g.nodes[entry.ParentID]
		}
		siblings := g.children[entry.ParentID]
		for i, c := range siblings {
			if c == entry {
				g.children[entry.ParentID] = append(siblings[:i:i], siblings[i+1:]...)
				break
			}
		}
		g.roots = append(g.roots, entry)
		g.issue(model.IssueUnresolvedReference, entry.ParentID, entry.ID, "cycle detected, promoted to root")
		mark(entry)
	}
}

// sortSiblings 人数降序（未知人数排最后），再按名称、ID 升序
func sortSiblings(nodes []*model.OrgNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		switch {
		case a.Headcount != nil && b.Headcount != nil && *a.Headcount != *b.Headcount:
			return *a.Headcount > *b.Headcount
		case a.Headcount != nil && b.Headcount == nil:
			return true
		case a.Headcount == nil && b.Headcount != nil:
			return false
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

func (g *Graph) resolveRoles() {
	for _, n := range g.order {
		seen := make(map[*model.Role]bool)
		refs := make([]string, 0, len(n.DominantRoles)+len(n.DominantRoleIDs))
		for _, dr := range n.DominantRoles {
			refs = append(refs, dr.RoleID)
		}
		refs = append(refs, n.DominantRoleIDs...)
		for _, ref := range refs {
			role, ok := g.roles.Resolve(ref)
			if !ok {
				g.issue(model.IssueUnresolvedReference, ref, n.ID, "role reference not found")
				continue
			}
			if seen[role] {
				continue
			}
			seen[role] = true
			g.nodeRoles[n.ID] = append(g.nodeRoles[n.ID], role)
		}
	}
}

// computeAggregates 迭代后序遍历，每个节点只计算一次，整体 O(n)
func (g *Graph) computeAggregates() {
	sums := make(map[string]*rollup, len(g.nodes))
	type frame struct {
		node *model.OrgNode
		next int
	}
	for _, root := range g.roots {
		stack := []frame{{node: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := g.children[top.node.ID]
			if top.next < len(kids) {
				child := kids[top.next]
				top.next++
				stack = append(stack, frame{node: child})
				continue
			}
			sums[top.node.ID] = g.fold(top.node, kids, sums)
			stack = stack[:len(stack)-1]
		}
	}
	for id, r := range sums {
		g.aggregates[id] = r.aggregate()
	}
}

func (g *Graph) fold(n *model.OrgNode, kids []*model.OrgNode, sums map[string]*rollup) *rollup {
	r := &rollup{}
	weight := 1.0
	if n.Headcount != nil {
		r.headcount = *n.Headcount
		r.hasHeadcount = true
		weight = *n.Headcount
	}
	if n.AutomationShare != nil {
		r.autoSum += weight * *n.AutomationShare
		r.autoWeight += weight
	}
	if n.AugmentationShare != nil {
		r.augSum += weight * *n.AugmentationShare
		r.augWeight += weight
	}
	for _, c := range kids {
		cr := sums[c.ID]
		if cr.hasHeadcount {
			r.headcount += cr.headcount
			r.hasHeadcount = true
		}
		r.autoSum += cr.autoSum
		r.autoWeight += cr.autoWeight
		r.augSum += cr.augSum
		r.augWeight += cr.augWeight
		r.descendants += cr.descendants + 1
	}
	return r
}

func (r *rollup) aggregate() Aggregate {
	a := Aggregate{DescendantCount: r.descendants}
	if r.hasHeadcount {
		a.Headcount = model.Float(r.headcount)
	}
	if r.autoWeight > 0 {
		a.AutomationShare = model.Float(r.autoSum / r.autoWeight)
	}
	if r.augWeight > 0 {
		a.AugmentationShare = model.Float(r.augSum / r.augWeight)
	}
	return a
}

// Node 按 ID 取节点
func (g *Graph) Node(id string) (*model.OrgNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes 按输入顺序返回全部节点
func (g *Graph) Nodes() []*model.OrgNode {
	return g.order
}

// Len 节点数
func (g *Graph) Len() int {
	return len(g.order)
}

// Roots 排序后的根节点
func (g *Graph) Roots() []*model.OrgNode {
	return g.roots
}

// Children 排序后的子节点
func (g *Graph) Children(id string) []*model.OrgNode {
	return g.children[id]
}

// Roles 节点解析出的岗位
func (g *Graph) Roles(id string) []*model.Role {
	return g.nodeRoles[id]
}

// RoleIndex 报告岗位索引
func (g *Graph) RoleIndex() *RoleIndex {
	return g.roles
}

// ResolveRole 解析岗位引用
func (g *Graph) ResolveRole(ref string) (*model.Role, bool) {
	return g.roles.Resolve(ref)
}

// Aggregate 节点子树汇总
func (g *Graph) Aggregate(id string) (Aggregate, bool) {
	a, ok := g.aggregates[id]
	return a, ok
}

// Issues 构建过程中被跳过或提升的条目
func (g *Graph) Issues() []model.Issue {
	return g.issues
}

// Walk 按确定顺序先序遍历，fn 返回 false 时不再深入该子树
func (g *Graph) Walk(fn func(n *model.OrgNode, depth int) bool) {
	type item struct {
		node  *model.OrgNode
		depth int
	}
	stack := make([]item, 0, len(g.roots))
	for i := len(g.roots) - 1; i >= 0; i-- {
		stack = append(stack, item{g.roots[i], 0})
	}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.depth) {
			continue
		}
		kids := g.children[it.node.ID]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, item{kids[i], it.depth + 1})
		}
	}
}

func (a Aggregate) String() string {
	return fmt.Sprintf("headcount=%s automation=%s augmentation=%s descendants=%d",
		fmtPtr(a.Headcount), fmtPtr(a.AutomationShare), fmtPtr(a.AugmentationShare), a.DescendantCount)
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%g", *v)
}
