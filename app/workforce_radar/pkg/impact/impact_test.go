package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/model"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/orggraph"
	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/taskmix"
)

func f(v float64) *float64 { return model.Float(v) }

func sampleReport() model.OrgReport {
	return model.OrgReport{
		Company: model.CompanyProfile{Name: "Acme", HQCountry: "USA", Industry: "Software"},
		Hierarchy: []model.OrgNode{
			{ID: "root", Name: "Acme", Headcount: f(100), DominantRoles: []model.DominantRole{{RoleID: "A", Headcount: f(30)}}},
			{ID: "ops", Name: "Operations", ParentID: "root", DominantRoles: []model.DominantRole{
				{RoleID: "a", Headcount: f(10)},
				{RoleID: "Analysts", Headcount: f(50)},
				{RoleID: "Ghost", Headcount: f(10)},
			}},
		},
		Roles: []model.Role{
			{Code: "A", Title: "Agents", TaskMixCounts: &model.TaskMixCounts{Automation: 2, Augmentation: 1, Manual: 1}},
			{Code: "B", Title: "Analysts", TaskMixShares: &model.TaskMixShares{Automation: 0.1, Augmentation: 0.3}},
		},
	}
}

func TestCalculateSnapshot(t *testing.T) {
	res := NewCalculator(nil).Calculate(sampleReport())
	require.NotNil(t, res.Snapshot)
	s := res.Snapshot

	assert.InDelta(t, 100, s.TotalHeadcount, 1e-9)
	assert.InDelta(t, 90, s.CoverageHeadcount, 1e-9)
	assert.InDelta(t, 25, s.AutomationImpact, 1e-9)
	assert.InDelta(t, 25, s.AugmentationImpact, 1e-9)
	assert.InDelta(t, 0.25, s.AutomationComponent, 1e-9)
	assert.InDelta(t, 0.25, s.AugmentationComponent, 1e-9)
	assert.InDelta(t, 0.9, s.CoverageComponent, 1e-9)
	assert.InDelta(t, 5, s.Score, 1e-9)

	require.Len(t, res.Roles, 2)
	assert.Equal(t, "a", res.Roles[0].Key)
	assert.InDelta(t, 40, res.Roles[0].Headcount, 1e-9)
	assert.Equal(t, taskmix.SourceCounts, res.Roles[0].Source)
	assert.Equal(t, taskmix.SourceShares, res.Roles[1].Source)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.IssueUnresolvedReference, res.Issues[0].Kind)
	assert.Equal(t, "Ghost", res.Issues[0].Ref)
	assert.Equal(t, "ops", res.Issues[0].NodeID)
}

func TestCalculateWithoutResolvableRolesIsNil(t *testing.T) {
	report := model.OrgReport{
		Company: model.CompanyProfile{Name: "Nobody"},
		Hierarchy: []model.OrgNode{
			{ID: "root", Name: "Root", Headcount: f(500), AutomationShare: f(0.9),
				DominantRoles: []model.DominantRole{{RoleID: "unknown", Headcount: f(500)}}},
		},
		Metadata: model.ReportMetadata{TotalWorkforceEstimate: f(500)},
	}
	res := NewCalculator(nil).Calculate(report)
	assert.Nil(t, res.Snapshot)

	var kinds []model.IssueKind
	for _, is := range res.Issues {
		kinds = append(kinds, is.Kind)
	}
	assert.Contains(t, kinds, model.IssueUnresolvedReference)
	assert.Contains(t, kinds, model.IssueMissingSignal)
}

func TestCalculateRoleWithoutTaskMixIsMissingSignal(t *testing.T) {
	report := model.OrgReport{
		Hierarchy: []model.OrgNode{{ID: "r", Name: "R", DominantRoles: []model.DominantRole{{RoleID: "x", Headcount: f(5)}}}},
		Roles:     []model.Role{{Code: "X", Title: "Mystery"}},
	}
	res := NewCalculator(nil).Calculate(report)
	assert.Nil(t, res.Snapshot)
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, model.IssueMissingSignal, res.Issues[0].Kind)
	assert.Equal(t, "x", res.Issues[0].Ref)
}

func TestCalculateUsesCatalogFallback(t *testing.T) {
	c, err := catalog.New([]catalog.Occupation{{
		Code:  "43-4051",
		Title: "Customer Service Representatives",
		Tasks: []catalog.Task{
			{ID: "a", Weight: 1, Automation: 0.8},
			{ID: "b", Weight: 1, Augmentation: 0.6},
			{ID: "c", Weight: 1},
			{ID: "d", Weight: 1, Automation: 0.2, Augmentation: 0.2},
		},
	}})
	require.NoError(t, err)

	report := model.OrgReport{
		Hierarchy: []model.OrgNode{{ID: "r", Name: "R", DominantRoles: []model.DominantRole{{RoleID: "csr", Headcount: f(8)}}}},
		Roles:     []model.Role{{Code: "CSR", Title: "Customer Service Representatives"}},
	}
	res := NewCalculator(c).Calculate(report)
	require.NotNil(t, res.Snapshot)
	assert.Equal(t, taskmix.SourceCatalog, res.Roles[0].Source)
	// 4 项任务：2 自动化、1 增强、1 人工
	assert.InDelta(t, 4, res.Snapshot.AutomationImpact, 1e-9)
	assert.InDelta(t, 2, res.Snapshot.AugmentationImpact, 1e-9)
	assert.InDelta(t, 7.5, res.Snapshot.Score, 1e-9)
}

func TestRoleHeadcountsFallsBackToRoleHeadcount(t *testing.T) {
	g := orggraph.Build([]model.OrgNode{{ID: "r", Name: "R"}}, []model.Role{
		{Code: "A", Title: "Alpha", Headcount: f(12)},
		{Code: "B", Title: "Beta"},
	})
	got := RoleHeadcounts(g)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Key)
	assert.Equal(t, 12.0, got[0].Headcount)
}

func TestDenominator(t *testing.T) {
	assert.Equal(t, 120.0, Denominator(120, f(250), 10))
	assert.Equal(t, 250.0, Denominator(0, f(250), 10))
	assert.Equal(t, 10.0, Denominator(0, nil, 10))
	assert.Equal(t, 1.0, Denominator(0, f(0), 0.5))
}

func TestCollectRoleImpacts(t *testing.T) {
	g := orggraph.Build([]model.OrgNode{
		{ID: "root", Name: "Root", Headcount: f(100), AutomationShare: f(0.4),
			DominantRoles: []model.DominantRole{{RoleID: "A", Headcount: f(20)}}},
		{ID: "c1", Name: "Silent", ParentID: "root",
			DominantRoles: []model.DominantRole{{RoleID: "A", Headcount: f(10)}}},
		{ID: "c2", Name: "Support", ParentID: "root", AugmentationShare: f(0.2),
			DominantRoles: []model.DominantRole{{RoleID: "B", Headcount: f(5)}, {RoleID: "a", Headcount: f(5)}}},
	}, []model.Role{{Code: "A", Title: "Agents"}})

	got := CollectRoleImpacts(g)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].Key)
	assert.True(t, got[0].Resolved)
	assert.InDelta(t, 25, got[0].Headcount, 1e-9)
	assert.InDelta(t, 8, got[0].AutomationImpact, 1e-9)
	assert.InDelta(t, 5, got[0].AugmentationImpact, 1e-9)
	assert.Equal(t, 2, got[0].NodeCount)

	assert.Equal(t, "ref:b", got[1].Key)
	assert.False(t, got[1].Resolved)
	assert.InDelta(t, 1, got[1].TotalImpact, 1e-9)
}

func TestCollectAggregationImpacts(t *testing.T) {
	got := CollectAggregationImpacts([]model.AggregationBucket{
		{Dimension: model.DimensionGeography, Name: "EMEA", Headcount: f(40)},
		{Dimension: model.DimensionFunction, Name: "Sales", Headcount: f(50), AutomationShare: f(0.1)},
		{Dimension: model.DimensionFunction, Name: "Engineering", Headcount: f(100), AutomationShare: f(0.3), AugmentationShare: f(0.2)},
		{Dimension: model.DimensionSeniority, Name: "Senior", AutomationShare: f(0.5)},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Engineering", got[0].Name)
	assert.InDelta(t, 50, got[0].Impact, 1e-9)
	assert.Equal(t, "Sales", got[1].Name)
	assert.InDelta(t, 5, got[1].Impact, 1e-9)
}
