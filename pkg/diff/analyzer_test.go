package diff

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/tclib/pkg/observability"
	"github.com/platinummonkey/tclib/pkg/structures"
)

// value is a record compared by id and value
type value struct {
	category structures.Category
	id       string
	value    string
	path     string
}

func (v *value) ID() string                         { return v.id }
func (v *value) Provenance() string                 { return v.path }
func (v *value) Category() structures.Category      { return v.category }
func (v *value) References() []structures.Reference { return nil }
func (v *value) Stabilize() bool                    { return true }
func (v *value) Stable() bool                       { return true }
func (v *value) Equal(other structures.Record) bool {
	o, ok := other.(*value)
	return ok && o.id == v.id && o.value == v.value
}

type snapshot struct {
	id      string
	records map[structures.Category]map[string]structures.Record
}

func newSnapshot(id string, values map[structures.Category]map[string]string) *snapshot {
	s := &snapshot{id: id, records: make(map[structures.Category]map[string]structures.Record)}
	for category, entries := range values {
		s.records[category] = make(map[string]structures.Record)
		for recID, v := range entries {
			s.records[category][recID] = &value{category: category, id: recID, value: v, path: id + "/" + recID}
		}
	}
	return s
}

func (s *snapshot) ID() string { return s.id }

func (s *snapshot) IDs(category structures.Category) []string {
	ids := make([]string, 0)
	for id := range s.records[category] {
		ids = append(ids, id)
	}
	return ids
}

func (s *snapshot) Record(category structures.Category, id string) (structures.Record, bool) {
	rec, ok := s.records[category][id]
	return rec, ok
}

func TestDiff_Classifies(t *testing.T) {
	old := newSnapshot("old", map[structures.Category]map[string]string{
		structures.Requirements: {"R1": "a", "R2": "b", "R3": "c"},
		structures.TestCases:    {"T1": "x"},
	})
	current := newSnapshot("new", map[structures.Category]map[string]string{
		structures.Requirements: {"R2": "b", "R3": "changed", "R4": "d"},
		structures.TestCases:    {"T1": "x", "T0": "y"},
	})

	report := Diff(old, current)
	require.NoError(t, report.Validate(old, current))

	assert.Equal(t, "old", report.FromSnapshot)
	assert.Equal(t, "new", report.ToSnapshot)
	assert.Equal(t, &CategoryReport{
		Removed:   []string{"R1"},
		Added:     []string{"R4"},
		Changed:   []string{"R3"},
		Unchanged: []string{"R2"},
	}, report.Category(structures.Requirements))
	assert.Equal(t, &CategoryReport{
		Removed:   []string{},
		Added:     []string{"T0"},
		Changed:   []string{},
		Unchanged: []string{"T1"},
	}, report.Category(structures.TestCases))
	assert.False(t, report.Empty())

	assert.Equal(t, Counts{Removed: 1, Added: 1, Changed: 1, Unchanged: 1}, report.Summary()[structures.Requirements])
}

func TestDiff_Identity(t *testing.T) {
	snap := newSnapshot("same", map[structures.Category]map[string]string{
		structures.Requirements: {"R1": "a", "R2": "b"},
		structures.TestCases:    {"T1": "x"},
	})

	report := Diff(snap, snap)
	require.NoError(t, report.Validate(snap, snap))
	assert.True(t, report.Empty())
	assert.Equal(t, []string{"R1", "R2"}, report.Category(structures.Requirements).Unchanged)
	assert.Equal(t, []string{"T1"}, report.Category(structures.TestCases).Unchanged)
}

func TestDiff_ProvenanceIsIgnored(t *testing.T) {
	a := newSnapshot("a", map[structures.Category]map[string]string{structures.Requirements: {"R1": "v"}})
	b := newSnapshot("b", map[structures.Category]map[string]string{structures.Requirements: {"R1": "v"}})
	require.NotEqual(t, a.records[structures.Requirements]["R1"].Provenance(), b.records[structures.Requirements]["R1"].Provenance())

	assert.True(t, Diff(a, b).Empty())
}

func TestDiff_NilBaseline(t *testing.T) {
	current := newSnapshot("new", map[structures.Category]map[string]string{
		structures.Requirements: {"R2": "b", "R1": "a"},
		structures.TestCases:    {"T1": "x"},
	})

	report := Diff(nil, current)
	require.NoError(t, report.Validate(nil, current))
	assert.Empty(t, report.FromSnapshot)
	assert.Equal(t, []string{"R1", "R2"}, report.Category(structures.Requirements).Added)
	assert.Equal(t, []string{"T1"}, report.Category(structures.TestCases).Added)
	for _, category := range structures.Categories() {
		c := report.Category(category)
		assert.Empty(t, c.Removed)
		assert.Empty(t, c.Changed)
		assert.Empty(t, c.Unchanged)
	}
}

func TestDiff_TestPlansAlwaysEmpty(t *testing.T) {
	old := newSnapshot("old", map[structures.Category]map[string]string{structures.TestPlans: {"P1": "a"}})
	current := newSnapshot("new", map[structures.Category]map[string]string{structures.TestPlans: {"P2": "a"}})

	plans := Diff(old, current).Category(structures.TestPlans)
	assert.Equal(t, newCategoryReport(), plans)
}

func TestReport_ValidateDetectsBrokenPartition(t *testing.T) {
	old := newSnapshot("old", map[structures.Category]map[string]string{structures.Requirements: {"R1": "a"}})
	current := newSnapshot("new", map[structures.Category]map[string]string{structures.Requirements: {"R1": "a"}})

	report := Diff(old, current)
	c := report.Category(structures.Requirements)
	c.Changed = append(c.Changed, "R1")
	c.Added = append(c.Added, "R9")

	err := report.Validate(old, current)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirements R1 is both changed and unchanged")
	assert.Contains(t, err.Error(), "requirements: new snapshot has no id R9")
}

func TestAnalyzer_RecordsMetrics(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	old := newSnapshot("old", map[structures.Category]map[string]string{structures.Requirements: {"R1": "a"}})
	current := newSnapshot("new", map[structures.Category]map[string]string{structures.Requirements: {"R1": "b", "R2": "c"}})

	NewAnalyzer(observability.NopLogger(), metrics).Compare(context.Background(), old, current)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DiffRecordsTotal.WithLabelValues("requirements", "changed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DiffRecordsTotal.WithLabelValues("requirements", "added")))
}

func TestReport_JSON(t *testing.T) {
	report := Diff(nil, newSnapshot("new", map[structures.Category]map[string]string{
		structures.Requirements: {"R1": "a"},
	}))

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "from_snapshot")
	categories := decoded["categories"].(map[string]any)
	assert.Contains(t, categories, "testplans")
	assert.Equal(t, []any{"R1"}, categories["requirements"].(map[string]any)["added"])
	assert.Equal(t, []any{}, categories["testcases"].(map[string]any)["removed"])
}
