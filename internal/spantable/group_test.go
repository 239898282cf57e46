package spantable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spantable/internal/spantable"
)

func classes(groups []spantable.Group) []spantable.Classification {
	out := make([]spantable.Classification, len(groups))
	for i, g := range groups {
		out[i] = g.Class
	}
	return out
}

func TestGroupSections_FreeRunsSplitByWrappers(t *testing.T) {
	r1, r2, r3, r4 := tr(cell("1")), tr(cell("2")), tr(cell("3")), tr(cell("4"))
	table := el("table",
		r1, r2,
		el("thead", tr(th("h"))),
		r3,
		el("tfoot", tr(cell("f"))),
		r4,
	)

	groups := spantable.GroupSections(table)

	assert.Equal(t, []spantable.Classification{
		spantable.Free, spantable.Head, spantable.Free, spantable.Foot, spantable.Free,
	}, classes(groups))
	assert.Equal(t, []spantable.Element{r1, r2}, groups[0].Rows)
	assert.Equal(t, []spantable.Element{r3}, groups[2].Rows)
	assert.Equal(t, []spantable.Element{r4}, groups[4].Rows)
}

func TestGroupSections_WrappersNeverMerge(t *testing.T) {
	table := el("table",
		el("tbody", tr(cell("a"))),
		el("tbody", tr(cell("b")), tr(cell("c"))),
	)

	groups := spantable.GroupSections(table)

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Rows, 1)
	assert.Len(t, groups[1].Rows, 2)
}

func TestGroupSections_IgnoresOtherChildren(t *testing.T) {
	nested := tr(cell("nested"))
	table := el("table",
		el("caption"),
		el("colgroup", el("col")),
		el("tbody", tr(cell("a")), el("div", nested)),
	)

	groups := spantable.GroupSections(table)

	require.Len(t, groups, 1)
	assert.Equal(t, spantable.Body, groups[0].Class)
	assert.Len(t, groups[0].Rows, 1)
}

func TestGroupSections_Empty(t *testing.T) {
	assert.Empty(t, spantable.GroupSections(el("table")))
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "head", spantable.Head.String())
	assert.Equal(t, "body", spantable.Body.String())
	assert.Equal(t, "foot", spantable.Foot.String())
	assert.Equal(t, "free", spantable.Free.String())
}
