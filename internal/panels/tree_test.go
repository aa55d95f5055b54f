package panels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simviewer/internal/logger"
	"simviewer/internal/model"
	"simviewer/internal/reconcile"
	"simviewer/internal/wire"
)

func testRec() *reconcile.Reconciler {
	r := reconcile.New(new(logger.Logger), model.NewRegistry(), nil)
	r.ApplyDefinition(&wire.Definition{Components: []wire.Component{
		{ID: "robot1", ComponentType: "serial_robot"},
		{ID: "j1", Parent: "robot1", ComponentType: "joint"},
		{ID: "j2", Parent: "j1", ComponentType: "joint"},
		{ID: "table", ComponentType: "basic_component"},
	}})
	return r
}

func rowIDs(t *Tree) []string {
	ids := make([]string, len(t.rows))
	for i, r := range t.rows {
		ids[i] = r.id
	}
	return ids
}

func TestTreeAdjacencyAndRoots(t *testing.T) {
	rec := testRec()
	tree := newTree(new(logger.Logger), nil, nil)
	tree.rebuild(rec)

	assert.Equal(t, []string{"robot1", "table"}, tree.roots)
	assert.Equal(t, []string{"j1"}, tree.children["robot1"])
	assert.Equal(t, []string{"j2"}, tree.children["j1"])
}

func TestTreeCollapsedByDefault(t *testing.T) {
	rec := testRec()
	tree := newTree(new(logger.Logger), nil, nil)
	tree.rebuild(rec)
	tree.flatten()

	assert.Equal(t, []string{"robot1", "table"}, rowIDs(tree))
}

func TestTreeFlattenHonorsExpansion(t *testing.T) {
	rec := testRec()
	tree := newTree(new(logger.Logger), nil, nil)
	tree.rebuild(rec)

	tree.expanded["robot1"] = true
	tree.flatten()
	assert.Equal(t, []string{"robot1", "j1", "table"}, rowIDs(tree))

	tree.expanded["j1"] = true
	tree.flatten()
	assert.Equal(t, []string{"robot1", "j1", "j2", "table"}, rowIDs(tree))

	depths := map[string]int{}
	for _, r := range tree.rows {
		depths[r.id] = r.depth
	}
	assert.Equal(t, 0, depths["robot1"])
	assert.Equal(t, 1, depths["j1"])
	assert.Equal(t, 2, depths["j2"])
}

func TestTreeRebuildOnlyOnVersionChange(t *testing.T) {
	rec := testRec()
	tree := newTree(new(logger.Logger), nil, nil)
	tree.rebuild(rec)
	before := tree.children

	tree.rebuild(rec)
	assert.Equal(t, rec.Version(), tree.version)
	// Same version, same maps: rebuild is a cheap no-op between changes.
	assert.Len(t, before, len(tree.children))

	rec.ApplySnapshot(wire.Snapshot{"solo": {Type: "basic_component"}})
	tree.rebuild(rec)
	assert.Equal(t, []string{"solo"}, tree.roots)
}

func TestRevealExpandsAncestors(t *testing.T) {
	rec := testRec()
	tree := newTree(new(logger.Logger), nil, nil)
	tree.rebuild(rec)
	tree.flatten()
	require.NotContains(t, rowIDs(tree), "j2")

	tree.Reveal("j2", rec)

	assert.True(t, tree.expanded["robot1"])
	assert.True(t, tree.expanded["j1"])
	assert.Contains(t, rowIDs(tree), "j2")
}
