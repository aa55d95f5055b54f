package reconcile

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simviewer/internal/assets"
	"simviewer/internal/logger"
	"simviewer/internal/model"
	"simviewer/internal/scenegraph"
	"simviewer/internal/wire"
)

func stubCache(parse func(string) (map[string][]rl.Mesh, error)) *assets.Cache {
	c := assets.New(new(logger.Logger), "http://localhost:8080")
	c.Fetch = func(file string) (string, error) { return file, nil }
	c.Parse = parse
	return c
}

func drainUntil(t *testing.T, c *assets.Cache, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.Drain()
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Fail(t, "condition not reached before deadline")
}

func cadDefinition() *wire.Definition {
	return &wire.Definition{Components: []wire.Component{
		{ID: "part", ComponentType: "basic_component", CADFile: "part.obj"},
	}}
}

func TestCADAttachReplacesPrimitive(t *testing.T) {
	cache := stubCache(func(string) (map[string][]rl.Mesh, error) {
		return map[string][]rl.Mesh{"": {{}}}, nil
	})
	r := New(new(logger.Logger), model.NewRegistry(), cache)
	r.ApplyDefinition(cadDefinition())
	r.Select("part")

	n, _ := r.Node("part")
	drainUntil(t, cache, func() bool { return len(n.Meshes) > 0 })

	assert.Equal(t, scenegraph.ShapeNone, n.Shape)
	assert.False(t, n.Placeholder)
	assert.True(t, n.Highlighted, "selection survives the asset attach")
}

func TestCADFailureAttachesPlaceholder(t *testing.T) {
	cache := stubCache(func(string) (map[string][]rl.Mesh, error) {
		return map[string][]rl.Mesh{}, nil
	})
	r := New(new(logger.Logger), model.NewRegistry(), cache)
	r.ApplyDefinition(cadDefinition())

	n, _ := r.Node("part")
	drainUntil(t, cache, func() bool { return n.Placeholder })

	assert.Equal(t, scenegraph.ShapeCube, n.Shape)
	assert.Empty(t, n.Meshes)
	assert.Equal(t, scenegraph.PlaceholderColor, n.Appearance.Color)
}

func TestStaleCADAttachDiscarded(t *testing.T) {
	release := make(chan struct{})
	cache := stubCache(func(string) (map[string][]rl.Mesh, error) {
		<-release
		return map[string][]rl.Mesh{"": {{}}}, nil
	})
	r := New(new(logger.Logger), model.NewRegistry(), cache)
	r.ApplyDefinition(cadDefinition())
	old, _ := r.Node("part")

	// A full rebuild replaces the node while the load is still in flight.
	r.ApplyDefinition(cadDefinition())
	cur, _ := r.Node("part")
	require.NotSame(t, old, cur)

	close(release)
	// Both queued loads resolve; only the attach bound to the live node lands.
	drainUntil(t, cache, func() bool { return len(cur.Meshes) > 0 })
	assert.Empty(t, old.Meshes, "attach for the replaced node is discarded")
}
