package assets

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simviewer/internal/logger"
	"simviewer/internal/scenegraph"
)

func testCache() *Cache {
	return New(new(logger.Logger), "http://localhost:8080")
}

// drainUntil pumps Drain until cond holds or the deadline passes.
func drainUntil(t *testing.T, c *Cache, cond func() bool) {
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

func TestLoadCoalescesConcurrentRequests(t *testing.T) {
	c := testCache()
	var fetches atomic.Int32
	c.Fetch = func(file string) (string, error) {
		fetches.Add(1)
		return "/tmp/" + file, nil
	}
	c.Parse = func(path string) (map[string][]rl.Mesh, error) {
		return map[string][]rl.Mesh{"": {{}}}, nil
	}

	attached := 0
	for i := 0; i < 3; i++ {
		c.LoadBody("gripper.obj", "", func(b Body, ph bool) {
			attached++
			assert.False(t, ph)
			assert.Len(t, b.Meshes, 1)
		})
	}

	drainUntil(t, c, func() bool { return attached == 3 })
	assert.Equal(t, int32(1), fetches.Load(), "one fetch per file regardless of requesters")
}

func TestAlreadyLoadedStillDeliversViaDrain(t *testing.T) {
	c := testCache()
	c.Fetch = func(string) (string, error) { return "x", nil }
	c.Parse = func(string) (map[string][]rl.Mesh, error) {
		return map[string][]rl.Mesh{"": {{}}}, nil
	}

	first := 0
	c.LoadBody("part.obj", "", func(Body, bool) { first++ })
	drainUntil(t, c, func() bool { return first == 1 })

	// A request against a parsed entry must not attach synchronously.
	second := 0
	c.LoadBody("part.obj", "", func(Body, bool) { second++ })
	assert.Equal(t, 0, second, "attach only runs from Drain")
	c.Drain()
	assert.Equal(t, 1, second)
}

func TestFetchErrorDeliversPlaceholder(t *testing.T) {
	c := testCache()
	c.Fetch = func(string) (string, error) { return "", errors.New("connection refused") }
	c.Parse = func(string) (map[string][]rl.Mesh, error) {
		t.Fatal("parse must not run after a failed fetch")
		return nil, nil
	}

	var got Body
	placeholder := false
	done := false
	c.LoadBody("missing.obj", "", func(b Body, ph bool) {
		got, placeholder, done = b, ph, true
	})

	drainUntil(t, c, func() bool { return done })
	assert.True(t, placeholder)
	assert.Empty(t, got.Meshes)
	assert.Equal(t, scenegraph.PlaceholderColor, got.Appearance.Color)
	assert.Equal(t, scenegraph.PlaceholderDims, got.Appearance.Dims)
}

func TestNamedBodyFallsBackToWholeModel(t *testing.T) {
	c := testCache()
	c.Fetch = func(string) (string, error) { return "x", nil }
	c.Parse = func(string) (map[string][]rl.Mesh, error) {
		return map[string][]rl.Mesh{"": {{}, {}}}, nil
	}

	done := false
	c.LoadBody("robot.step", "base_plate", func(b Body, ph bool) {
		done = true
		assert.False(t, ph)
		assert.Len(t, b.Meshes, 2)
	})
	drainUntil(t, c, func() bool { return done })
}

func TestMissingBodyDeliversPlaceholder(t *testing.T) {
	c := testCache()
	c.Fetch = func(string) (string, error) { return "x", nil }
	c.Parse = func(string) (map[string][]rl.Mesh, error) {
		return map[string][]rl.Mesh{"other": {{}}}, nil
	}

	done, placeholder := false, false
	c.LoadBody("robot.step", "base_plate", func(b Body, ph bool) {
		done, placeholder = true, ph
	})
	drainUntil(t, c, func() bool { return done })
	assert.True(t, placeholder)
}

func TestClonesShareMeshesNotAppearance(t *testing.T) {
	c := testCache()
	c.Fetch = func(string) (string, error) { return "x", nil }
	c.Parse = func(string) (map[string][]rl.Mesh, error) {
		return map[string][]rl.Mesh{"": {{}}}, nil
	}

	var a, b Body
	count := 0
	c.LoadBody("part.obj", "", func(body Body, _ bool) { a = body; count++ })
	c.LoadBody("part.obj", "", func(body Body, _ bool) { b = body; count++ })
	drainUntil(t, c, func() bool { return count == 2 })

	a.Appearance.Color = rl.Red
	assert.NotEqual(t, a.Appearance.Color, b.Appearance.Color, "appearance is per instance")
}
