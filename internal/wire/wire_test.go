package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDefinition(t *testing.T) {
	data := []byte(`{
		"type": "static_scene_definition",
		"components": [
			{"id": "robot1", "name": "Robot", "component_type": "serial_robot",
			 "transform": {"position": [1, 0, 2]}, "transform_locked": true},
			{"id": "j1", "parent": "robot1", "component_type": "joint", "position": 45.0}
		]
	}`)
	msg, err := Decode(data)
	require.NoError(t, err)
	def, ok := msg.(*Definition)
	require.True(t, ok)
	require.Len(t, def.Components, 2)

	assert.Equal(t, "robot1", def.Components[0].ID)
	assert.Equal(t, "Robot", def.Components[0].DisplayName())
	assert.True(t, def.Components[0].TransformLocked)
	require.NotNil(t, def.Components[0].Transform.Position)
	assert.Equal(t, [3]float64{1, 0, 2}, *def.Components[0].Transform.Position)

	assert.Equal(t, "robot1", def.Components[1].Parent)
	require.NotNil(t, def.Components[1].Position)
	assert.Equal(t, 45.0, *def.Components[1].Position)
	assert.Equal(t, "j1", def.Components[1].DisplayName())
}

func TestDecodeStateUpdate(t *testing.T) {
	data := []byte(`{
		"type": "state_update",
		"components": [
			{"id": "j1", "position": 12.5, "speed": 3.0, "is_moving": true, "state": "moving"},
			{"id": "part", "matrix": [1,0,0,4, 0,1,0,0, 0,0,1,0, 0,0,0,1]}
		]
	}`)
	msg, err := Decode(data)
	require.NoError(t, err)
	up, ok := msg.(*StateUpdate)
	require.True(t, ok)
	require.Len(t, up.Components, 2)

	assert.Equal(t, 12.5, *up.Components[0].Position)
	assert.True(t, up.Components[0].IsMoving)
	assert.Equal(t, "moving", up.Components[0].State)
	assert.Len(t, up.Components[1].Matrix, 16)
}

func TestDecodeFlatSnapshot(t *testing.T) {
	data := []byte(`{
		"base": {"type": "basic_component"},
		"arm": {"type": "basic_component", "parent": "base",
		        "transform": {"position": [0, 1, 0]}}
	}`)
	msg, err := Decode(data)
	require.NoError(t, err)
	snap, ok := msg.(Snapshot)
	require.True(t, ok)

	entries := snap.Flatten()
	require.Len(t, entries, 2)
	byID := map[string]Entry{}
	for _, e := range entries {
		byID[e.Component.ID] = e
	}
	assert.Equal(t, "", byID["base"].Component.Parent)
	assert.Equal(t, "base", byID["arm"].Component.Parent)
}

func TestDecodeHierarchicalSnapshot(t *testing.T) {
	data := []byte(`{
		"robot1": {"type": "serial_robot", "children": {
			"j1": {"type": "joint", "position": 10.0, "children": {
				"j2": {"type": "joint", "position": -5.0}
			}}
		}}
	}`)
	msg, err := Decode(data)
	require.NoError(t, err)
	snap := msg.(Snapshot)

	entries := snap.Flatten()
	require.Len(t, entries, 3)

	idx := map[string]int{}
	for i, e := range entries {
		idx[e.Component.ID] = i
	}
	// Parents always precede their children in the flattened order.
	assert.Less(t, idx["robot1"], idx["j1"])
	assert.Less(t, idx["j1"], idx["j2"])

	assert.Equal(t, "robot1", entries[idx["j1"]].Component.Parent)
	assert.Equal(t, "j1", entries[idx["j2"]].Component.Parent)
	assert.Equal(t, 10.0, *entries[idx["j1"]].State.Position)
	assert.Equal(t, -5.0, *entries[idx["j2"]].State.Position)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type": "something_else"}`))
	assert.Error(t, err)
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	assert.Equal(t, "x7", Component{ID: "x7"}.DisplayName())
	assert.Equal(t, "Part", Component{ID: "x7", Name: "Part"}.DisplayName())
}
