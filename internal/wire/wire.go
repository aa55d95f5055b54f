// Package wire holds the JSON message types the simulator backend sends and the
// decoding logic that sorts inbound frames into one of three shapes: a typed scene
// definition, a typed state update, or an untyped snapshot map (legacy flat or
// hierarchical). Decoding never touches the renderer; the reconciler consumes
// the results on the main thread.
package wire

import (
	"encoding/json"
	"fmt"
)

// Message type discriminators used by the websocket stream.
const (
	TypeDefinition  = "static_scene_definition"
	TypeStateUpdate = "state_update"
)

// Transform is the local TRS payload: position in scene units, rotation as
// Euler XYZ angles in degrees, scale as positive scalars. Fields are pointers
// so a partial transform edit can leave the untouched fields alone.
type Transform struct {
	Position *[3]float64 `json:"position,omitempty"`
	Rotation *[3]float64 `json:"rotation,omitempty"`
	Scale    *[3]float64 `json:"scale,omitempty"`
}

// Component is one backend-declared scene component from a static definition
// or a flat snapshot. Transform and Matrix are mutually exclusive: local TRS
// relative to the parent, or an absolute row-major 4x4 world matrix.
type Component struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	Parent          string     `json:"parent,omitempty"`
	ComponentType   string     `json:"component_type"`
	Transform       *Transform `json:"transform,omitempty"`
	Matrix          []float64  `json:"matrix,omitempty"`
	TransformLocked bool       `json:"transform_locked,omitempty"`
	CADFile         string     `json:"cad_file,omitempty"`
	CADBody         string     `json:"cad_body,omitempty"`
	// Position is the scalar DOF value (degrees) for joints and rotors.
	Position *float64 `json:"position,omitempty"`
}

// DisplayName returns the component name, falling back to the id.
func (c Component) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Definition is the full scene structure message.
type Definition struct {
	Type       string      `json:"type"`
	Components []Component `json:"components"`
}

// ComponentState is one entry of a state update: id plus either an absolute
// matrix or scalar axis state (position/speed/acceleration), never structure.
type ComponentState struct {
	ID           string    `json:"id"`
	Matrix       []float64 `json:"matrix,omitempty"`
	Position     *float64  `json:"position,omitempty"`
	Speed        float64   `json:"speed,omitempty"`
	Acceleration float64   `json:"acceleration,omitempty"`
	MaxSpeed     float64   `json:"max_speed,omitempty"`
	IsMoving     bool      `json:"is_moving,omitempty"`
	State        string    `json:"state,omitempty"`
}

// StateUpdate is the periodic dynamic-state message.
type StateUpdate struct {
	Type       string           `json:"type"`
	Components []ComponentState `json:"components"`
}

// SnapshotNode is one entry of an untyped snapshot. The legacy flat format maps
// name -> node with an optional parent reference; the hierarchical format nests
// children maps instead. Both carry transform and axis state together.
type SnapshotNode struct {
	Type         string                  `json:"type"`
	Parent       string                  `json:"parent,omitempty"`
	Transform    *Transform              `json:"transform,omitempty"`
	Position     *float64                `json:"position,omitempty"`
	Speed        float64                 `json:"speed,omitempty"`
	Acceleration float64                 `json:"acceleration,omitempty"`
	MaxSpeed     float64                 `json:"max_speed,omitempty"`
	IsMoving     bool                    `json:"is_moving,omitempty"`
	State        string                  `json:"state,omitempty"`
	Children     map[string]SnapshotNode `json:"children,omitempty"`
}

// Snapshot is a name-keyed snapshot message (no "type" discriminator on the wire).
type Snapshot map[string]SnapshotNode

// Entry is one flattened snapshot row: the component plus its dynamic state.
type Entry struct {
	Component Component
	State     ComponentState
}

// Flatten converts a snapshot (flat or hierarchical) into a list of entries.
// Hierarchical children are emitted after their enclosing node with Parent set
// to the enclosing name, so parents always precede children in the result.
// Flat snapshots keep their declared parent references and arbitrary order.
func (s Snapshot) Flatten() []Entry {
	out := make([]Entry, 0, len(s))
	for name, node := range s {
		out = flattenInto(out, name, node, node.Parent)
	}
	return out
}

func flattenInto(out []Entry, name string, node SnapshotNode, parent string) []Entry {
	comp := Component{
		ID:            name,
		Name:          name,
		Parent:        parent,
		ComponentType: node.Type,
		Transform:     node.Transform,
		Position:      node.Position,
	}
	state := ComponentState{
		ID:           name,
		Position:     node.Position,
		Speed:        node.Speed,
		Acceleration: node.Acceleration,
		MaxSpeed:     node.MaxSpeed,
		IsMoving:     node.IsMoving,
		State:        node.State,
	}
	out = append(out, Entry{Component: comp, State: state})
	for childName, child := range node.Children {
		out = flattenInto(out, childName, child, name)
	}
	return out
}

// Decode parses one inbound frame. It returns *Definition, *StateUpdate, or
// Snapshot depending on the "type" discriminator (absent means snapshot).
// Malformed JSON is an error; the transport logs and drops it.
func Decode(data []byte) (any, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	switch probe.Type {
	case TypeDefinition:
		var def Definition
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("decode definition: %w", err)
		}
		return &def, nil
	case TypeStateUpdate:
		var up StateUpdate
		if err := json.Unmarshal(data, &up); err != nil {
			return nil, fmt.Errorf("decode state update: %w", err)
		}
		return &up, nil
	default:
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		// An object with an unknown "type" string field would decode as a
		// snapshot with a broken entry; reject it instead.
		if probe.Type != "" {
			return nil, fmt.Errorf("unknown message type %q", probe.Type)
		}
		return snap, nil
	}
}
