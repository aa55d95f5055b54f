// Package model maps backend component type names to renderable node
// constructors. Types unknown to the registry fail soft: the reconciler skips
// the component and keeps going, so newer backends with extra types still
// render everything this client understands.
package model

import (
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"simviewer/internal/scenegraph"
	"simviewer/internal/ui"
)

// Appearance is the YAML-tunable look of one component type
// (e.g. assets/models.yaml). Axis marks the rotational DOF for joint-like types.
type Appearance struct {
	Shape string     `yaml:"shape"`
	Size  [3]float32 `yaml:"size,omitempty"`
	Color string     `yaml:"color,omitempty"`
	Axis  string     `yaml:"axis,omitempty"`
}

// Registry maps component_type strings to node appearance. All construction
// goes through New so every node starts with per-instance material state.
type Registry struct {
	types map[string]Appearance
}

// NewRegistry returns a registry preloaded with the simulator's component
// types. The zoo matches the backend: scene-graph groups, serial robots with
// joint/link chains, and the two halves of a rotary axis.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]Appearance)}
	r.types["scene"] = Appearance{Shape: scenegraph.ShapeNone}
	r.types["basic_component"] = Appearance{Shape: scenegraph.ShapeCube, Size: [3]float32{0.5, 0.5, 0.5}, Color: "#8a8a8a"}
	r.types["serial_robot"] = Appearance{Shape: scenegraph.ShapeCube, Size: [3]float32{0.6, 0.2, 0.6}, Color: "#4a6fa5"}
	r.types["joint"] = Appearance{Shape: scenegraph.ShapeCylinder, Size: [3]float32{0.3, 0.35, 0.3}, Color: "#c8872b", Axis: "y"}
	r.types["RobotJoint"] = r.types["joint"]
	r.types["link"] = Appearance{Shape: scenegraph.ShapeCube, Size: [3]float32{0.18, 0.9, 0.18}, Color: "#9aa0a6"}
	r.types["RobotLink"] = r.types["link"]
	r.types["rotary_axis_base"] = Appearance{Shape: scenegraph.ShapeCube, Size: [3]float32{0.8, 0.25, 0.8}, Color: "#5f6b7a"}
	r.types["AxisBase"] = r.types["rotary_axis_base"]
	r.types["rotary_axis_rotor"] = Appearance{Shape: scenegraph.ShapeCylinder, Size: [3]float32{0.6, 0.3, 0.6}, Color: "#b3482f", Axis: "y"}
	r.types["AxisRotor"] = r.types["rotary_axis_rotor"]
	return r
}

// LoadAppearances merges type appearances from a YAML file
// (type name -> Appearance). Missing file is not an error; the built-in zoo
// stays in effect.
func (r *Registry) LoadAppearances(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var overrides map[string]Appearance
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return err
	}
	for typ, app := range overrides {
		r.types[typ] = app
	}
	return nil
}

// Known reports whether the registry can construct the given component type.
func (r *Registry) Known(typ string) bool {
	_, ok := r.types[typ]
	return ok
}

// New constructs a detached node for the component type. Returns false for
// unregistered types; the caller skips those silently.
func (r *Registry) New(id, name, typ string) (*scenegraph.Node, bool) {
	app, ok := r.types[typ]
	if !ok {
		return nil, false
	}
	n := scenegraph.NewNode(id, name, typ)
	n.Shape = app.Shape
	n.Appearance.Dims = rl.NewVector3(app.Size[0], app.Size[1], app.Size[2])
	n.Appearance.Highlight = scenegraph.DefaultHighlight
	if c, ok := ui.ParseHexColor(app.Color); ok {
		n.Appearance.Color = c
	} else {
		n.Appearance.Color = rl.Gray
	}
	if len(app.Axis) == 1 {
		switch app.Axis[0] {
		case 'x', 'y', 'z':
			n.RotaryAxis = app.Axis[0]
		}
	}
	return n, true
}

// IsRobot reports whether the type is a robot root for jog purposes.
func IsRobot(typ string) bool {
	return typ == "serial_robot"
}

// IsJoint reports whether the type is a kinematic joint in a robot chain.
func IsJoint(typ string) bool {
	return typ == "joint" || typ == "RobotJoint"
}
