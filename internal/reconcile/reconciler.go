// Package reconcile keeps the live renderable graph in lock-step with the
// latest backend-declared scene. It owns the id -> node index, the component
// index the panels read, the running state map, and the current selection.
// All mutation happens on the main thread; snapshots are applied to completion
// before the next frame is drawn.
package reconcile

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"simviewer/internal/assets"
	"simviewer/internal/logger"
	"simviewer/internal/model"
	"simviewer/internal/scenegraph"
	"simviewer/internal/transform"
	"simviewer/internal/wire"
)

// Reconciler applies definitions, snapshots, and state updates to the live
// node graph with minimal disruption: unaffected nodes are never destroyed
// and recreated, so identity, selection, and in-flight asset loads survive.
type Reconciler struct {
	log    *logger.Logger
	models *model.Registry
	assets *assets.Cache // nil disables CAD loading

	root     *scenegraph.Node
	nodes    map[string]*scenegraph.Node
	comps    map[string]wire.Component
	order    []string
	state    map[string]wire.ComponentState
	selected string
	version  int
}

// New returns a reconciler with an empty scene root.
func New(log *logger.Logger, models *model.Registry, cache *assets.Cache) *Reconciler {
	return &Reconciler{
		log:    log,
		models: models,
		assets: cache,
		root:   scenegraph.NewNode("scene", "scene", "scene"),
		nodes:  make(map[string]*scenegraph.Node),
		comps:  make(map[string]wire.Component),
		state:  make(map[string]wire.ComponentState),
	}
}

// Root returns the scene root node for rendering and picking.
func (r *Reconciler) Root() *scenegraph.Node { return r.root }

// Version increments on every structural change (create/remove/reparent and
// full rebuilds). The tree presenter uses it to rebuild its adjacency once per
// structure rather than every frame.
func (r *Reconciler) Version() int { return r.version }

// Node returns the live node for an id.
func (r *Reconciler) Node(id string) (*scenegraph.Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Component returns the latest declared component for an id.
func (r *Reconciler) Component(id string) (wire.Component, bool) {
	c, ok := r.comps[id]
	return c, ok
}

// Components returns all live components in first-seen order.
func (r *Reconciler) Components() []wire.Component {
	out := make([]wire.Component, 0, len(r.order))
	for _, id := range r.order {
		if c, ok := r.comps[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// State returns the last received dynamic state for an id. Updates land here
// even while the component is not selected, so the details panel never shows
// stale values after a selection change.
func (r *Reconciler) State(id string) (wire.ComponentState, bool) {
	s, ok := r.state[id]
	return s, ok
}

// Selected returns the currently selected component id, or "".
func (r *Reconciler) Selected() string { return r.selected }

// Select highlights the node with the given id and unhighlights the previous
// selection. An empty id clears the selection; an unknown id is a no-op.
func (r *Reconciler) Select(id string) {
	if id == "" {
		if prev, ok := r.nodes[r.selected]; ok {
			prev.Highlighted = false
		}
		r.selected = ""
		return
	}
	n, ok := r.nodes[id]
	if !ok {
		return
	}
	if prev, ok := r.nodes[r.selected]; ok {
		prev.Highlighted = false
	}
	n.Highlighted = true
	r.selected = id
}

// ApplyDefinition performs the full-rebuild contract: every existing node is
// released, nodes are recreated from the definition, and the selection resets.
// Used when a structurally new scene arrives.
func (r *Reconciler) ApplyDefinition(def *wire.Definition) {
	r.clear()
	entries := make([]wire.Entry, 0, len(def.Components))
	for _, c := range def.Components {
		entries = append(entries, wire.Entry{Component: c})
	}
	r.apply(entries, false)
	r.version++
}

// ApplySnapshot performs incremental reconciliation against a flat or
// hierarchical snapshot: create missing nodes, re-attach parents, apply
// transforms and axis angles, then remove every live node whose id did not
// appear in this snapshot.
func (r *Reconciler) ApplySnapshot(snap wire.Snapshot) {
	r.apply(snap.Flatten(), true)
}

// UpdateFromState applies a state-only update: absolute matrices and axis
// values for existing nodes. State updates never create nodes; unknown ids
// are logged and skipped.
func (r *Reconciler) UpdateFromState(up *wire.StateUpdate) {
	for _, cs := range up.Components {
		n, ok := r.nodes[cs.ID]
		if !ok {
			r.log.Logf("reconcile: state update for unknown component %q, skipped", cs.ID)
			continue
		}
		if len(cs.Matrix) > 0 {
			if m, ok := transform.FromWire(cs.Matrix); ok {
				n.SetWorld(m)
			} else {
				r.log.Logf("reconcile: malformed matrix for %q, keeping prior transform", cs.ID)
			}
		}
		if cs.Position != nil {
			n.SetAngle(float32(*cs.Position))
		}
		r.state[cs.ID] = cs
	}
}

// UpdateLocalTransform installs the backend's authoritative transform echo
// after a transform edit, keeping the component index in sync.
func (r *Reconciler) UpdateLocalTransform(id string, t wire.Transform) {
	n, ok := r.nodes[id]
	if !ok {
		return
	}
	n.SetLocal(trsFromWire(&t, n.Local))
	if c, ok := r.comps[id]; ok {
		c.Transform = &t
		r.comps[id] = c
	}
}

// clear releases every node and resets all indexes and the selection.
func (r *Reconciler) clear() {
	for _, n := range r.nodes {
		n.Detach()
	}
	r.nodes = make(map[string]*scenegraph.Node)
	r.comps = make(map[string]wire.Component)
	r.state = make(map[string]wire.ComponentState)
	r.order = nil
	r.selected = ""
}

// apply is the reconciliation core. Two passes: create every missing node
// first, then resolve parents and transforms, so a child declared before its
// parent in a flat list still attaches correctly. With sweep set, nodes absent
// from this pass are detached and released.
func (r *Reconciler) apply(entries []wire.Entry, sweep bool) {
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		c := e.Component
		if c.ID == "" {
			continue
		}
		seen[c.ID] = true
		if _, ok := r.nodes[c.ID]; ok {
			continue
		}
		n, ok := r.models.New(c.ID, c.DisplayName(), c.ComponentType)
		if !ok {
			r.log.Logf("reconcile: unknown component type %q for %q, skipped", c.ComponentType, c.ID)
			continue
		}
		r.nodes[c.ID] = n
		r.order = append(r.order, c.ID)
		r.version++
		if c.CADFile != "" && r.assets != nil {
			r.loadCAD(n, c)
		}
	}

	for _, e := range entries {
		c := e.Component
		n, ok := r.nodes[c.ID]
		if !ok {
			continue
		}
		r.comps[c.ID] = c
		parent := r.root
		if c.Parent != "" && c.Parent != r.root.ID {
			if p, ok := r.nodes[c.Parent]; ok {
				parent = p
			} else {
				r.log.Logf("reconcile: parent %q of %q not resolvable, attaching to root", c.Parent, c.ID)
			}
		}
		if n.Parent != parent {
			n.Attach(parent)
			r.version++
		}
		n.Locked = c.TransformLocked
		r.applyTransform(n, c)
		if c.Position != nil {
			n.SetAngle(float32(*c.Position))
		}
		if e.State.ID != "" {
			r.state[c.ID] = e.State
		}
	}

	if sweep {
		for id, n := range r.nodes {
			if !seen[id] {
				r.remove(id, n)
			}
		}
	}
}

// loadCAD starts the asynchronous asset load for a node. The completion
// callback re-validates that the same node is still live before attaching;
// a node removed while the load was in flight silently discards the result.
func (r *Reconciler) loadCAD(n *scenegraph.Node, c wire.Component) {
	id := c.ID
	r.assets.LoadBody(c.CADFile, c.CADBody, func(b assets.Body, placeholder bool) {
		cur, ok := r.nodes[id]
		if !ok || cur != n {
			return
		}
		highlighted := cur.Highlighted
		cur.Appearance = b.Appearance
		cur.Placeholder = placeholder
		if placeholder {
			cur.Shape = scenegraph.ShapeCube
			cur.Meshes = nil
		} else {
			cur.Meshes = b.Meshes
			cur.Shape = scenegraph.ShapeNone
		}
		cur.Highlighted = highlighted
	})
}

// applyTransform applies the component's declared transform: a local TRS with
// partial fields keeping their prior values, or an absolute matrix that makes
// the matrix authoritative. Malformed matrices keep the prior transform.
func (r *Reconciler) applyTransform(n *scenegraph.Node, c wire.Component) {
	if len(c.Matrix) > 0 {
		if m, ok := transform.FromWire(c.Matrix); ok {
			n.SetWorld(m)
		} else {
			r.log.Logf("reconcile: malformed matrix for %q, keeping prior transform", c.ID)
		}
		return
	}
	if c.Transform != nil {
		n.SetLocal(trsFromWire(c.Transform, n.Local))
	}
}

// remove detaches and releases one node. Its children stay in the graph and
// are re-parented by the same pass (or swept themselves if gone).
func (r *Reconciler) remove(id string, n *scenegraph.Node) {
	for _, c := range append([]*scenegraph.Node(nil), n.Children...) {
		c.Attach(r.root)
	}
	n.Detach()
	delete(r.nodes, id)
	delete(r.comps, id)
	delete(r.state, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.selected == id {
		r.selected = ""
	}
	r.version++
}

// trsFromWire merges a wire transform over a prior TRS; absent fields keep
// their prior values.
func trsFromWire(w *wire.Transform, prior transform.TRS) transform.TRS {
	t := prior
	if w.Position != nil {
		t.Position = vec3(*w.Position)
	}
	if w.Rotation != nil {
		t.Rotation = vec3(*w.Rotation)
	}
	if w.Scale != nil {
		t.Scale = vec3(*w.Scale)
	}
	return t
}

func vec3(v [3]float64) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}
