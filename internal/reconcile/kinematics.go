package reconcile

import (
	"simviewer/internal/model"
)

// RobotAncestor walks the parent chain from id and returns the nearest
// component of a robot type, including id itself. The walk is capped at the
// component count and fails closed on revisited ids, so cyclic parent data
// from a misbehaving backend degrades to "no robot found" instead of looping.
func (r *Reconciler) RobotAncestor(id string) (string, bool) {
	visited := make(map[string]bool)
	cur := id
	for steps := 0; steps <= len(r.comps); steps++ {
		c, ok := r.comps[cur]
		if !ok {
			return "", false
		}
		if model.IsRobot(c.ComponentType) {
			return cur, true
		}
		if c.Parent == "" {
			return "", false
		}
		if visited[cur] {
			r.log.Logf("reconcile: parent cycle at %q, aborting ancestor walk", cur)
			return "", false
		}
		visited[cur] = true
		cur = c.Parent
	}
	r.log.Logf("reconcile: ancestor walk from %q exceeded component count, aborting", id)
	return "", false
}

// JointChain returns the robot's joint ids in root-to-tip order. The backend
// chains joints as children: robot -> joint1 -> joint2 -> ..., each joint's
// parent being the previous joint (or the robot). The ordering feeds the jog
// panel's J1..Jn numbering, which must match the backend's kinematic
// convention. Capped like RobotAncestor against cyclic data.
func (r *Reconciler) JointChain(robotID string) []string {
	children := make(map[string][]string, len(r.comps))
	for _, id := range r.order {
		c := r.comps[id]
		if c.Parent != "" {
			children[c.Parent] = append(children[c.Parent], id)
		}
	}

	var joints []string
	visited := map[string]bool{robotID: true}
	cur := robotID
	for steps := 0; steps <= len(r.comps); steps++ {
		next := ""
		for _, childID := range children[cur] {
			if model.IsJoint(r.comps[childID].ComponentType) {
				next = childID
				break
			}
		}
		if next == "" {
			return joints
		}
		if visited[next] {
			r.log.Logf("reconcile: joint chain cycle at %q, truncating", next)
			return joints
		}
		visited[next] = true
		joints = append(joints, next)
		cur = next
	}
	r.log.Logf("reconcile: joint chain from %q exceeded component count, truncating", robotID)
	return joints
}
