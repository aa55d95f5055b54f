package panels

import (
	"fmt"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"simviewer/internal/logger"
	"simviewer/internal/reconcile"
	"simviewer/internal/ui"
	"simviewer/internal/wire"
)

// Details panel layout.
const (
	detW      = 330
	detY      = 10
	detRowH   = 20
	detFieldW = 70
)

// transform field indexes: 0..2 position, 3..5 rotation, 6..8 scale.
var tfGroups = [3]string{"position", "rotation", "scale"}

// Details renders the selected component: its declared fields, the live state
// section fed from the shared state map, the editable transform, and (for
// robots and their descendants) a per-joint jog control.
type Details struct {
	log     *logger.Logger
	backend Backend
	pending chan func()

	editID    string
	editField int
	editBuf   string

	jogActive bool
	jogRobot  string
	jogJoint  int
}

func newDetails(log *logger.Logger, backend Backend, pending chan func()) *Details {
	return &Details{log: log, backend: backend, pending: pending, editField: -1}
}

func (d *Details) appendNodes(dst []*ui.Node, rec *reconcile.Reconciler) []*ui.Node {
	id := rec.Selected()
	if id == "" {
		return dst
	}
	c, ok := rec.Component(id)
	if !ok {
		return dst
	}
	n, _ := rec.Node(id)

	x := float32(rl.GetScreenWidth()) - detW - 10
	y := float32(detY)

	var body []*ui.Node
	addRow := func(class, text, meta string) {
		node := ui.NewNode("label", class, "", text).WithMeta(meta)
		node.Bounds = rl.NewRectangle(x+6, y+4, detW-12, detRowH)
		body = append(body, node)
		y += detRowH
	}

	addRow("det-title", c.DisplayName(), "")
	addRow("det-label", "id: "+c.ID, "")
	addRow("det-label", "type: "+c.ComponentType, "")
	if c.Parent != "" {
		addRow("det-label", "parent: "+c.Parent, "")
	}
	if c.CADFile != "" {
		label := "cad: " + c.CADFile
		if c.CADBody != "" {
			label += " / " + c.CADBody
		}
		addRow("det-label", label, "")
	}

	// Live state section: read from the running state map so updates received
	// while another component was selected are already here.
	if s, ok := rec.State(id); ok {
		addRow("det-label", "-- state --", "")
		if s.Position != nil {
			addRow("det-value", fmt.Sprintf("position: %.2f deg", *s.Position), "")
		}
		if s.Speed != 0 || s.IsMoving {
			addRow("det-value", fmt.Sprintf("speed: %.2f deg/s", s.Speed), "")
		}
		if s.Acceleration != 0 {
			addRow("det-value", fmt.Sprintf("accel: %.2f deg/s2", s.Acceleration), "")
		}
		if s.State != "" {
			addRow("det-value", "motor: "+s.State, "")
		}
		addRow("det-value", fmt.Sprintf("moving: %v", s.IsMoving), "")
	}

	// Transform section: nine fields, editable unless the component locks them.
	if n != nil {
		addRow("det-label", "-- transform --", "")
		vals := tfValues(n.Local.Position, n.Local.Rotation, n.Local.Scale)
		for g, group := range tfGroups {
			addRow("det-label", group, "")
			rowY := y
			for i := 0; i < 3; i++ {
				idx := g*3 + i
				class := "det-field"
				text := strconv.FormatFloat(float64(vals[idx]), 'f', 2, 32)
				if c.TransformLocked {
					class = "det-field-locked"
				} else if d.editID == id && d.editField == idx {
					class = "det-field-edit"
					text = d.editBuf + "_"
				}
				f := ui.NewNode("button", class, "", text).WithMeta(fmt.Sprintf("tf:%d", idx))
				f.Bounds = rl.NewRectangle(x+10+float32(i)*(detFieldW+6), rowY, detFieldW, detRowH)
				body = append(body, f)
			}
			y = rowY + detRowH + 4
		}
	}

	// Jog section: only for robots and their descendants.
	if robotID, ok := rec.RobotAncestor(id); ok {
		addRow("det-label", "-- jog --", "")
		for i, jointID := range rec.JointChain(robotID) {
			angle := ""
			if s, ok := rec.State(jointID); ok && s.Position != nil {
				angle = fmt.Sprintf(" %7.2f deg", *s.Position)
			}
			addRow("det-label", fmt.Sprintf("J%d%s", i+1, angle), "")
			rowY := y
			ccw := ui.NewNode("button", "det-jog", "", " < ccw ").WithMeta(fmt.Sprintf("jog:ccw:%d", i))
			ccw.Bounds = rl.NewRectangle(x+10, rowY, 90, detRowH)
			cw := ui.NewNode("button", "det-jog", "", " cw > ").WithMeta(fmt.Sprintf("jog:cw:%d", i))
			cw.Bounds = rl.NewRectangle(x+110, rowY, 90, detRowH)
			body = append(body, ccw, cw)
			y = rowY + detRowH + 4
		}
		d.jogRobot = robotID
	}

	panel := ui.NewNode("panel", "", "details", "")
	panel.Bounds = rl.NewRectangle(x, detY, detW, y-detY+8)
	return append(append(dst, panel), body...)
}

// fieldClick begins editing a transform field.
func (d *Details) fieldClick(n *ui.Node, rec *reconcile.Reconciler) {
	id := rec.Selected()
	if id == "" {
		return
	}
	if c, ok := rec.Component(id); !ok || c.TransformLocked {
		return
	}
	idx, err := strconv.Atoi(strings.TrimPrefix(n.Meta, "tf:"))
	if err != nil || idx < 0 || idx > 8 {
		return
	}
	node, ok := rec.Node(id)
	if !ok {
		return
	}
	vals := tfValues(node.Local.Position, node.Local.Rotation, node.Local.Scale)
	d.editID = id
	d.editField = idx
	d.editBuf = strconv.FormatFloat(float64(vals[idx]), 'f', 2, 32)
}

// updateEditing consumes keyboard input for the active field editor and
// commits on Enter.
func (d *Details) updateEditing(rec *reconcile.Reconciler) {
	if d.editField < 0 {
		return
	}
	if rec.Selected() != d.editID {
		d.editField = -1
		return
	}
	// ESC belongs to the terminal toggle; it also abandons the edit so the
	// field editor and the terminal never fight over keystrokes.
	if rl.IsKeyPressed(rl.KeyEscape) {
		d.editField = -1
		return
	}
	for {
		ch := rl.GetCharPressed()
		if ch == 0 {
			break
		}
		if (ch >= '0' && ch <= '9') || ch == '.' || ch == '-' {
			d.editBuf += string(ch)
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) && len(d.editBuf) > 0 {
		d.editBuf = d.editBuf[:len(d.editBuf)-1]
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		d.commit(rec)
	}
}

// commit parses the edited value, sends the whole transform to the backend,
// and reconciles the local cache with the authoritative echo.
func (d *Details) commit(rec *reconcile.Reconciler) {
	idx, id := d.editField, d.editID
	d.editField = -1
	val, err := strconv.ParseFloat(d.editBuf, 64)
	if err != nil {
		d.log.Logf("panels: invalid transform value %q", d.editBuf)
		return
	}
	node, ok := rec.Node(id)
	if !ok {
		return
	}
	vals := tfValues(node.Local.Position, node.Local.Rotation, node.Local.Scale)
	vals[idx] = float32(val)
	t := wire.Transform{
		Position: &[3]float64{float64(vals[0]), float64(vals[1]), float64(vals[2])},
		Rotation: &[3]float64{float64(vals[3]), float64(vals[4]), float64(vals[5])},
		Scale:    &[3]float64{float64(vals[6]), float64(vals[7]), float64(vals[8])},
	}
	go func() {
		echo, err := d.backend.SetTransform(id, t)
		d.pending <- func() {
			if err != nil {
				d.log.Logf("panels: set transform %s: %v", id, err)
				return
			}
			rec.UpdateLocalTransform(id, echo)
		}
	}()
}

// jogPress starts jogging one joint. The matching stop is sent on release.
func (d *Details) jogPress(n *ui.Node, rec *reconcile.Reconciler) {
	parts := strings.Split(n.Meta, ":")
	if len(parts) != 3 || d.jogRobot == "" {
		return
	}
	dir := parts[1]
	idx, err := strconv.Atoi(parts[2])
	if err != nil {
		return
	}
	d.jogActive = true
	d.jogJoint = idx
	d.backend.Jog(d.jogRobot, idx, dir)
}

// jogRelease stops an active jog. Returns true when a jog was active.
func (d *Details) jogRelease(rec *reconcile.Reconciler) bool {
	if !d.jogActive {
		return false
	}
	d.jogActive = false
	d.backend.Jog(d.jogRobot, d.jogJoint, "stop")
	return true
}

// tfValues flattens a TRS into the nine editable fields.
func tfValues(pos, rot, scale rl.Vector3) [9]float32 {
	return [9]float32{pos.X, pos.Y, pos.Z, rot.X, rot.Y, rot.Z, scale.X, scale.Y, scale.Z}
}
