package scenegraph

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// axisLineDims: a long thin box standing in for joint axis markers.
var axisLineDims = rl.NewVector3(0.02, 1.4, 0.02)

// defaultSphereRings and defaultSphereSlices control sphere mesh resolution.
const defaultSphereRings = 16
const defaultSphereSlices = 16

// defaultCylinderSlices controls cylinder mesh resolution.
const defaultCylinderSlices = 16

// Renderer draws a node tree. Unit meshes per shape are created on first use
// so GPU resources are allocated after the window/OpenGL context exists; one
// shared material is retinted per node from its Appearance, so per-node color
// state never lives on the GPU side.
type Renderer struct {
	meshes   map[string]rl.Mesh
	mtl      rl.Material
	mtlReady bool
	viewPos  [3]float32
	lightDir [3]float32
}

// NewRenderer returns a renderer with no GPU resources yet.
func NewRenderer() *Renderer {
	return &Renderer{
		meshes:   make(map[string]rl.Mesh),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets camera position and direction-to-light for this frame. Call
// once per frame before Draw so shading follows the camera.
func (r *Renderer) SetView(viewPos, lightDir [3]float32) {
	r.viewPos = viewPos
	r.lightDir = lightDir
}

// ensureMesh creates the unit mesh for a shape if not yet cached.
func (r *Renderer) ensureMesh(shape string) (rl.Mesh, bool) {
	if m, ok := r.meshes[shape]; ok {
		return m, true
	}
	var m rl.Mesh
	switch shape {
	case ShapeCube, ShapeAxisLine:
		m = rl.GenMeshCube(1, 1, 1)
	case ShapeSphere:
		// Radius 0.5 so diameter = 1, matching the unit cube.
		m = rl.GenMeshSphere(0.5, defaultSphereRings, defaultSphereSlices)
	case ShapeCylinder:
		m = rl.GenMeshCylinder(0.5, 1, defaultCylinderSlices)
	default:
		return rl.Mesh{}, false
	}
	r.meshes[shape] = m
	return m, true
}

// ensureMaterial creates the shared lit material on first use.
func (r *Renderer) ensureMaterial() {
	if r.mtlReady {
		return
	}
	r.mtl = rl.LoadMaterialDefault()
	if shader := rl.LoadShaderFromMemory(litVS, litFS); rl.IsShaderValid(shader) {
		r.mtl.Shader = shader
	}
	r.mtlReady = true
}

// geometryTransform returns the draw transform for a node's own geometry:
// primitive dims (and the cylinder centering offset) applied before the world
// transform. CAD meshes are modeled at full size and use world directly.
func geometryTransform(n *Node, world rl.Matrix) rl.Matrix {
	dims := n.Appearance.Dims
	if n.Shape == ShapeAxisLine {
		dims = axisLineDims
	}
	if dims.X == 0 {
		dims.X = 1
	}
	if dims.Y == 0 {
		dims.Y = 1
	}
	if dims.Z == 0 {
		dims.Z = 1
	}
	local := rl.MatrixScale(dims.X, dims.Y, dims.Z)
	if n.Shape == ShapeCylinder {
		// raylib cylinders have their base at Y=0; recenter on the node origin.
		local = rl.MatrixMultiply(rl.MatrixTranslate(0, -0.5, 0), local)
	}
	return rl.MatrixMultiply(local, world)
}

// Draw renders the whole tree. Must be called between BeginMode3D and
// EndMode3D. Nodes without geometry (structural groups, assets still loading)
// draw nothing but still position their children.
func (r *Renderer) Draw(root *Node) {
	r.ensureMaterial()
	r.setLitUniforms()
	root.Walk(rl.MatrixIdentity(), func(n *Node, world rl.Matrix) {
		color := n.Appearance.Color
		if n.Highlighted {
			color = n.Appearance.Highlight
			if color.A == 0 {
				color = DefaultHighlight
			}
		}
		if len(n.Meshes) > 0 {
			r.tint(color)
			for _, mesh := range n.Meshes {
				rl.DrawMesh(mesh, r.mtl, world)
			}
			return
		}
		if n.Shape == ShapeNone {
			return
		}
		mesh, ok := r.ensureMesh(n.Shape)
		if !ok {
			return
		}
		r.tint(color)
		rl.DrawMesh(mesh, r.mtl, geometryTransform(n, world))
	})
}

func (r *Renderer) tint(c rl.Color) {
	if albedo := r.mtl.GetMap(rl.MapAlbedo); albedo != nil {
		if c.A == 0 {
			c = rl.Gray
		}
		albedo.Color = c
	}
}

// Hit is one ray intersection against a node's geometry.
type Hit struct {
	ID       string
	Distance float32
	// Solid is false for thin helper geometry (axis markers), which must not
	// steal picks from real meshes.
	Solid bool
}

// Raycast intersects a ray against every node's geometry and returns all hits.
// Uses the same transforms as Draw so picking matches what is on screen.
func (r *Renderer) Raycast(ray rl.Ray, root *Node) []Hit {
	var hits []Hit
	root.Walk(rl.MatrixIdentity(), func(n *Node, world rl.Matrix) {
		if n == root {
			return
		}
		if len(n.Meshes) > 0 {
			for _, mesh := range n.Meshes {
				if col := rl.GetRayCollisionMesh(ray, mesh, world); col.Hit {
					hits = append(hits, Hit{ID: n.ID, Distance: col.Distance, Solid: true})
				}
			}
			return
		}
		if n.Shape == ShapeNone {
			return
		}
		mesh, ok := r.ensureMesh(n.Shape)
		if !ok {
			return
		}
		if col := rl.GetRayCollisionMesh(ray, mesh, geometryTransform(n, world)); col.Hit {
			hits = append(hits, Hit{ID: n.ID, Distance: col.Distance, Solid: n.Shape != ShapeAxisLine})
		}
	})
	return hits
}

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec3 vertexNormal;
uniform mat4 matProjection;
uniform mat4 matView;
uniform mat4 matModel;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  vec4 worldPos = matModel * vec4(vertexPosition, 1.0);
  fragPosition = worldPos.xyz;
  fragNormal = mat3(matModel) * vertexNormal;
  gl_Position = matProjection * matView * worldPos;
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = colDiffuse.rgb * NdotL * 0.75;
  vec3 amb = colDiffuse.rgb * 0.3;
  finalColor = vec4(amb + diffuse, colDiffuse.a);
}
`
)

// setLitUniforms pushes per-frame camera and light uniforms (cgo-safe: local slices).
func (r *Renderer) setLitUniforms() {
	shader := r.mtl.Shader
	if !rl.IsShaderValid(shader) {
		return
	}
	viewPos := []float32{r.viewPos[0], r.viewPos[1], r.viewPos[2]}
	lightDir := []float32{r.lightDir[0], r.lightDir[1], r.lightDir[2]}
	if loc := rl.GetShaderLocation(shader, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, viewPos, rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(shader, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(shader, loc, lightDir, rl.ShaderUniformVec3, 1)
	}
}
