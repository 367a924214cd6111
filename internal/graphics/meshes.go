package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	rl "github.com/gen2brain/raylib-go/raylib"

	"ragdoll-rig/internal/physics"
	"ragdoll-rig/internal/visual"
)

const (
	sphereRings  = 16
	sphereSlices = 16
)

// cached holds the mesh and material for one shape kind. Created lazily on first draw so GPU
// resources are allocated after the window exists.
type cached struct {
	mesh rl.Mesh
	mtl  rl.Material
}

// Meshes draws visuals with one unit mesh per shape kind and a lit shader.
type Meshes struct {
	cache    map[physics.ShapeKind]cached
	shader   rl.Shader
	viewPos  [3]float32
	lightDir [3]float32
}

// NewMeshes returns an empty mesh cache.
func NewMeshes() *Meshes {
	return &Meshes{
		cache:    make(map[physics.ShapeKind]cached),
		lightDir: [3]float32{0.5, 1, 0.5},
	}
}

// SetView sets the camera position used for specular light. Call once per frame before drawing.
func (r *Meshes) SetView(cam rl.Camera3D) {
	r.viewPos = [3]float32{cam.Position.X, cam.Position.Y, cam.Position.Z}
}

func (r *Meshes) ensure(kind physics.ShapeKind) (cached, bool) {
	if c, ok := r.cache[kind]; ok {
		return c, true
	}
	var mesh rl.Mesh
	switch kind {
	case physics.ShapeSphere, physics.ShapeParticle:
		// diameter 1, scaled by the mesh radius
		mesh = rl.GenMeshSphere(0.5, sphereRings, sphereSlices)
	case physics.ShapeBox:
		mesh = rl.GenMeshCube(1, 1, 1)
	case physics.ShapePlane:
		mesh = rl.GenMeshPlane(1, 1, 1, 1)
	default:
		return cached{}, false
	}
	if r.shader.ID == 0 {
		r.shader = rl.LoadShaderFromMemory(litVS, litFS)
	}
	mtl := rl.LoadMaterialDefault()
	if rl.IsShaderValid(r.shader) {
		mtl.Shader = r.shader
	}
	c := cached{mesh: mesh, mtl: mtl}
	r.cache[kind] = c
	return c, true
}

// DrawVisual draws every mesh of v at its synced body transform. Must be called between
// BeginMode3D and EndMode3D.
func (r *Meshes) DrawVisual(v *visual.Visual) {
	r.setLitShaderUniforms()
	for _, m := range v.Meshes {
		c, ok := r.ensure(m.Kind)
		if !ok {
			continue
		}
		if albedo := c.mtl.GetMap(rl.MapAlbedo); albedo != nil {
			albedo.Color = colorOf(v.Color)
		}
		rl.DrawMesh(c.mesh, c.mtl, meshTransform(v.Position, v.Orientation, m))
	}
}

// meshTransform scales the unit mesh to m, then applies the shape offset and orientation in the
// body frame, then the body pose. raylib's MatrixMultiply(a, b) applies a first.
func meshTransform(pos mgl64.Vec3, q mgl64.Quat, m visual.Mesh) rl.Matrix {
	var t rl.Matrix
	switch m.Kind {
	case physics.ShapeBox:
		t = rl.MatrixScale(float32(m.Size.X()), float32(m.Size.Y()), float32(m.Size.Z()))
	case physics.ShapePlane:
		// raylib planes lie in XZ facing +Y; shape planes face +Z
		t = rl.MatrixMultiply(rl.MatrixScale(float32(m.Size.X()), 1, float32(m.Size.Y())), rl.MatrixRotateX(math.Pi/2))
	default:
		d := float32(2 * m.Radius)
		t = rl.MatrixScale(d, d, d)
	}
	t = rl.MatrixMultiply(t, quatMatrix(m.Orientation))
	t = rl.MatrixMultiply(t, rl.MatrixTranslate(float32(m.Offset.X()), float32(m.Offset.Y()), float32(m.Offset.Z())))
	t = rl.MatrixMultiply(t, quatMatrix(q))
	return rl.MatrixMultiply(t, rl.MatrixTranslate(float32(pos.X()), float32(pos.Y()), float32(pos.Z())))
}

func quatMatrix(q mgl64.Quat) rl.Matrix {
	if q.Len() == 0 {
		return rl.MatrixIdentity()
	}
	return rl.QuaternionToMatrix(rl.NewQuaternion(float32(q.X()), float32(q.Y()), float32(q.Z()), float32(q.W)))
}

// DrawMarker draws a small flat disc on the floor at p.
func DrawMarker(p mgl64.Vec3, radius float32, c uint32) {
	center := rl.NewVector3(float32(p.X()), float32(p.Y())+0.003, float32(p.Z()))
	rl.DrawCylinder(center, radius, radius, 0.002, 16, colorOf(c))
}

// Unload frees the cached meshes and shader. Call before the window closes.
func (r *Meshes) Unload() {
	for k, c := range r.cache {
		rl.UnloadMesh(&c.mesh)
		delete(r.cache, k)
	}
	if r.shader.ID != 0 {
		rl.UnloadShader(r.shader)
		r.shader = rl.Shader{}
	}
}

var (
	ambient    = [4]float32{0.2, 0.22, 0.26, 1.0}
	lightColor = [3]float32{1.0, 0.98, 0.95}
)

const (
	lightIntensity   = float32(0.75)
	specularPower    = float32(48.0)
	specularStrength = float32(0.35)
)

// setLitShaderUniforms uploads the per-frame light uniforms (cgo-safe: local arrays).
func (r *Meshes) setLitShaderUniforms() {
	s := r.shader
	if s.ID == 0 || !rl.IsShaderValid(s) {
		return
	}
	viewPos := r.viewPos
	lightDir := r.lightDir
	amb := ambient
	lc := lightColor
	if loc := rl.GetShaderLocation(s, "viewPos"); loc >= 0 {
		rl.SetShaderValueV(s, loc, viewPos[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(s, "lightDir"); loc >= 0 {
		rl.SetShaderValueV(s, loc, lightDir[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(s, "ambient"); loc >= 0 {
		rl.SetShaderValueV(s, loc, amb[:], rl.ShaderUniformVec4, 1)
	}
	if loc := rl.GetShaderLocation(s, "lightColor"); loc >= 0 {
		rl.SetShaderValueV(s, loc, lc[:], rl.ShaderUniformVec3, 1)
	}
	if loc := rl.GetShaderLocation(s, "lightIntensity"); loc >= 0 {
		rl.SetShaderValue(s, loc, []float32{lightIntensity}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(s, "specularPower"); loc >= 0 {
		rl.SetShaderValue(s, loc, []float32{specularPower}, rl.ShaderUniformFloat)
	}
	if loc := rl.GetShaderLocation(s, "specularStrength"); loc >= 0 {
		rl.SetShaderValue(s, loc, []float32{specularStrength}, rl.ShaderUniformFloat)
	}
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
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec3 N = normalize(fragNormal);
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = colDiffuse.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * colDiffuse.rgb;
  float spec = pow(max(dot(N, normalize(L + V)), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, colDiffuse.a);
}
`
)
