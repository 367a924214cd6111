package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"

	"ragdoll-rig/internal/control"
	"ragdoll-rig/internal/joints"
)

// ErrNoRigs is returned for a scenario without rigs.
var ErrNoRigs = errors.New("scenario has no rigs")

const (
	RoleLeader  = "leader"
	RolePartner = "partner"
)

// DefaultPointerMaxForce is the force cap of a driven target, in newtons. It holds a rig of
// thirteen 1 kg bodies from its head and hands with margin.
const DefaultPointerMaxForce = 180.0

// Vec3 is a YAML friendly 3-vector.
type Vec3 [3]float64

// Vec returns v as an mgl64 vector.
func (v Vec3) Vec() mgl64.Vec3 { return mgl64.Vec3(v) }

// RigSpec describes one rig. Zero fields take the value from the scenario's rig defaults.
type RigSpec struct {
	ID   int    `yaml:"id,omitempty"`
	Role string `yaml:"role,omitempty"`
	// Anchor is relative to the camera's floor point when AnchorToCamera is set and a camera
	// pose exists at build time.
	Anchor          Vec3    `yaml:"anchor,omitempty,flow"`
	AnchorToCamera  bool    `yaml:"anchor_to_camera,omitempty"`
	Scale           float64 `yaml:"scale,omitempty"`
	Color           uint32  `yaml:"color,omitempty"`
	Kinematic       bool    `yaml:"kinematic,omitempty"`
	PointerMaxForce float64 `yaml:"pointer_max_force,omitempty"`
}

// DriveSpec is one row of the drive table.
type DriveSpec struct {
	Rig    int    `yaml:"rig"`
	Joint  string `yaml:"joint"`
	Source string `yaml:"source"`
	Offset Vec3   `yaml:"offset,omitempty,flow"`
	Floor  bool   `yaml:"floor,omitempty"`
}

type HoldSpec struct {
	Enabled  bool    `yaml:"enabled"`
	Distance float64 `yaml:"distance,omitempty"`
}

type DanceSpec struct {
	Enabled bool `yaml:"enabled"`
}

type ContactSpec struct {
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

// ScriptEntry runs a debug command At seconds into the simulation, or, when After is set, After
// seconds past the latest entry scheduled before it.
type ScriptEntry struct {
	At    float64 `yaml:"at,omitempty"`
	After float64 `yaml:"after,omitempty"`
	Cmd   string  `yaml:"cmd"`
}

// Scenario is a declarative description of a simulation: world settings, rigs, which rig joints
// are driven by which input, and a timed command script.
type Scenario struct {
	Name         string      `yaml:"name,omitempty"`
	DT           float64     `yaml:"dt"`
	Gravity      Vec3        `yaml:"gravity,flow"`
	Iterations   int         `yaml:"iterations"`
	FloorY       float64     `yaml:"floor_y"`
	Contact      ContactSpec `yaml:"contact"`
	TrackingGain float64     `yaml:"tracking_gain"`
	FootOffset   float64     `yaml:"foot_offset"`

	RigDefaults RigSpec       `yaml:"rig_defaults"`
	Rigs        []RigSpec     `yaml:"rigs"`
	Drives      []DriveSpec   `yaml:"drives"`
	Hold        HoldSpec      `yaml:"hold"`
	Dance       DanceSpec     `yaml:"dance"`
	Script      []ScriptEntry `yaml:"script,omitempty"`
}

// base holds the values a file may leave out.
func base() Scenario {
	return Scenario{
		DT:           1.0 / 180,
		Gravity:      Vec3{0, -9.8, 0},
		Iterations:   20,
		Contact:      ContactSpec{Friction: 0.3, Restitution: 0.3},
		TrackingGain: control.DefaultTrackingGain,
		FootOffset:   control.DefaultFootOffset,
		RigDefaults: RigSpec{
			Scale:           1,
			Color:           0xcccccc,
			PointerMaxForce: DefaultPointerMaxForce,
		},
		Hold: HoldSpec{Distance: control.DefaultHoldDistance},
	}
}

// Default is the two-rig basic turn: a leader driven by tracked input or the debug panel and a
// smaller partner whose feet follow the dance and whose hands are taken when they come close.
func Default() *Scenario {
	s := base()
	s.Name = "basic-turn"
	s.Rigs = []RigSpec{
		{ID: 1, Role: RoleLeader, Anchor: Vec3{0, 0.01, 0}, Scale: 1, Color: 0x772277},
		{ID: 2, Role: RolePartner, Anchor: Vec3{0, 0.01, 0.5}, Scale: 0.8, Color: 0x345522},
	}
	for _, d := range control.BasicTurnDrives(1, 2) {
		s.Drives = append(s.Drives, DriveSpec{
			Rig:    d.Rig,
			Joint:  d.Joint.String(),
			Source: d.Source.String(),
			Offset: Vec3(d.Offset),
			Floor:  d.Floor,
		})
	}
	s.Hold.Enabled = true
	s.Dance.Enabled = true
	return &s
}

// Parse decodes a YAML scenario. Unknown keys are an error and omitted settings keep their
// defaults.
func Parse(data []byte) (*Scenario, error) {
	s := base()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if _, err := s.Resolve(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path as YAML, creating the directory if needed.
func Save(path string, s *Scenario) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of s.
func (s *Scenario) Clone() (*Scenario, error) {
	var out Scenario
	if err := copier.CopyWithOption(&out, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone scenario: %w", err)
	}
	return &out, nil
}

// Resolve returns a copy of s with rig defaults merged into every rig, rig IDs and roles filled
// in, and every reference checked.
func (s *Scenario) Resolve() (*Scenario, error) {
	out, err := s.Clone()
	if err != nil {
		return nil, err
	}
	if !(out.DT > 0) {
		return nil, fmt.Errorf("dt must be > 0, got %v", out.DT)
	}
	if out.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be > 0, got %d", out.Iterations)
	}
	if len(out.Rigs) == 0 {
		return nil, ErrNoRigs
	}

	ids := make(map[int]bool)
	leaders, partners := 0, 0
	for i := range out.Rigs {
		merged := out.RigDefaults
		merged.ID, merged.Role = 0, ""
		if err := copier.CopyWithOption(&merged, &out.Rigs[i], copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("rig %d: %w", i, err)
		}
		if merged.ID == 0 {
			merged.ID = i + 1
		}
		if ids[merged.ID] {
			return nil, fmt.Errorf("rig %d: duplicate id %d", i, merged.ID)
		}
		ids[merged.ID] = true
		switch merged.Role {
		case RoleLeader:
			leaders++
		case RolePartner:
			partners++
		case "":
		default:
			return nil, fmt.Errorf("rig %d: unknown role %q", merged.ID, merged.Role)
		}
		out.Rigs[i] = merged
	}
	if leaders == 0 {
		// the first rig without a role leads; a lone partner is taken over as leader
		lead := 0
		for i, r := range out.Rigs {
			if r.Role == "" {
				lead = i
				break
			}
		}
		if out.Rigs[lead].Role == RolePartner {
			partners--
		}
		out.Rigs[lead].Role = RoleLeader
		leaders = 1
	}
	if leaders > 1 || partners > 1 {
		return nil, fmt.Errorf("want one leader and at most one partner, got %d and %d", leaders, partners)
	}
	if (out.Hold.Enabled || out.Dance.Enabled) && partners == 0 {
		return nil, errors.New("hold and dance need a partner rig")
	}

	seen := make(map[joints.Key]bool)
	for i, d := range out.Drives {
		cd, err := d.drive()
		if err != nil {
			return nil, fmt.Errorf("drive %d: %w", i, err)
		}
		if !ids[cd.Rig] {
			return nil, fmt.Errorf("drive %d: no rig %d", i, cd.Rig)
		}
		k := joints.K(cd.Rig, cd.Joint)
		if seen[k] {
			return nil, fmt.Errorf("drive %d: %s driven twice", i, k)
		}
		seen[k] = true
	}
	for i, e := range out.Script {
		if e.At < 0 || e.After < 0 {
			return nil, fmt.Errorf("script %d: negative time", i)
		}
		if e.At > 0 && e.After > 0 {
			return nil, fmt.Errorf("script %d: set at or after, not both", i)
		}
	}
	return out, nil
}

func (d DriveSpec) drive() (control.Drive, error) {
	name, ok := joints.ParseName(d.Joint)
	if !ok {
		return control.Drive{}, fmt.Errorf("unknown joint %q", d.Joint)
	}
	src, err := control.ParseSource(d.Source)
	if err != nil {
		return control.Drive{}, err
	}
	return control.Drive{Rig: d.Rig, Joint: name, Source: src, Offset: d.Offset.Vec(), Floor: d.Floor}, nil
}

// role returns the rig with the given role, if any. s must be resolved.
func (s *Scenario) role(role string) (RigSpec, bool) {
	for _, r := range s.Rigs {
		if r.Role == role {
			return r, true
		}
	}
	return RigSpec{}, false
}
