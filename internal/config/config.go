// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every semantic validation failure.
var ErrInvalid = errors.New("invalid simulation config")

// Vec3 is a YAML friendly world position.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Vec converts to a math vector.
func (v Vec3) Vec() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

// Session holds per-run economy settings.
type Session struct {
	StartingCoins int `yaml:"starting_coins"`
}

// Player drives the leader autopilot. The leader walks the waypoints in a
// loop; without waypoints it stands at Start.
type Player struct {
	Start     Vec3    `yaml:"start"`
	Speed     float64 `yaml:"speed"`
	Waypoints []Vec3  `yaml:"waypoints"`
}

// Formation tunes the follow formation.
type Formation struct {
	RowWidth   int     `yaml:"row_width"`
	Spacing    float64 `yaml:"spacing"`
	StartDepth float64 `yaml:"start_depth"`
	RowDepth   float64 `yaml:"row_depth"`
	CurveBias  float64 `yaml:"curve_bias"`
}

// PetParams tunes pet movement and animation.
type PetParams struct {
	FollowSpeed  float64 `yaml:"follow_speed"`
	JumpHeight   float64 `yaml:"jump_height"`
	JumpSpeed    float64 `yaml:"jump_speed"`
	BaseHeight   float64 `yaml:"base_height"`
	PhaseSpread  float64 `yaml:"phase_spread"`
	AttackRadius float64 `yaml:"attack_radius"`
	StopDistance float64 `yaml:"stop_distance"`
	AttackBounce float64 `yaml:"attack_bounce"`
}

// Pet defines a hatchable pet.
type Pet struct {
	Name       string  `yaml:"name"`
	Damage     float64 `yaml:"damage"`
	AttackRate float64 `yaml:"attack_rate"`
	MoveSpeed  float64 `yaml:"move_speed"`
}

// Drop is one weighted entry of an egg.
type Drop struct {
	Pet    string  `yaml:"pet"`
	Weight float64 `yaml:"weight"`
}

// Egg is a purchasable drop table.
type Egg struct {
	Name  string `yaml:"name"`
	Price int    `yaml:"price"`
	Drops []Drop `yaml:"drops"`
}

// PickupKind describes one pickup variety and how often it spawns.
type PickupKind struct {
	Kind      string  `yaml:"kind"`
	MaxHealth float64 `yaml:"max_health"`
	Reward    int     `yaml:"reward"`
	Weight    float64 `yaml:"weight"`
}

// Pickups lists the pickup kinds the spawner chooses from.
type Pickups struct {
	Kinds []PickupKind `yaml:"kinds"`
}

// Area is the spawn rectangle.
type Area struct {
	MinX   float64 `yaml:"min_x"`
	MaxX   float64 `yaml:"max_x"`
	MinZ   float64 `yaml:"min_z"`
	MaxZ   float64 `yaml:"max_z"`
	FloorY float64 `yaml:"floor_y"`
}

// Spawner tunes pickup placement.
type Spawner struct {
	Area          Area    `yaml:"area"`
	MaxLive       int     `yaml:"max_live"`
	IntervalS     float64 `yaml:"interval_s"`
	SpawnHeight   float64 `yaml:"spawn_height"`
	MinSeparation float64 `yaml:"min_separation"`
	MaxAttempts   int     `yaml:"max_attempts"`
	Yaw           float64 `yaml:"yaw"`
}

// Terrain selects the ground probe.
type Terrain struct {
	Type       string  `yaml:"type"` // plane or hills
	Height     float64 `yaml:"height"`
	Amplitude  float64 `yaml:"amplitude"`
	Wavelength float64 `yaml:"wavelength"`
}

// SimulationConfig is the root configuration.
type SimulationConfig struct {
	Session      Session   `yaml:"session"`
	Player       Player    `yaml:"player"`
	Formation    Formation `yaml:"formation"`
	PetParams    PetParams `yaml:"pet_params"`
	Pets         []Pet     `yaml:"pets"`
	Eggs         []Egg     `yaml:"eggs"`
	StartingPets []string  `yaml:"starting_pets"`
	Pickups      Pickups   `yaml:"pickups"`
	Spawner      Spawner   `yaml:"spawner"`
	Terrain      Terrain   `yaml:"terrain"`
	Scenario     string    `yaml:"scenario"`
}

// Load reads path, validates it against the embedded CUE schema and applies
// defaults.
func Load(path string) (*SimulationConfig, error) {
	return LoadWithSchema(path, "")
}

// LoadWithSchema is Load with an optional CUE schema file overriding the
// embedded one.
func LoadWithSchema(path, schemaPath string) (*SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	schema := embeddedSchema
	if schemaPath != "" {
		if schema, err = os.ReadFile(schemaPath); err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
	}
	if err := ValidateWithCue(path, data, schema); err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, fills defaults for the keys the document leaves out and
// runs the semantic checks. It does not run the CUE schema.
func Parse(data []byte) (*SimulationConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	var cfg SimulationConfig
	keys := keySet{}
	if len(doc.Content) > 0 {
		if err := doc.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		keys.collect("", doc.Content[0])
	}
	cfg.applyDefaults(keys)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// keySet holds the dotted mapping paths a document sets to a non-null value,
// e.g. "formation.curve_bias".
type keySet map[string]bool

func (k keySet) collect(prefix string, n *yaml.Node) {
	if n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		path := n.Content[i].Value
		if prefix != "" {
			path = prefix + "." + path
		}
		val := n.Content[i+1]
		if val.Tag == "!!null" {
			continue
		}
		k[path] = true
		k.collect(path, val)
	}
}

// unset reports whether path should take its default. A nil set falls back
// to treating the zero value as unset.
func (k keySet) unset(path string, zero bool) bool {
	if k == nil {
		return zero
	}
	return !k[path]
}

// ApplyDefaults fills zero values with the stock tuning. Configs built from
// YAML go through Parse instead, which keeps explicit zeros.
func (c *SimulationConfig) ApplyDefaults() {
	c.applyDefaults(nil)
}

func (c *SimulationConfig) applyDefaults(keys keySet) {
	f := &c.Formation
	if f.RowWidth <= 0 {
		f.RowWidth = 5
	}
	floats := []struct {
		path string
		v    *float64
		def  float64
	}{
		{"formation.spacing", &f.Spacing, 1.3},
		{"formation.start_depth", &f.StartDepth, 3.5},
		{"formation.row_depth", &f.RowDepth, 1.5},
		{"formation.curve_bias", &f.CurveBias, 0.5},
		{"pet_params.follow_speed", &c.PetParams.FollowSpeed, 5},
		{"pet_params.jump_height", &c.PetParams.JumpHeight, 0.5},
		{"pet_params.jump_speed", &c.PetParams.JumpSpeed, 10},
		{"pet_params.base_height", &c.PetParams.BaseHeight, 0.3},
		{"pet_params.phase_spread", &c.PetParams.PhaseSpread, 0.5},
		{"pet_params.attack_radius", &c.PetParams.AttackRadius, 1.5},
		{"pet_params.stop_distance", &c.PetParams.StopDistance, 0.5},
		{"pet_params.attack_bounce", &c.PetParams.AttackBounce, 0.5},
		{"spawner.interval_s", &c.Spawner.IntervalS, 3},
		{"spawner.min_separation", &c.Spawner.MinSeparation, 2},
		{"player.speed", &c.Player.Speed, 4},
	}
	for _, d := range floats {
		if keys.unset(d.path, *d.v == 0) {
			*d.v = d.def
		}
	}

	s := &c.Spawner
	if keys.unset("spawner.max_live", s.MaxLive == 0) {
		s.MaxLive = 10
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 10
	}
	if s.Area.MaxX == s.Area.MinX && s.Area.MaxZ == s.Area.MinZ {
		s.Area = Area{MinX: -20, MaxX: 20, MinZ: -20, MaxZ: 20, FloorY: s.Area.FloorY}
	}

	if c.Terrain.Type == "" {
		c.Terrain.Type = "plane"
	}
	if c.Terrain.Type == "hills" && keys.unset("terrain.wavelength", c.Terrain.Wavelength == 0) {
		c.Terrain.Wavelength = 12
	}
}

// Validate runs cross-reference checks the schema cannot express.
func (c *SimulationConfig) Validate() error {
	var errs []error
	pets := make(map[string]bool, len(c.Pets))
	for _, p := range c.Pets {
		if pets[p.Name] {
			errs = append(errs, fmt.Errorf("duplicate pet %q", p.Name))
		}
		pets[p.Name] = true
		if p.AttackRate <= 0 {
			errs = append(errs, fmt.Errorf("pet %q: attack_rate must be positive", p.Name))
		}
	}
	eggs := make(map[string]bool, len(c.Eggs))
	for _, e := range c.Eggs {
		if eggs[e.Name] {
			errs = append(errs, fmt.Errorf("duplicate egg %q", e.Name))
		}
		eggs[e.Name] = true
		total := 0.0
		for _, d := range e.Drops {
			if !pets[d.Pet] {
				errs = append(errs, fmt.Errorf("egg %q drops unknown pet %q", e.Name, d.Pet))
			}
			total += d.Weight
		}
		if total <= 0 {
			errs = append(errs, fmt.Errorf("egg %q has no positive drop weight", e.Name))
		}
	}
	for _, name := range c.StartingPets {
		if !pets[name] {
			errs = append(errs, fmt.Errorf("unknown starting pet %q", name))
		}
	}
	if len(c.Pickups.Kinds) == 0 {
		errs = append(errs, errors.New("no pickup kinds"))
	}
	total := 0.0
	for _, k := range c.Pickups.Kinds {
		total += k.Weight
	}
	if len(c.Pickups.Kinds) > 0 && total <= 0 {
		errs = append(errs, errors.New("pickup kinds have no positive weight"))
	}
	a := c.Spawner.Area
	if a.MinX > a.MaxX || a.MinZ > a.MaxZ {
		errs = append(errs, errors.New("spawner area min exceeds max"))
	}
	if c.Spawner.IntervalS <= 0 {
		errs = append(errs, errors.New("spawner interval_s must be positive"))
	}
	switch c.Terrain.Type {
	case "plane", "hills":
	default:
		errs = append(errs, fmt.Errorf("unknown terrain type %q", c.Terrain.Type))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Pet looks up a pet definition by name.
func (c *SimulationConfig) Pet(name string) (Pet, bool) {
	for _, p := range c.Pets {
		if p.Name == name {
			return p, true
		}
	}
	return Pet{}, false
}
