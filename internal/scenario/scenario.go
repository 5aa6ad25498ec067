package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Trigger event names.
const (
	EventCoinsEarned      = "coins_earned"
	EventPetsHatched      = "pets_hatched"
	EventPickupsDestroyed = "pickups_destroyed"
	EventTimeElapsed      = "time_elapsed"
)

// Action types.
const (
	ActionAutoBuy    = "auto_buy"
	ActionAutoAttack = "auto_attack"
	ActionPatrol     = "patrol"
)

// Scenario is an ordered script of phases steering the autopilot.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase describes one stage with the actions it enables and the triggers that
// leave it.
type Phase struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Actions     []Action  `yaml:"actions,omitempty"`
	Triggers    []Trigger `yaml:"triggers,omitempty"`
}

// Action is a standing order while its phase is active. auto_buy buys Egg
// whenever affordable; auto_attack sends the swarm at the nearest pickup
// while the swarm is idle; patrol toggles the leader waypoint loop.
type Action struct {
	Type    string `yaml:"type"`
	Egg     string `yaml:"egg,omitempty"`
	Enabled *bool  `yaml:"enabled,omitempty"`
}

// On reports whether the action is enabled. Missing means true.
func (a Action) On() bool { return a.Enabled == nil || *a.Enabled }

// Trigger moves the scenario to another phase once an event count since
// phase entry reaches Value.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event represents a runtime occurrence that may advance the scenario.
type Event struct {
	Type  string
	Value int
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolve returns a built-in script by name, or loads name as a file path.
func Resolve(name string) (*Scenario, error) {
	if s, ok := BuiltIn()[name]; ok {
		return &s, nil
	}
	return Load(name)
}

// Validate checks that phases are unique and triggers point at known phases
// and events.
func (s *Scenario) Validate() error {
	if len(s.Phases) == 0 {
		return errors.New("scenario has no phases")
	}
	names := make(map[string]bool, len(s.Phases))
	for _, p := range s.Phases {
		if names[p.Name] {
			return fmt.Errorf("duplicate phase %q", p.Name)
		}
		names[p.Name] = true
	}
	for _, p := range s.Phases {
		for _, tr := range p.Triggers {
			if !names[tr.Next] {
				return fmt.Errorf("phase %q: trigger to unknown phase %q", p.Name, tr.Next)
			}
			switch tr.Event {
			case EventCoinsEarned, EventPetsHatched, EventPickupsDestroyed, EventTimeElapsed:
			default:
				return fmt.Errorf("phase %q: unknown trigger event %q", p.Name, tr.Event)
			}
		}
		for _, a := range p.Actions {
			switch a.Type {
			case ActionAutoBuy:
				if a.Egg == "" {
					return fmt.Errorf("phase %q: auto_buy needs an egg", p.Name)
				}
			case ActionAutoAttack, ActionPatrol:
			default:
				return fmt.Errorf("phase %q: unknown action %q", p.Name, a.Type)
			}
		}
	}
	return nil
}

// Phase looks up a phase by name.
func (s *Scenario) Phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event == ev.Type && ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}
