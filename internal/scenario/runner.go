package scenario

// Totals are cumulative session counters keyed by trigger event name.
type Totals map[string]int

// Runner tracks the active phase and evaluates triggers against counters
// accumulated since the phase was entered.
type Runner struct {
	script  *Scenario
	current string
	base    Totals
}

// NewRunner starts at the first phase.
func NewRunner(s *Scenario) *Runner {
	r := &Runner{script: s, base: Totals{}}
	if s != nil && len(s.Phases) > 0 {
		r.current = s.Phases[0].Name
	}
	return r
}

// Name returns the script name.
func (r *Runner) Name() string {
	if r.script == nil {
		return ""
	}
	return r.script.Name
}

// Current returns the active phase.
func (r *Runner) Current() Phase {
	if r.script == nil {
		return Phase{}
	}
	p, _ := r.script.Phase(r.current)
	return p
}

// Action returns the first action of the given type in the active phase.
func (r *Runner) Action(actionType string) (Action, bool) {
	for _, a := range r.Current().Actions {
		if a.Type == actionType {
			return a, true
		}
	}
	return Action{}, false
}

// Advance feeds the latest totals and moves through as many phases as the
// counters allow. It returns the phases entered, in order.
func (r *Runner) Advance(totals Totals) []string {
	if r.script == nil {
		return nil
	}
	var entered []string
	// bounded by phase count so trigger cycles cannot spin
	for i := 0; i < len(r.script.Phases); i++ {
		next, ok := r.step(totals)
		if !ok {
			break
		}
		r.current = next
		r.base = copyTotals(totals)
		entered = append(entered, next)
	}
	return entered
}

func (r *Runner) step(totals Totals) (string, bool) {
	p := r.Current()
	for _, tr := range p.Triggers {
		ev := Event{Type: tr.Event, Value: totals[tr.Event] - r.base[tr.Event]}
		if next, ok := r.script.NextPhase(r.current, ev); ok {
			return next, true
		}
	}
	return "", false
}

func copyTotals(t Totals) Totals {
	out := make(Totals, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
