package scenario

func on(v bool) *bool { return &v }

// BuiltIn returns the predefined autopilot scripts.
func BuiltIn() map[string]Scenario {
	return map[string]Scenario{
		"farm-loop": {
			Name:        "farm-loop",
			Description: "Walk the loop, break everything in reach and reinvest coins into basic eggs.",
			Phases: []Phase{
				{
					Name:        "warmup",
					Description: "Starter pet clears nearby pickups.",
					Actions:     []Action{{Type: ActionPatrol}, {Type: ActionAutoAttack}},
					Triggers:    []Trigger{{Event: EventCoinsEarned, Value: 100, Next: "expand"}},
				},
				{
					Name:        "expand",
					Description: "Buy basic eggs whenever affordable while farming.",
					Actions:     []Action{{Type: ActionPatrol}, {Type: ActionAutoAttack}, {Type: ActionAutoBuy, Egg: "basic"}},
					Triggers:    []Trigger{{Event: EventPetsHatched, Value: 5, Next: "farm"}},
				},
				{
					Name:        "farm",
					Description: "Full swarm farms the field and saves for golden eggs.",
					Actions:     []Action{{Type: ActionPatrol}, {Type: ActionAutoAttack}, {Type: ActionAutoBuy, Egg: "golden"}},
				},
			},
		},
		"egg-rush": {
			Name:        "egg-rush",
			Description: "Stand still and spend every coin on eggs as soon as it is earned.",
			Phases: []Phase{
				{
					Name:     "rush",
					Actions:  []Action{{Type: ActionPatrol, Enabled: on(false)}, {Type: ActionAutoAttack}, {Type: ActionAutoBuy, Egg: "basic"}},
					Triggers: []Trigger{{Event: EventTimeElapsed, Value: 300, Next: "rest"}},
				},
				{
					Name:    "rest",
					Actions: []Action{{Type: ActionPatrol, Enabled: on(false)}},
				},
			},
		},
		"manual": {
			Name:        "manual",
			Description: "No standing orders; drive the swarm from the admin API.",
			Phases:      []Phase{{Name: "idle", Actions: []Action{{Type: ActionPatrol}}}},
		},
	}
}
