package sim

import "time"

// Command sources.
const (
	SourceExternal = "external"
	SourceScenario = "scenario"
)

// maxCommands bounds the command history.
const maxCommands = 256

// Command is one attack or purchase order with its outcome.
type Command struct {
	Timestamp time.Time `json:"ts"`
	Source    string    `json:"source"`
	Name      string    `json:"name"`
	Args      string    `json:"args,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Commands returns a copy of the recorded command history, oldest first.
func (s *Simulator) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.commands))
	copy(out, s.commands)
	return out
}

func (s *Simulator) recordCommand(source, name, args string, err error) {
	c := Command{Timestamp: s.now().UTC(), Source: source, Name: name, Args: args}
	if err != nil {
		c.Error = err.Error()
	}
	s.commands = append(s.commands, c)
	if n := len(s.commands); n > maxCommands {
		s.commands = append(s.commands[:0], s.commands[n-maxCommands:]...)
	}
}

func (s *Simulator) emit(eventType string, petIDs []string, pickupID, detail string) {
	s.pendingEvents = append(s.pendingEvents, s.gen.SwarmEvent(eventType, petIDs, pickupID, detail))
}
