package swarm

// Registry is the ordered set of live members. A member's formation slot is
// its position in this sequence at query time, so slots shift whenever
// membership changes; re-registering a member moves it to the back.
type Registry struct {
	members []*Member
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends m unless it is already present. It reports whether m was added.
func (r *Registry) Register(m *Member) bool {
	if m == nil || r.IndexOf(m) >= 0 {
		return false
	}
	r.members = append(r.members, m)
	return true
}

// Unregister removes m if present. It reports whether m was removed.
func (r *Registry) Unregister(m *Member) bool {
	i := r.IndexOf(m)
	if i < 0 {
		return false
	}
	// Copy instead of shifting in place so snapshots taken by All stay intact.
	next := make([]*Member, 0, len(r.members)-1)
	next = append(next, r.members[:i]...)
	next = append(next, r.members[i+1:]...)
	r.members = next
	return true
}

// All returns a snapshot of the live members in slot order. Callers may
// register or unregister while ranging over it.
func (r *Registry) All() []*Member {
	out := make([]*Member, len(r.members))
	copy(out, r.members)
	return out
}

// Len returns the number of live members.
func (r *Registry) Len() int { return len(r.members) }

// IndexOf returns m's slot, or -1.
func (r *Registry) IndexOf(m *Member) int {
	for i, x := range r.members {
		if x == m {
			return i
		}
	}
	return -1
}

// Slot implements Roster.
func (r *Registry) Slot(m *Member) (int, int, bool) {
	i := r.IndexOf(m)
	if i < 0 {
		return 0, 0, false
	}
	return i, len(r.members), true
}

// Get finds a member by id.
func (r *Registry) Get(id string) (*Member, bool) {
	for _, m := range r.members {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// BroadcastAttack orders every live member to attack t and returns the
// members that received the order. A nil or dead t sends everyone back to
// following.
func (r *Registry) BroadcastAttack(t Target) []*Member {
	snap := r.All()
	for _, m := range snap {
		m.SetTarget(t)
	}
	return snap
}
