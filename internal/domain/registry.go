package domain

// Registry is an arena of sessions addressed by id. Ids start at 1 and are never reused.
type Registry struct {
	sessions []*Session // index = id - 1
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NextID returns the id the next created session will receive.
func (r *Registry) NextID() uint64 {
	return uint64(len(r.sessions)) + 1
}

// Counter returns the last allocated id, 0 when no session exists.
func (r *Registry) Counter() uint64 {
	return uint64(len(r.sessions))
}

// Get returns the committed session for id.
func (r *Registry) Get(id uint64) (*Session, bool) {
	if id == 0 || id > uint64(len(r.sessions)) {
		return nil, false
	}
	return r.sessions[id-1], true
}

// Put stores s. A session with the next id is appended; an existing id is replaced.
// It reports false for ids that would leave a gap.
func (r *Registry) Put(s *Session) bool {
	switch {
	case s.ID == r.NextID():
		r.sessions = append(r.sessions, s)
		return true
	case s.ID >= 1 && s.ID <= uint64(len(r.sessions)):
		r.sessions[s.ID-1] = s
		return true
	default:
		return false
	}
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
