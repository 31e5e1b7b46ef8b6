package ir

// CurrentState maps each GCP project ID to the package policy that currently
// monitors it. It is rebuilt from Fleet on every run; only insertion order is
// carried so that plans come out stable.
type CurrentState struct {
	keys []string
	ids  map[string]string
}

func NewCurrentState() *CurrentState {
	return &CurrentState{
		ids: make(map[string]string),
	}
}

// Insert records a project's package policy. Insertion is first-wins: an
// agent policy holds at most one integration per project, so a repeated
// project keeps the package policy it was first seen with. Returns false if
// the project was already recorded.
func (s *CurrentState) Insert(project, packagePolicyID string) bool {
	if _, exists := s.ids[project]; exists {
		return false
	}
	s.keys = append(s.keys, project)
	s.ids[project] = packagePolicyID
	return true
}

// ID returns the package policy recorded for a project.
func (s *CurrentState) ID(project string) (string, bool) {
	id, ok := s.ids[project]
	return id, ok
}

// Has reports whether a project is recorded.
func (s *CurrentState) Has(project string) bool {
	_, ok := s.ids[project]
	return ok
}

// Keys returns the recorded projects in insertion order. The returned slice
// is a copy.
func (s *CurrentState) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

func (s *CurrentState) Len() int {
	return len(s.keys)
}

// IgnoreSet holds project IDs excluded from reconciliation entirely. An
// ignored project is neither created, deleted, nor updated.
type IgnoreSet map[string]struct{}

func NewIgnoreSet(projects ...string) IgnoreSet {
	set := make(IgnoreSet, len(projects))
	for _, p := range projects {
		set[p] = struct{}{}
	}
	return set
}

func (s IgnoreSet) Has(project string) bool {
	_, ok := s[project]
	return ok
}
