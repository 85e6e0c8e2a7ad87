package datasync

type resource int

const (
	resProfile resource = iota
	resJobs
	resSources
	resourceCount
)

func (r resource) String() string {
	return [...]string{"profile", "jobs", "sources"}[r]
}

// sequencer numbers fetches per resource. A response is admitted only when
// its number is higher than every number admitted before it, unless
// lastWins restores the plain last-resolved-wins rule.
type sequencer struct {
	issued  [resourceCount]uint64
	applied [resourceCount]uint64
}

func (s *sequencer) issue(r resource) uint64 {
	s.issued[r]++
	return s.issued[r]
}

func (s *sequencer) admit(r resource, seq uint64, lastWins bool) bool {
	if seq <= s.applied[r] && !lastWins {
		return false
	}
	if seq > s.applied[r] {
		s.applied[r] = seq
	}
	return true
}

func (s *sequencer) reset() {
	*s = sequencer{}
}
