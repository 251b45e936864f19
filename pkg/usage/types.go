package usage

// Instance records that a configuration code's usage pattern matched at least
// once inside a file. Two instances are equal when code and path are equal.
type Instance struct {
	Code string
	Path string
}

// Set is an insertion-ordered set of Instance values.
// It is not safe for concurrent use; scanners accumulate per file and merge once.
type Set struct {
	index map[Instance]struct{}
	order []Instance
}

// NewSet creates an empty set, optionally seeded with instances.
func NewSet(instances ...Instance) *Set {
	s := &Set{index: make(map[Instance]struct{}, len(instances))}
	for _, in := range instances {
		s.Add(in)
	}
	return s
}

// Add inserts the instance and reports whether it was new.
func (s *Set) Add(in Instance) bool {
	if s.index == nil {
		s.index = make(map[Instance]struct{})
	}
	if _, ok := s.index[in]; ok {
		return false
	}
	s.index[in] = struct{}{}
	s.order = append(s.order, in)
	return true
}

func (s *Set) Len() int {
	return len(s.order)
}

// Instances returns a copy of the members in first-insertion order.
func (s *Set) Instances() []Instance {
	out := make([]Instance, len(s.order))
	copy(out, s.order)
	return out
}
