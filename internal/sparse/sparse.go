// Package sparse provides a sparse set of small integer indices.
//
// A sparse set supports O(1) insertion, membership testing and clearing while
// keeping a dense list of members in insertion order. The set scanner uses it
// to remember which member patterns can no longer match in the current
// subject, so that Clear between subjects costs nothing.
package sparse

// Set is a set of indices in [0, capacity).
type Set struct {
	sparse []uint32 // index -> position in dense
	dense  []uint32
}

// New creates a set able to hold indices in [0, capacity).
func New(capacity int) *Set {
	return &Set{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, capacity),
	}
}

// Insert adds i to the set and reports whether it was newly added.
// Panics if i is outside [0, capacity).
func (s *Set) Insert(i int) bool {
	if s.Contains(i) {
		return false
	}
	//nolint:gosec // G115: i < len(s.sparse), which was sized from an int
	s.sparse[i] = uint32(len(s.dense))
	//nolint:gosec // G115: same bound as above
	s.dense = append(s.dense, uint32(i))
	return true
}

// Contains reports whether i is in the set.
func (s *Set) Contains(i int) bool {
	if i < 0 || i >= len(s.sparse) {
		return false
	}
	idx := s.sparse[i]
	return int(idx) < len(s.dense) && int(s.dense[idx]) == i
}

// Clear removes all elements in O(1).
func (s *Set) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.dense)
}

// Cap returns the exclusive upper bound on indices.
func (s *Set) Cap() int {
	return len(s.sparse)
}

// Full reports whether every index in [0, Cap()) is present.
func (s *Set) Full() bool {
	return len(s.dense) == len(s.sparse)
}

// Values returns the members in insertion order.
// The returned slice is valid until the next mutation.
func (s *Set) Values() []uint32 {
	return s.dense
}
