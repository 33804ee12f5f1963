package codegen

import "fmt"

// labelAllocator hands out fresh, monotonically-numbered labels. Labels
// are opaque to everything but the emitter (spec.md §3).
type labelAllocator struct {
	next int
}

// fresh returns a new label matching the reserved pattern "k_[0-9]+"
// (spec.md §6).
func (la *labelAllocator) fresh() string {
	l := fmt.Sprintf("k_%d", la.next)
	la.next++
	return l
}
