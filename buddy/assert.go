package buddy

import "fmt"

// assertf panics with a formatted message if cond is false.
//
// This is the allocator's fatal-error mechanism: violations it guards
// against (misaligned blocks, double-inserts, remove-missing, order out of
// range on internal calls) indicate caller or allocator bugs that would
// corrupt the free lists if allowed to continue.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
