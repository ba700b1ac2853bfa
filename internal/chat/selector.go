package chat

import "math/rand"

// Selector picks an index in [0, n). Implementations must be safe for
// concurrent use.
type Selector interface {
	Pick(n int) int
}

// RandomSelector picks uniformly using the runtime's goroutine-safe source.
type RandomSelector struct{}

func (RandomSelector) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.Intn(n)
}

// FixedSelector always picks the same position, clamped to the range.
// Useful where output must be reproducible.
type FixedSelector int

func (f FixedSelector) Pick(n int) int {
	i := int(f)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func choose(sel Selector, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[sel.Pick(len(options))]
}
