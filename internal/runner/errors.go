package runner

import "fmt"

// errMismatchedHypotheses reports an adapter that returned a different
// number of hypotheses than sequences submitted — treated as a translation
// error, failing the whole batch like any other adapter fault.
func errMismatchedHypotheses(got, want int) error {
	return fmt.Errorf("runner: adapter returned %d hypotheses, want %d", got, want)
}
