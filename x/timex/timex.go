package timex

import "time"

// Poll evaluates cond until it reports true or timeout elapses, and reports
// whether cond was observed true. cond is evaluated at least once, and once
// more after the deadline so a condition that settles on the last spin is
// not reported as a timeout.
func Poll(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		if !time.Now().Before(deadline) {
			return cond()
		}
	}
}
