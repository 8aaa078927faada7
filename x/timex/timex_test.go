package timex

import (
	"testing"
	"time"
)

func TestPoll(t *testing.T) {
	n := 0
	if !Poll(time.Second, func() bool { n++; return n == 5 }) {
		t.Fatal("condition should be observed")
	}
	start := time.Now()
	if Poll(2*time.Millisecond, func() bool { return false }) {
		t.Fatal("never-true condition reported true")
	}
	if time.Since(start) < 2*time.Millisecond {
		t.Fatal("Poll returned before the timeout")
	}
}
