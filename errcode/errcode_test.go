package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"already_taken":                  AlreadyTaken,
		"clock_plan_invalid":             ClockPlanInvalid,
		"clock_stabilization_timeout":    ClockStabilizationTimeout,
		"unsupported_alternate_function": UnsupportedAlternateFunction,
		"unknown_pin":                    UnknownPin,
		"timeout":                        Timeout,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatal("nil should map to OK")
	}
	if Of(AlreadyTaken) != AlreadyTaken {
		t.Fatal("bare code not extracted")
	}
	e := New(ClockPlanInvalid, "clock.propose", "unreachable")
	if Of(e) != ClockPlanInvalid {
		t.Fatal("E code not extracted")
	}
	wrapped := fmt.Errorf("outer: %w", e)
	if Of(wrapped) != ClockPlanInvalid {
		t.Fatalf("wrapped code not extracted: %v", Of(wrapped))
	}
	if Of(errors.New("x")) != Error {
		t.Fatal("unknown error should map to Error")
	}
}

func TestEIsAndFormat(t *testing.T) {
	cause := errors.New("bus fault")
	err := Wrap(Timeout, "gcr.reset", cause)
	if !errors.Is(err, Timeout) {
		t.Fatal("errors.Is should match the code")
	}
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is should reach the cause")
	}
	if got := err.Error(); got != "gcr.reset: timeout: bus fault" {
		t.Fatalf("unexpected message %q", got)
	}
	if Wrap(Timeout, "op", nil) != nil {
		t.Fatal("Wrap(nil) should be nil")
	}
}
