package mathx

import "golang.org/x/exp/constraints"

// Within reports lo <= v && v <= hi. A zero hi means "no upper bound",
// matching how clock node limits are documented.
func Within[T constraints.Unsigned](v, lo, hi T) bool {
	if v < lo {
		return false
	}
	return hi == 0 || v <= hi
}
