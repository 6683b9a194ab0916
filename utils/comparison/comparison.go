// Package comparison holds small generic helpers over ordered values.
package comparison

import "golang.org/x/exp/constraints"

func Min[V constraints.Ordered](a, b V) V {
	if a < b {
		return a
	}
	return b
}

func Max[V constraints.Ordered](a, b V) V {
	if a > b {
		return a
	}
	return b
}

// Clamp bounds v to [lo, hi].
func Clamp[V constraints.Ordered](v, lo, hi V) V {
	return Max(lo, Min(v, hi))
}

// CeilDiv returns ceil(a / b) for positive b.
func CeilDiv[V constraints.Integer](a, b V) V {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
