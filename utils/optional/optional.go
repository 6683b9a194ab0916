// Package optional provides a value that may be absent.
package optional

// Optional holds a value of type T or nothing.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Unwrap returns the value, panicking if it is absent.
func (o Optional[T]) Unwrap() T {
	if !o.set {
		panic("optional: unwrap of empty value")
	}
	return o.value
}

// GetOr returns the value or def if absent.
func (o Optional[T]) GetOr(def T) T {
	if o.set {
		return o.value
	}
	return def
}
