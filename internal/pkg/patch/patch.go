package patch

// Coalesce returns the value pointed to by ptr if it's not nil, otherwise returns fallback
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// CoalesceNonZero also falls back when ptr points at the zero value.
func CoalesceNonZero[T comparable](ptr *T, fallback T) T {
	var zero T
	if ptr != nil && *ptr != zero {
		return *ptr
	}
	return fallback
}
