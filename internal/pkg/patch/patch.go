// Package patch supports partial-update requests where nil pointer fields
// mean "leave unchanged".
package patch

// Coalesce dereferences ptr when set, falling back to the current value.
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr == nil {
		return fallback
	}
	return *ptr
}
