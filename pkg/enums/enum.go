package enums

import "fmt"

// parse matches value against the allowed set for an enum type.
func parse[T ~string](allowed []T, value, label string) (T, error) {
	for _, candidate := range allowed {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", label, value)
}

func contains[T ~string](allowed []T, value T) bool {
	for _, candidate := range allowed {
		if candidate == value {
			return true
		}
	}
	return false
}
