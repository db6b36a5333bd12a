package util

// Contains returns whether the given slice contains the given element.
func Contains[T comparable](slice []T, elem T) bool {
	for _, item := range slice {
		if item == elem {
			return true
		}
	}

	return false
}

// Map applies a function to each element of the given slice and returns the
// slice of results.
func Map[T, R any](slice []T, f func(T) R) []R {
	result := make([]R, len(slice))

	for i, elem := range slice {
		result[i] = f(elem)
	}

	return result
}
