package utils

// UniqueUint removes duplicate values from a slice of uints, preserving the
// first occurrence order.
func UniqueUint(values []uint) []uint {
	seen := make(map[uint]bool, len(values))
	out := make([]uint, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
