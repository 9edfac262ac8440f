package stream

import (
	"slices"

	"github.com/cespare/xxhash/v2"
)

// HashFields returns a stable fingerprint over the comparison-relevant
// projection of a snapshot. Each line should hold one record's natural key
// followed by the fields that matter for UI correctness. Lines are sorted
// before hashing, so two snapshots that are permutations of the same records
// digest identically.
func HashFields(lines []string) uint64 {
	sorted := slices.Clone(lines)
	slices.Sort(sorted)

	h := xxhash.New()
	for _, line := range sorted {
		_, _ = h.WriteString(line)
		_, _ = h.Write([]byte{0x1e})
	}
	return h.Sum64()
}
