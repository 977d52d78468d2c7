package indexer

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// FingerprintSize is the fixed width of every fingerprint
const FingerprintSize = 100

// Fingerprint is a coarse lexical signature of a text: the relative
// frequencies of its lowest code points. It carries no semantic meaning.
type Fingerprint [FingerprintSize]float64

// ComputeFingerprint lower-cases text, counts each distinct rune and fills
// slot i with the frequency of the i-th smallest rune. Runes past the first
// FingerprintSize are dropped and unused slots stay zero.
func ComputeFingerprint(text string) Fingerprint {
	var fp Fingerprint

	total := utf8.RuneCountInString(text)
	if total == 0 {
		return fp
	}

	counts := make(map[rune]int)
	for _, r := range strings.ToLower(text) {
		counts[r]++
	}

	distinct := make([]rune, 0, len(counts))
	for r := range counts {
		distinct = append(distinct, r)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
	if len(distinct) > FingerprintSize {
		distinct = distinct[:FingerprintSize]
	}

	for i, r := range distinct {
		freq := float64(counts[r]) / float64(total)
		// Lower-casing can expand a rune into several, keep the slot in range
		if freq > 1 {
			freq = 1
		}
		fp[i] = freq
	}
	return fp
}
