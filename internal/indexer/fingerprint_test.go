package indexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFingerprint_Empty(t *testing.T) {
	fp := ComputeFingerprint("")
	assert.Len(t, fp, FingerprintSize)
	for i, v := range fp {
		assert.Zero(t, v, "slot %d", i)
	}
}

func TestComputeFingerprint_Frequencies(t *testing.T) {
	// Sorted distinct runes: 'a' then 'b'
	fp := ComputeFingerprint("aab")
	assert.InDelta(t, 2.0/3.0, fp[0], 1e-9)
	assert.InDelta(t, 1.0/3.0, fp[1], 1e-9)
	for i := 2; i < FingerprintSize; i++ {
		assert.Zero(t, fp[i])
	}
}

func TestComputeFingerprint_CaseInsensitive(t *testing.T) {
	assert.Equal(t, ComputeFingerprint("hello world"), ComputeFingerprint("HeLLo WoRLD"))
}

func TestComputeFingerprint_OrderIndependent(t *testing.T) {
	assert.Equal(t, ComputeFingerprint("abc cab"), ComputeFingerprint("cba bac"))
}

func TestComputeFingerprint_Range(t *testing.T) {
	texts := []string{
		"Title: Dune Author: Frank Herbert Genre: Science Fiction",
		"x",
		"ÄÖÜ äöü ß",
		strings.Repeat("z", 500),
	}
	for _, text := range texts {
		fp := ComputeFingerprint(text)
		sum := 0.0
		for _, v := range fp {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			sum += v
		}
		assert.LessOrEqual(t, sum, 1.0+1e-9, "text %q", text)
	}
}

func TestComputeFingerprint_TruncatesDistinctRunes(t *testing.T) {
	var b strings.Builder
	for r := rune(0x4E00); r < 0x4E00+150; r++ {
		b.WriteRune(r)
	}
	fp := ComputeFingerprint(b.String())

	// 150 distinct runes, only the 100 smallest are kept
	for i := 0; i < FingerprintSize; i++ {
		assert.InDelta(t, 1.0/150.0, fp[i], 1e-9)
	}
}

func BenchmarkComputeFingerprint(b *testing.B) {
	text := strings.Repeat("Title: The Left Hand of Darkness Reviews: a quiet masterpiece ", 20)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ComputeFingerprint(text)
	}
}
