package xtender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected []checkRange
	}{
		{"no ranges here", nil},
		{"disk !!A:1..5!!", []checkRange{{name: "A", start: 1, end: 5}}},
		{"cpu !!A:0..3!! core !!B:1..2!!", []checkRange{
			{name: "A", start: 0, end: 3},
			{name: "B", start: 1, end: 2},
		}},
		{"!!C:1..5!!", nil},
		{"!!A:1.5!!", nil},
		{"!!a:1..5!!", nil},
	}

	for _, tst := range tests {
		got := extractRanges(tst.input)
		if tst.expected == nil {
			assert.Emptyf(t, got, "no ranges in %q", tst.input)
		} else {
			assert.Equalf(t, tst.expected, got, "ranges of %q", tst.input)
		}
	}
}

func TestSortedUniqueRanges(t *testing.T) {
	t.Parallel()

	ranges := []checkRange{
		{name: "B", start: 1, end: 2},
		{name: "A", start: 1, end: 5},
		{name: "A", start: 1, end: 5},
		{name: "A", start: 0, end: 5},
	}

	expected := []checkRange{
		{name: "A", start: 0, end: 5},
		{name: "A", start: 1, end: 5},
		{name: "B", start: 1, end: 2},
	}

	assert.Equal(t, expected, sortedUniqueRanges(ranges))
}

func TestRangePlaceholder(t *testing.T) {
	t.Parallel()

	rng := checkRange{name: "A", start: 1, end: 10}
	assert.Equal(t, "!!A:1..10!!", rng.placeholder())
}
