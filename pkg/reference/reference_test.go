package reference

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"7(a)":       "7a",
		"7a":         "7a",
		" 7.A ":      "7a",
		"Q12(b)(ii)": "q12bii",
		"3 (c)\t":    "3c",
		"":           "",
	}

	for input, want := range tests {
		require.Equal(t, want, Normalize(input), input)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, s := range []string{"7(a)", " 7.A ", "Q 1 (i)", "10.b.(iii)", "ÄB(c)"} {
		once := Normalize(s)
		require.Equal(t, once, Normalize(once), s)
	}
}

func TestEqual(t *testing.T) {
	require.True(t, Equal("7(a)", "7a"))
	require.True(t, Equal("7a", " 7.A "))
	require.False(t, Equal("7a", "7b"))
	require.False(t, Equal("17a", "7a"))
}
