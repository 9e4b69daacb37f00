package question

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderHTML(t *testing.T) {
	require.Equal(t, "", renderHTML("  "))
	require.Equal(t, "<p>Find <strong>all</strong> the factors of 12.</p>", renderHTML("Find **all** the factors of 12."))
	require.Contains(t, renderHTML("Solve $x^2 = 4$"), "$x^2 = 4$")
}
