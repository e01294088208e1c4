package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripDiacritics(t *testing.T) {
	require.Equal(t, "Electronique", StripDiacritics("Électronique"))
	require.Equal(t, "eleve ingenieur", StripDiacritics("élève ingénieur"))
	require.Equal(t, "plain", StripDiacritics("plain"))
}

func TestNormalizeLabel(t *testing.T) {
	require.Equal(t, "s7 eeaa td circuits", NormalizeLabel("  S7   ÉEAA\tTD Circuits\n"))
}

func TestContainsNormalized(t *testing.T) {
	require.True(t, ContainsNormalized("S7 EEAA TD Circuits", "éeaa"))
	require.False(t, ContainsNormalized("S7 EEAA TD Circuits", "xyz"))
}
