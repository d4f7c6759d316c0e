package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCandidates(t *testing.T) {
	all := []Candidate{
		{Name: "a"},
		{Name: "b", HasTheme: true},
		{Name: "c"},
	}

	got := selectCandidates(all, true)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)

	assert.Len(t, selectCandidates(all, false), 3)
}
