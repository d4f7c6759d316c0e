//go:build integration

package metadata

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/themarr/pkg/tvdb"
)

func TestTVDB_Integration(t *testing.T) {
	apiKey := os.Getenv("TVDB_API_KEY")
	if apiKey == "" {
		t.Skip("TVDB_API_KEY not set")
	}

	svc := NewTVDBService(tvdb.New(apiKey), NewCache(setupTestDB(t)), nil)

	id, err := svc.ResolveSeries(context.Background(), "Lost", 2004)
	require.NoError(t, err)
	require.Equal(t, int64(73739), id)
}
