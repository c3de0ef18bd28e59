package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRepository_Postgres(t *testing.T) {
	url := os.Getenv("PROSORA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PROSORA_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := NewDB(ctx, url, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.CreateTables(ctx))
	require.NoError(t, db.Health(ctx))

	repo := NewContextRepository(db)
	id := "pgtest_" + time.Now().Format("150405.000000000")
	t.Cleanup(func() { repo.Delete(context.Background(), id) })

	want := sampleContext(id, time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC))
	require.NoError(t, repo.Put(ctx, want))

	got, ok, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, repo.Delete(ctx, id))
	_, ok, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}
