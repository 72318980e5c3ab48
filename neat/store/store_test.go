package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/alife-neat/neat"
)

func testGenome(t *testing.T, w float64) *neat.Genome {
	t.Helper()
	g, err := neat.NewGenome(2, 1)
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(neat.ConnectionGene{Innovation: 0, In: 0, Out: 2, Weight: w, Expressed: true}))
	require.NoError(t, g.AddConnection(neat.ConnectionGene{Innovation: 4, In: 1, Out: 2, Weight: -w, Expressed: false}))
	return g
}

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, st Store) {
	ctx := context.Background()
	require.NoError(t, st.Init(ctx))
	t.Cleanup(func() { _ = st.Close() })

	_, ok, err := st.GetGenome(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	g := testGenome(t, 0.75)
	require.NoError(t, st.SaveGenome(ctx, "b", g))
	require.NoError(t, st.SaveGenome(ctx, "a", testGenome(t, 0.1)))

	// Later edits to the caller's genome are not visible in the store.
	g.SetWeight(0, 5)

	loaded, ok, err := st.GetGenome(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	c, ok := loaded.Connection(0)
	require.True(t, ok)
	assert.Equal(t, 0.75, c.Weight)
	c, ok = loaded.Connection(4)
	require.True(t, ok)
	assert.False(t, c.Expressed)
	assert.Equal(t, 5, loaded.NextInnovation())

	require.NoError(t, st.SaveGenome(ctx, "b", g))
	loaded, _, err = st.GetGenome(ctx, "b")
	require.NoError(t, err)
	c, _ = loaded.Connection(0)
	assert.Equal(t, 5.0, c.Weight)

	ids, err := st.ListGenomeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, st.DeleteGenome(ctx, "a"))
	ids, err = st.ListGenomeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, NewSQLiteStore(filepath.Join(t.TempDir(), "genomes.db")))
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "genomes.db")

	first := NewSQLiteStore(path)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SaveGenome(ctx, "g1", testGenome(t, 0.3)))
	require.NoError(t, first.Close())

	second := NewSQLiteStore(path)
	require.NoError(t, second.Init(ctx))
	defer second.Close()
	g, ok, err := second.GetGenome(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, g.ConnectionCount())
}

func TestUninitializedStores(t *testing.T) {
	ctx := context.Background()
	for name, st := range map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "x.db")),
	} {
		t.Run(name, func(t *testing.T) {
			err := st.SaveGenome(ctx, "g", testGenome(t, 1))
			assert.ErrorIs(t, err, errNotInitialized)
			_, _, err = st.GetGenome(ctx, "g")
			assert.ErrorIs(t, err, errNotInitialized)
		})
	}

	assert.Error(t, NewSQLiteStore("").Init(ctx))
}

func TestNewStore(t *testing.T) {
	st, err := NewStore("", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	st, err = NewStore("sqlite", "genomes.db")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, st)

	_, err = NewStore("postgres", "")
	assert.Error(t, err)
}
