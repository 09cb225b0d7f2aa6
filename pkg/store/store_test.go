package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvariants_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.inv")
	inv := []float64{1.0 / 3.0, 0, 1910.5, 2.2250738585072014e-308, 1.7976931348623157e+308, math.Pi}

	require.NoError(t, WriteInvariants(path, inv))

	got, err := ReadInvariants(path)
	require.NoError(t, err)
	assert.Equal(t, inv, got)
}

func TestInvariants_EmptyVector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.inv")
	require.NoError(t, WriteInvariants(path, nil))

	got, err := ReadInvariants(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadInvariants_Corrupt(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data string
	}{
		{name: "empty file", data: ""},
		{name: "bad count", data: "x 1 2 "},
		{name: "count mismatch", data: "3 1 2 "},
		{name: "bad value", data: "2 1 foo "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.inv")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))

			_, err := ReadInvariants(path)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.binvox")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	h1, err := Fingerprint(path)
	require.NoError(t, err)
	h2, err := Fingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.NotEmpty(t, h1)

	require.NoError(t, os.WriteFile(path, []byte("payload2"), 0o644))
	h3, err := Fingerprint(path)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.yaml")

	ix, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 0, ix.Len())

	ix.Put(Entry{Path: "a/b.binvox", Hash: "h1", MaxOrder: 4, Length: 9, File: "a/b.inv"})
	ix.Put(Entry{Path: "a/b.binvox", Hash: "h1", MaxOrder: 6, Length: 16, File: "a/b.inv"})

	assert.True(t, ix.Seen("a/b.binvox", "h1", 4))
	assert.False(t, ix.Seen("a/b.binvox", "h2", 4), "changed file needs recompute")
	assert.False(t, ix.Seen("a/b.binvox", "h1", 5), "different order needs recompute")
	assert.Equal(t, 2, ix.Len())

	// replacing an entry keeps the key unique
	ix.Put(Entry{Path: "a/b.binvox", Hash: "h2", MaxOrder: 4, Length: 9, File: "a/b.inv"})
	assert.Equal(t, 2, ix.Len())
	assert.True(t, ix.Seen("a/b.binvox", "h2", 4))
	assert.False(t, ix.Seen("a/b.binvox", "h1", 4))

	require.NoError(t, ix.Save(path))

	loaded, err := LoadIndex(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.True(t, loaded.Seen("a/b.binvox", "h2", 4))
	assert.True(t, loaded.Seen("a/b.binvox", "h1", 6))
}
