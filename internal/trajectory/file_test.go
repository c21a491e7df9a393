package trajectory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lanematch/internal/fsutil"
)

func TestLoadGesture(t *testing.T) {
	t.Parallel()
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("g.json", []byte(`{"points": [[0,0],[5,0],[10,0]], "timestamps": [0, 2.5, 5]}`), 0644))

	p, err := LoadGesture(fsys, "g.json")
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}, {5, 0}, {10, 0}}, p.Points)
	assert.Equal(t, []float64{0, 2.5, 5}, p.Timestamps)

	require.NoError(t, SaveGesture(fsys, "out/g.json", p))
	again, err := LoadGesture(fsys, "out/g.json")
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestLoadGestureInvalid(t *testing.T) {
	t.Parallel()
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("bad.json", []byte(`{"points": [[0,0],[1,0]], "timestamps": [1, 0]}`), 0644))

	_, err := LoadGesture(fsys, "bad.json")
	assert.ErrorContains(t, err, "invalid gesture")

	_, err = LoadGesture(fsys, "missing.json")
	assert.Error(t, err)
}

func TestLoadGestureEmptyTimestamps(t *testing.T) {
	t.Parallel()
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("g.json", []byte(`{"points": [[0,0],[1,0]], "timestamps": []}`), 0644))

	p, err := LoadGesture(fsys, "g.json")
	require.NoError(t, err)
	assert.False(t, p.HasTimestamps())
	assert.Len(t, p.Points, 2)
}
