package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"model.cif", CategoryCIF},
		{"model.CIF", CategoryCIF},
		{"structure.pdb", CategoryPDB},
		{"summary.json", CategoryJSON},
		{"run.log", CategoryLog},
		{"notes.txt", CategoryOther},
		{"archive.tar.gz", CategoryOther},
		{"README", CategoryOther},
		{"weird.Json", CategoryJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Fatalf("Classify(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestWalkPartitionsTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "seed_101", "predictions"), 0o755))

	files := map[string]string{
		"seed_101/predictions/model_0.cif": "data_model\n",
		"seed_101/predictions/model_0.pdb": "ATOM\n",
		"seed_101/summary.json":            `{"score": 0.9}`,
		"run.log":                          "done\n",
		"checkpoint":                       "bin",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	result, err := Walk(dir)
	require.NoError(t, err)

	assert.Len(t, result[CategoryCIF], 1)
	assert.Len(t, result[CategoryPDB], 1)
	assert.Len(t, result[CategoryJSON], 1)
	assert.Len(t, result[CategoryLog], 1)
	assert.Len(t, result[CategoryOther], 1)

	// No file appears twice and none is omitted.
	assert.Equal(t, len(files), result.Total())
	seen := map[string]bool{}
	for _, c := range Categories {
		for _, e := range result[c] {
			assert.False(t, seen[e.Path], "duplicate entry %s", e.Path)
			seen[e.Path] = true
			assert.Greater(t, e.SizeBytes, int64(0))
		}
	}
}

func TestWalkMissingDir(t *testing.T) {
	result, err := Walk(filepath.Join(t.TempDir(), "never-published"))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total())
	for _, c := range Categories {
		entries, ok := result[c]
		assert.True(t, ok, "bucket %q must be present", c)
		assert.Empty(t, entries)
	}
}

func TestWalkEmptyDirArg(t *testing.T) {
	result, err := Walk("")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
}

func TestWalkRecordsSizes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cif"), []byte("12345"), 0o644))

	result, err := Walk(dir)
	require.NoError(t, err)
	require.Len(t, result[CategoryCIF], 1)
	assert.Equal(t, int64(5), result[CategoryCIF][0].SizeBytes)
	assert.Equal(t, "a.cif", result[CategoryCIF][0].Name)
}

func TestContains(t *testing.T) {
	dir := t.TempDir()

	assert.True(t, Contains(dir, filepath.Join(dir, "a.cif")))
	assert.True(t, Contains(dir, filepath.Join(dir, "nested", "b.json")))
	assert.False(t, Contains(dir, dir))
	assert.False(t, Contains(dir, filepath.Join(dir, "..", "escape")))
	assert.False(t, Contains(dir, "/etc/passwd"))
	assert.False(t, Contains("", "/anything"))
}
