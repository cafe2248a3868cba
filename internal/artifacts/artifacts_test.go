package artifacts

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foldpanel/internal/catalog"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildJSONPreview(t *testing.T) {
	path := writeFile(t, t.TempDir(), "summary.json", `{"score":0.93,"seed":101}`)

	p, err := Build(path, catalog.CategoryJSON)
	require.NoError(t, err)

	assert.Equal(t, KindJSON, p.Kind)
	assert.Equal(t, int64(25), p.SizeBytes)
	assert.Contains(t, string(p.JSON), "\"score\"")
	assert.Contains(t, string(p.JSON), "\n")
	assert.Empty(t, p.ParseError)
}

func TestBuildJSONParseFailureReported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"score": `)

	p, err := Build(path, catalog.CategoryJSON)
	require.NoError(t, err, "a parse failure is reported, not raised")

	assert.NotEmpty(t, p.ParseError)
	assert.Empty(t, p.JSON)
	assert.Equal(t, int64(10), p.SizeBytes, "size is reported even when parsing fails")
}

func TestBuildLogPreviewFullText(t *testing.T) {
	content := strings.Repeat("a long log line\n", 200)
	path := writeFile(t, t.TempDir(), "run.log", content)

	p, err := Build(path, catalog.CategoryLog)
	require.NoError(t, err)

	assert.Equal(t, KindText, p.Kind)
	assert.Equal(t, content, p.Text, "log previews are never truncated")
	assert.False(t, p.Truncated)
}

func TestBuildCIFPreview(t *testing.T) {
	content := "data_model\n" + strings.Repeat("ATOM line\n", 200)
	path := writeFile(t, t.TempDir(), "model.cif", content)

	p, err := Build(path, catalog.CategoryCIF)
	require.NoError(t, err)

	assert.Equal(t, KindStructure, p.Kind)
	require.NotNil(t, p.Structure)
	assert.Equal(t, "cif", p.Structure.Format)
	assert.Equal(t, content, p.Structure.Data, "renderer receives the raw text in full")
	assert.True(t, p.Truncated)
	assert.Len(t, p.Structure.Fallback, 1000+len("..."))
	assert.True(t, strings.HasSuffix(p.Structure.Fallback, "..."))
}

func TestBuildPDBPreviewTruncated(t *testing.T) {
	content := strings.Repeat("ATOM      1  N   MET A   1\n", 100)
	path := writeFile(t, t.TempDir(), "model.pdb", content)

	p, err := Build(path, catalog.CategoryPDB)
	require.NoError(t, err)

	assert.Equal(t, KindText, p.Kind)
	assert.True(t, p.Truncated)
	assert.Len(t, p.Text, 1000+len("..."))
}

func TestBuildPDBShortContentNotTruncated(t *testing.T) {
	path := writeFile(t, t.TempDir(), "tiny.pdb", "ATOM\n")

	p, err := Build(path, catalog.CategoryPDB)
	require.NoError(t, err)
	assert.Equal(t, "ATOM\n", p.Text)
	assert.False(t, p.Truncated)
}

func TestBuildOtherSizeOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "weights.bin", "\x00\x01\x02")

	p, err := Build(path, catalog.CategoryOther)
	require.NoError(t, err)

	assert.Equal(t, KindNone, p.Kind)
	assert.Equal(t, int64(3), p.SizeBytes)
	assert.Empty(t, p.Text)
}

func TestBuildMissingFile(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "gone.cif"), catalog.CategoryCIF)
	assert.Error(t, err)
}

func TestWriteBundleRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "predictions"), 0o755))
	writeFile(t, dir, "run.log", "done\n")
	writeFile(t, filepath.Join(dir, "predictions"), "model.cif", "data_model\n")

	var buf bytes.Buffer
	require.NoError(t, WriteBundle(dir, &buf))

	decoder, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer decoder.Close()

	found := map[string]string{}
	tr := tar.NewReader(decoder)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		found[header.Name] = string(content)
	}

	assert.Equal(t, map[string]string{
		"run.log":               "done\n",
		"predictions/model.cif": "data_model\n",
	}, found)
}

func TestWriteBundleErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteBundle("", &buf))
	assert.Error(t, WriteBundle(filepath.Join(t.TempDir(), "missing"), &buf))

	file := writeFile(t, t.TempDir(), "plain.txt", "x")
	assert.Error(t, WriteBundle(file, &buf))
}
