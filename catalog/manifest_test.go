package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btservant/tbpcorpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *core.SourceDocument {
	return &core.SourceDocument{
		Filename:    "Genesis 1-11 Transcript.pdf",
		Path:        "Script-References/Torah-Series",
		Category:    "Script-References",
		OriginalURL: "https://example.com/media/Script References/Torah Series/Genesis 1-11 Transcript.pdf",
		ContentHash: "d41d8cd98f00b204e9800998ecf8427e",
		Size:        204800,
	}
}

func TestManifestAdd(t *testing.T) {
	m := NewManifest("https://example.com/downloads/")

	res, added := m.Add(sampleDoc())
	require.True(t, added)
	require.NotNil(t, res)
	assert.Equal(t, "Genesis-1-11-Transcript.pdf", res.SanitizedFilename)
	assert.Equal(t, 1, m.TotalDiscovered)

	got, ok := m.Lookup("Genesis-1-11-Transcript.pdf")
	require.True(t, ok)
	assert.Equal(t, res, got)
}

func TestManifestAddDeduplicatesByHash(t *testing.T) {
	m := NewManifest("")

	_, added := m.Add(sampleDoc())
	require.True(t, added)

	// Same content under a different name is a no-op.
	dup := sampleDoc()
	dup.Filename = "Genesis 1-11 Transcript (copy).pdf"
	dup.Path = "Study-Notes"
	_, added = m.Add(dup)
	assert.False(t, added)
	assert.Equal(t, 1, m.TotalDiscovered)
	assert.Len(t, m.Resources, 1)
}

func TestManifestPathForHash(t *testing.T) {
	m := NewManifest("")
	doc := sampleDoc()
	m.Add(doc)

	path, ok := m.PathForHash(doc.ContentHash)
	require.True(t, ok)
	assert.Equal(t, "Script-References/Torah-Series/Genesis-1-11-Transcript.pdf", path)

	_, ok = m.PathForHash("0000000000000000000000000000dead")
	assert.False(t, ok)
}

func TestManifestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata", ManifestFilename)

	m := NewManifest("https://example.com/downloads/")
	m.Add(sampleDoc())
	m.Stats.Downloaded = 1
	require.NoError(t, m.Save(path))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, m.Source, loaded.Source)
	assert.Equal(t, 1, loaded.Stats.Downloaded)
	require.Len(t, loaded.Resources, 1)

	// Indexes survive the round trip.
	_, ok := loaded.Lookup("Genesis-1-11-Transcript.pdf")
	assert.True(t, ok)
	_, ok = loaded.PathForHash(sampleDoc().ContentHash)
	assert.True(t, ok)
}

func TestLoadManifestMissingFile(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, m.Resources)
}

func TestLoadManifestCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidManifest)
}
