package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingGrant struct {
	released int
	err      error
}

func (g *countingGrant) Release() error {
	g.released++
	return g.err
}

func TestRoot_ReleaseWithoutGrant(t *testing.T) {
	assert.NoError(t, NewRoot("/tmp/music").Release())
}

func TestRoot_ReleaseCallsGrant(t *testing.T) {
	g := &countingGrant{}
	r := Root{Path: "/tmp/music", Grant: g}
	assert.NoError(t, r.Release())
	assert.Equal(t, 1, g.released)
}

func TestRoot_ReleasePropagatesError(t *testing.T) {
	g := &countingGrant{err: errors.New("stale bookmark")}
	r := Root{Path: "/tmp/music", Grant: g}
	assert.EqualError(t, r.Release(), "stale bookmark")
}

func TestProvenance_Valid(t *testing.T) {
	assert.True(t, ProvenanceRoot.Valid())
	assert.True(t, ProvenanceFolder.Valid())
	assert.True(t, ProvenanceSubfolder.Valid())
	assert.False(t, Provenance("extra").Valid())
	assert.False(t, Provenance("").Valid())
}

func TestEntryKind_String(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "directory", KindDirectory.String())
}

func TestFlattenFiles_PreservesUploadOrder(t *testing.T) {
	uploads := []UploadWithFiles{
		{
			ID:         1,
			ImageFiles: []ImageFile{{ID: 10, FileName: "a.jpg"}},
			TextFiles:  []DocumentFile{{ID: 11, FileName: "a.txt"}},
		},
		{
			ID:         2,
			ImageFiles: []ImageFile{{ID: 20, FileName: "b.jpg"}},
			AudioFiles: []AudioFile{{ID: 21, FileName: "b.mp3"}},
			VideoFiles: []VideoFile{{ID: 22, FileName: "b.mkv"}},
			PdfFiles:   []DocumentFile{{ID: 23, FileName: "b.pdf"}},
		},
	}

	f := FlattenFiles(uploads)
	assert.Equal(t, 6, f.Len())
	if assert.Len(t, f.Images, 2) {
		assert.Equal(t, "a.jpg", f.Images[0].FileName)
		assert.Equal(t, "b.jpg", f.Images[1].FileName)
	}
	assert.Len(t, f.Text, 1)
	assert.Len(t, f.Audio, 1)
	assert.Len(t, f.Video, 1)
	assert.Len(t, f.Pdfs, 1)
}

func TestFlattenFiles_Empty(t *testing.T) {
	assert.Equal(t, 0, FlattenFiles(nil).Len())
}
