package models

import "time"

// Provenance records the crawl depth at which a file was discovered.
type Provenance string

const (
	ProvenanceRoot      Provenance = "root"
	ProvenanceFolder    Provenance = "folder"
	ProvenanceSubfolder Provenance = "subfolder"
)

// Valid reports whether p is one of the three known depths.
func (p Provenance) Valid() bool {
	switch p {
	case ProvenanceRoot, ProvenanceFolder, ProvenanceSubfolder:
		return true
	}

	return false
}

// AccessGrant is an OS-level permission to read a user-selected folder.
// It must be released once the folder has been walked.
type AccessGrant interface {
	Release() error
}

// Root is a top-level folder selected for synchronization.
type Root struct {
	Path  string
	Grant AccessGrant
}

// NewRoot returns a root without an access grant, which is the case for
// plain paths read from configuration.
func NewRoot(path string) Root {
	return Root{Path: path}
}

// Release gives back the root's access grant, if it holds one.
func (r Root) Release() error {
	if r.Grant == nil {
		return nil
	}

	return r.Grant.Release()
}

// EntryKind distinguishes regular files from directories.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
)

func (k EntryKind) String() string {
	if k == KindDirectory {
		return "directory"
	}

	return "file"
}

// Entry is a file found by the walker. It is transient and never persisted.
type Entry struct {
	Name       string
	Path       string
	Kind       EntryKind
	Provenance Provenance
	Size       int64
	CreatedAt  time.Time
	ModifiedAt time.Time
}
