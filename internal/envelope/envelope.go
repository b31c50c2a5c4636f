// Package envelope turns walked files into upload envelopes.
package envelope

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/alexjbarnes/folder-sync/internal/mimetype"
	"github.com/alexjbarnes/folder-sync/internal/models"
)

// TimestampLayout matches the server's yyyy-MM-dd'T'HH:mm:ssZZZZZ
// pattern: seconds precision with a colon-separated offset, "Z" for UTC.
const TimestampLayout = "2006-01-02T15:04:05Z07:00"

// FormatTimestamp renders t in the given location using TimestampLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	return t.In(loc).Format(TimestampLayout)
}

// Builder reads files and packages them as envelopes.
type Builder struct {
	fs       afero.Fs
	table    *mimetype.Table
	logger   *slog.Logger
	location *time.Location
	newID    func() string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLocation sets the zone timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) { b.location = loc }
}

// WithIDFunc replaces the UUID generator.
func WithIDFunc(fn func() string) Option {
	return func(b *Builder) { b.newID = fn }
}

// NewBuilder creates a Builder. A nil fs means the OS filesystem and a
// nil table means mimetype.Default().
func NewBuilder(fs afero.Fs, table *mimetype.Table, logger *slog.Logger, opts ...Option) *Builder {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if table == nil {
		table = mimetype.Default()
	}

	b := &Builder{
		fs:       fs,
		table:    table,
		logger:   logger,
		location: time.Local,
		newID:    func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Importable reports whether path has an extension in the table.
func (b *Builder) Importable(path string) bool {
	_, ok := b.table.Resolve(filepath.Ext(path))
	return ok
}

// Build returns the envelope for entry. Files with an unknown extension
// are skipped: Build returns nil, nil without reading them. A read
// failure is returned as an error.
func (b *Builder) Build(entry models.Entry) (*models.Envelope, error) {
	mime, ok := b.table.Resolve(filepath.Ext(entry.Path))
	if !ok {
		b.logger.Debug("skipping file with unknown type", slog.String("path", entry.Path))
		return nil, nil
	}

	data, err := afero.ReadFile(b.fs, entry.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", entry.Path, err)
	}

	return &models.Envelope{
		UUID:      b.newID(),
		FilePath:  norm.NFC.String(entry.Path),
		MimeType:  mime,
		Source:    entry.Provenance,
		ItemData:  data,
		CreatedAt: FormatTimestamp(entry.CreatedAt, b.location),
		UpdatedAt: FormatTimestamp(entry.ModifiedAt, b.location),
	}, nil
}
