// Package tracker accumulates upload acknowledgements as they arrive and
// correlates them with the envelopes that produced them by the
// client-minted uuid.
package tracker

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/alexjbarnes/folder-sync/internal/state"
)

//go:generate mockgen -source=tracker.go -destination=mock_store_test.go -package=tracker

// Store persists acknowledgements. *state.State satisfies it.
type Store interface {
	SaveAck(rec state.AckRecord) (state.AckRecord, error)
}

// Match is what the tracker knows about one upload.
type Match struct {
	UUID     string
	FilePath string
	Source   models.Provenance
	Ack      *models.UploadAck
	Failed   bool
}

// Tracker is safe for concurrent use: acks arrive on upload goroutines.
type Tracker struct {
	store  Store
	logger *slog.Logger

	mu      sync.Mutex
	acks    []models.UploadAck
	uploads map[string]*Match
}

// New creates a tracker. store may be nil, in which case acks are kept
// in memory only.
func New(store Store, logger *slog.Logger) *Tracker {
	return &Tracker{
		store:   store,
		logger:  logger,
		uploads: make(map[string]*Match),
	}
}

// Expect registers an envelope before its upload is issued so the ack
// can be matched back to the file.
func (t *Tracker) Expect(env *models.Envelope) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.uploads[env.UUID] = &Match{
		UUID:     env.UUID,
		FilePath: env.FilePath,
		Source:   env.Source,
	}
}

// Record appends an ack. Acks are never deduplicated or removed. An ack
// whose uuid was not registered with Expect is still recorded.
func (t *Tracker) Record(ack models.UploadAck) {
	t.mu.Lock()

	t.acks = append(t.acks, ack)

	rec := state.AckRecord{ID: ack.ID, UUID: ack.UUID}

	if m, ok := t.uploads[ack.UUID]; ok {
		a := ack
		m.Ack = &a
		m.Failed = false
		rec.FilePath = m.FilePath
		rec.Source = m.Source
	} else {
		t.logger.Debug("ack without matching upload", slog.String("uuid", ack.UUID), slog.Int64("id", ack.ID))
	}

	t.mu.Unlock()

	if t.store == nil {
		return
	}

	if _, err := t.store.SaveAck(rec); err != nil {
		t.logger.Warn("failed to persist ack",
			slog.String("uuid", ack.UUID),
			slog.String("error", err.Error()),
		)
	}
}

// Fail marks an upload as attempted without an ack.
func (t *Tracker) Fail(uuid string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if m, ok := t.uploads[uuid]; ok && m.Ack == nil {
		m.Failed = true
	}
}

// Snapshot returns a copy of the recorded acks in arrival order.
func (t *Tracker) Snapshot() []models.UploadAck {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.UploadAck, len(t.acks))
	copy(out, t.acks)

	return out
}

// Len returns the number of recorded acks.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.acks)
}

// Lookup returns the upload registered under uuid.
func (t *Tracker) Lookup(uuid string) (Match, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.uploads[uuid]
	if !ok {
		return Match{}, false
	}

	return *m, true
}

// Pending returns the uuids that have neither an ack nor a failure, sorted.
func (t *Tracker) Pending() []string {
	return t.filter(func(m *Match) bool { return m.Ack == nil && !m.Failed })
}

// Failed returns the uuids whose upload failed, sorted.
func (t *Tracker) Failed() []string {
	return t.filter(func(m *Match) bool { return m.Failed })
}

func (t *Tracker) filter(keep func(*Match) bool) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string

	for id, m := range t.uploads {
		if keep(m) {
			out = append(out, id)
		}
	}

	sort.Strings(out)

	return out
}
