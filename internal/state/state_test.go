package state

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexjbarnes/folder-sync/internal/models"
)

func testDB(t *testing.T) *State {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := LoadAt(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// --- LoadAt / Close ---

func TestLoadAt_CreatesDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "state.db")
	s, err := LoadAt(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestLoadAt_ReopensExistingDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	s1, err := LoadAt(dbPath)
	require.NoError(t, err)
	require.NoError(t, s1.SetToken("persist-me"))
	_, err = s1.SaveAck(AckRecord{ID: 1, UUID: "u-1"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := LoadAt(dbPath)
	require.NoError(t, err)
	defer s2.Close()

	assert.Equal(t, "persist-me", s2.Token())
	assert.Equal(t, 1, s2.AckCount())
}

// --- Token ---

func TestToken_EmptyByDefault(t *testing.T) {
	assert.Equal(t, "", testDB(t).Token())
}

func TestSetToken_RoundTripAndClear(t *testing.T) {
	s := testDB(t)
	require.NoError(t, s.SetToken("tok_abc123"))
	assert.Equal(t, "tok_abc123", s.Token())

	require.NoError(t, s.SetToken("new"))
	assert.Equal(t, "new", s.Token())

	require.NoError(t, s.SetToken(""))
	assert.Equal(t, "", s.Token())
}

// --- Acks ---

func TestSaveAck_AssignsSequenceAndTime(t *testing.T) {
	s := testDB(t)

	r1, err := s.SaveAck(AckRecord{ID: 10, UUID: "a"})
	require.NoError(t, err)
	r2, err := s.SaveAck(AckRecord{ID: 11, UUID: "b"})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), r1.Seq)
	assert.Equal(t, uint64(2), r2.Seq)
	assert.False(t, r1.RecordedAt.IsZero())
}

func TestAllAcks_NumericArrivalOrder(t *testing.T) {
	s := testDB(t)
	for i := 1; i <= 300; i++ {
		_, err := s.SaveAck(AckRecord{ID: int64(i), UUID: "u"})
		require.NoError(t, err)
	}

	recs, err := s.AllAcks()
	require.NoError(t, err)
	require.Len(t, recs, 300)
	for i, r := range recs {
		assert.Equal(t, int64(i+1), r.ID)
	}
}

func TestGetAck_LatestForUUID(t *testing.T) {
	s := testDB(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	_, err := s.SaveAck(AckRecord{ID: 1, UUID: "dup"})
	require.NoError(t, err)
	_, err = s.SaveAck(AckRecord{ID: 2, UUID: "dup", FilePath: "/r/a.txt", Source: models.ProvenanceRoot, RecordedAt: at})
	require.NoError(t, err)

	rec, err := s.GetAck("dup")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(2), rec.ID)
	assert.Equal(t, "/r/a.txt", rec.FilePath)
	assert.Equal(t, models.ProvenanceRoot, rec.Source)
	assert.True(t, at.Equal(rec.RecordedAt))
	assert.Equal(t, models.UploadAck{ID: 2, UUID: "dup"}, rec.Ack())
	assert.Equal(t, 2, s.AckCount(), "acks are never deduplicated")
}

func TestGetAck_Missing(t *testing.T) {
	rec, err := testDB(t).GetAck("nope")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

// --- Root summaries ---

func TestRootSummary_RoundTrip(t *testing.T) {
	s := testDB(t)
	rs := RootSummary{
		Path:       "/music",
		SyncedAt:   time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Files:      12,
		Dispatched: 10,
		Skipped:    2,
	}
	require.NoError(t, s.SetRootSummary(rs))

	got, err := s.GetRootSummary("/music")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Dispatched)
	assert.True(t, rs.SyncedAt.Equal(got.SyncedAt))

	none, err := s.GetRootSummary("/photos")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAllRootSummaries(t *testing.T) {
	s := testDB(t)
	require.NoError(t, s.SetRootSummary(RootSummary{Path: "/a", Files: 1}))
	require.NoError(t, s.SetRootSummary(RootSummary{Path: "/b", Files: 2}))
	require.NoError(t, s.SetRootSummary(RootSummary{Path: "/a", Files: 3}))

	all, err := s.AllRootSummaries()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 3, all["/a"].Files)
}
