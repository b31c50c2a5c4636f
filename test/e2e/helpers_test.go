package e2e_test

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/alexjbarnes/folder-sync/internal/api"
	"github.com/alexjbarnes/folder-sync/internal/coordinator"
	"github.com/alexjbarnes/folder-sync/internal/envelope"
	"github.com/alexjbarnes/folder-sync/internal/logging"
	"github.com/alexjbarnes/folder-sync/internal/mimetype"
	"github.com/alexjbarnes/folder-sync/internal/models"
	"github.com/alexjbarnes/folder-sync/internal/state"
	"github.com/alexjbarnes/folder-sync/internal/tracker"
	"github.com/alexjbarnes/folder-sync/internal/uploader"
	"github.com/alexjbarnes/folder-sync/internal/walker"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// ingestServer is a fake ingestion endpoint that decodes every upload
// and acknowledges it with an increasing id.
type ingestServer struct {
	*httptest.Server

	mu       sync.Mutex
	received []models.Envelope
	failFor  map[string]bool
	nextID   int64
}

func newIngestServer(t *testing.T) *ingestServer {
	t.Helper()

	s := &ingestServer{failFor: map[string]bool{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

func (s *ingestServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/uploads" {
		http.NotFound(w, r)
		return
	}

	zr, err := gzip.NewReader(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var env models.Envelope
	if err := json.NewDecoder(zr).Decode(&env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.failFor[filepath.Base(env.FilePath)] {
		s.mu.Unlock()
		http.Error(w, `{"error":"rejected"}`, http.StatusInternalServerError)

		return
	}

	s.nextID++
	id := s.nextID
	s.received = append(s.received, env)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"id":` + strconv.FormatInt(id, 10) + `,"uuid":"` + env.UUID + `"}`))
}

func (s *ingestServer) reject(name string) {
	s.mu.Lock()
	s.failFor[name] = true
	s.mu.Unlock()
}

func (s *ingestServer) envelopes() []models.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Envelope, len(s.received))
	copy(out, s.received)

	return out
}

// harness wires the full upload pipeline against an ingestServer.
type harness struct {
	Server      *ingestServer
	State       *state.State
	Tracker     *tracker.Tracker
	Dispatcher  *uploader.Dispatcher
	Coordinator *coordinator.Coordinator
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := newIngestServer(t)
	logger := logging.Discard()

	st, err := state.LoadAt(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	client, err := api.NewClient(srv.URL+"/uploads", nil)
	require.NoError(t, err)

	fs := afero.NewOsFs()
	tr := tracker.New(st, logger)

	d, err := uploader.New(context.Background(), client, tr, logger, 3)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	c := coordinator.New(
		walker.New(fs, logger),
		envelope.NewBuilder(fs, mimetype.Default(), logger),
		d,
		logger,
		coordinator.WithStore(st),
	)

	return &harness{
		Server:      srv,
		State:       st,
		Tracker:     tr,
		Dispatcher:  d,
		Coordinator: c,
	}
}

// sync runs one pass over roots and waits for every upload to finish.
func (h *harness) sync(t *testing.T, roots ...string) []state.RootSummary {
	t.Helper()

	rs := make([]models.Root, 0, len(roots))
	for _, r := range roots {
		rs = append(rs, models.NewRoot(r))
	}

	summaries, err := h.Coordinator.SyncAll(context.Background(), rs)
	require.NoError(t, err)

	h.Dispatcher.Wait()

	return summaries
}

// seedRoot creates a temp directory holding files at the given
// slash-separated relative paths.
func seedRoot(t *testing.T, files ...string) string {
	t.Helper()

	root := t.TempDir()
	for _, rel := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("content of "+rel), 0o644))
	}

	return root
}
