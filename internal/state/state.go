package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/alexjbarnes/folder-sync/internal/models"
)

const (
	// stateDirPerm is the permission mode for the state directory (~/.folder-sync/).
	stateDirPerm = fs.FileMode(0o700)

	// stateFilePerm is the permission mode for the state database file.
	stateFilePerm = fs.FileMode(0o600)

	// stateOpenTimeout is the maximum time to wait for the bolt database lock.
	stateOpenTimeout = 5 * time.Second
)

var (
	appBucket      = []byte("app")
	tokenKey       = []byte("token")
	acksBucket     = []byte("acks")
	ackIndexBucket = []byte("ack_index")
	rootsBucket    = []byte("roots")
)

// AckRecord is a persisted upload acknowledgement together with the file
// it was correlated to, if any.
type AckRecord struct {
	Seq        uint64            `json:"seq"`
	ID         int64             `json:"id"`
	UUID       string            `json:"uuid"`
	FilePath   string            `json:"filePath,omitempty"`
	Source     models.Provenance `json:"source,omitempty"`
	RecordedAt time.Time         `json:"recordedAt"`
}

// Ack returns the acknowledgement part of the record.
func (r AckRecord) Ack() models.UploadAck {
	return models.UploadAck{ID: r.ID, UUID: r.UUID}
}

// RootSummary is the outcome of the last sync pass over one root.
type RootSummary struct {
	Path       string    `json:"path"`
	SyncedAt   time.Time `json:"syncedAt"`
	Files      int       `json:"files"`
	Dispatched int       `json:"dispatched"`
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
}

// State wraps a bbolt database for all persistent application state.
type State struct {
	db *bolt.DB
}

// Load opens the state database at ~/.folder-sync/state.db, creating it
// if it does not exist.
func Load() (*State, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}

	return LoadAt(path)
}

// LoadAt opens a state database at the given path, creating it if it
// does not exist. Useful for tests that need an isolated database.
func LoadAt(path string) (*State, error) {
	if err := os.MkdirAll(filepath.Dir(path), stateDirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := bolt.Open(path, stateFilePerm, &bolt.Options{Timeout: stateOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{appBucket, acksBucket, ackIndexBucket, rootsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing state db: %w", err)
	}

	return &State{db: db}, nil
}

// DefaultPath returns ~/.folder-sync/state.db.
func DefaultPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(dir, ".folder-sync", "state.db"), nil
}

// Close closes the database.
func (s *State) Close() error {
	return s.db.Close()
}

// Token returns the cached session token, or empty string.
func (s *State) Token() string {
	var token string

	_ = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(appBucket).Get(tokenKey)
		if v != nil {
			token = string(v)
		}

		return nil
	})

	return token
}

// SetToken persists the session token. An empty token removes it.
func (s *State) SetToken(token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(appBucket)
		if token == "" {
			return b.Delete(tokenKey)
		}

		return b.Put(tokenKey, []byte(token))
	})
}

// SaveAck appends an acknowledgement. Records keep arrival order; a
// repeated uuid is stored again and the index points at the latest one.
func (s *State) SaveAck(rec AckRecord) (AckRecord, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(acksBucket)

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		rec.Seq = seq
		if rec.RecordedAt.IsZero() {
			rec.RecordedAt = time.Now().UTC()
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		key := seqKey(seq)
		if err := b.Put(key, data); err != nil {
			return err
		}

		return tx.Bucket(ackIndexBucket).Put([]byte(rec.UUID), key)
	})

	return rec, err
}

// GetAck returns the latest record for a uuid, or nil if not found.
func (s *State) GetAck(uuid string) (*AckRecord, error) {
	var rec *AckRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(ackIndexBucket).Get([]byte(uuid))
		if key == nil {
			return nil
		}

		v := tx.Bucket(acksBucket).Get(key)
		if v == nil {
			return nil
		}

		rec = &AckRecord{}

		return json.Unmarshal(v, rec)
	})

	return rec, err
}

// AllAcks returns every stored acknowledgement in arrival order.
func (s *State) AllAcks() ([]AckRecord, error) {
	var recs []AckRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(acksBucket).ForEach(func(_, v []byte) error {
			var rec AckRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			recs = append(recs, rec)

			return nil
		})
	})

	return recs, err
}

// AckCount returns the number of stored acknowledgements.
func (s *State) AckCount() int {
	count := 0
	_ = s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(acksBucket).Stats().KeyN
		return nil
	})

	return count
}

// SetRootSummary records the outcome of a sync pass over a root.
func (s *State) SetRootSummary(rs RootSummary) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rs)
		if err != nil {
			return err
		}

		return tx.Bucket(rootsBucket).Put([]byte(rs.Path), data)
	})
}

// GetRootSummary returns the last summary for a root, or nil if the root
// was never synced.
func (s *State) GetRootSummary(path string) (*RootSummary, error) {
	var rs *RootSummary

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(rootsBucket).Get([]byte(path))
		if v == nil {
			return nil
		}

		rs = &RootSummary{}

		return json.Unmarshal(v, rs)
	})

	return rs, err
}

// AllRootSummaries returns every root summary keyed by path.
func (s *State) AllRootSummaries() (map[string]RootSummary, error) {
	result := make(map[string]RootSummary)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(rootsBucket).ForEach(func(k, v []byte) error {
			var rs RootSummary
			if err := json.Unmarshal(v, &rs); err != nil {
				return err
			}

			result[string(k)] = rs

			return nil
		})
	})

	return result, err
}

// seqKey encodes a sequence number big-endian so bbolt's byte ordering
// matches numeric order.
func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)

	return b
}
