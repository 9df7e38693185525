package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketRuns = []byte("runs")
)

// Kind classifies a journal run
type Kind string

const (
	KindBuild     Kind = "build"
	KindDeploy    Kind = "deploy"
	KindReconcile Kind = "reconcile"
	KindProvision Kind = "provision"
)

// Outcome reports how a run ended
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// ChangeSummary captures what a reconcile run planned
type ChangeSummary struct {
	Adds    int `json:"adds"`
	Keeps   int `json:"keeps"`
	Removes int `json:"removes"`
}

// Record is one completed Ferry run
type Record struct {
	ID        string         `json:"id"`
	Kind      Kind           `json:"kind"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Outcome   Outcome        `json:"outcome"`
	Error     string         `json:"error,omitempty"`
	Host      string         `json:"host,omitempty"`
	Contexts  []string       `json:"contexts,omitempty"`
	Artifacts []string       `json:"artifacts,omitempty"`
	CacheHits int            `json:"cache_hits,omitempty"`
	Changes   *ChangeSummary `json:"changes,omitempty"`
}

// Begin creates a record for a run starting now
func Begin(kind Kind) Record {
	return Record{
		ID:        uuid.New().String(),
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the record with its duration and the outcome derived from
// err, and returns the completed record.
func (r Record) Finish(err error) Record {
	r.Duration = time.Since(r.StartedAt)
	if err != nil {
		r.Outcome = OutcomeFailed
		r.Error = err.Error()
	} else {
		r.Outcome = OutcomeSucceeded
	}
	return r
}

// Journal persists run records in a bbolt database under the data
// directory. Records are keyed by start time, so listing recent runs is a
// reverse scan.
type Journal struct {
	db *bolt.DB
}

// Open opens the journal, creating the data directory and database as
// needed
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %q: %w", dataDir, err)
	}

	dbPath := filepath.Join(dataDir, "ferry.db")
	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketRuns, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Journal{db: db}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores a completed run record
func (j *Journal) Append(record Record) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put(recordKey(record), data)
	})
}

// Recent returns up to limit runs, newest first. A non-positive limit
// returns all runs.
func (j *Journal) Recent(limit int) ([]Record, error) {
	var records []Record
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) == limit {
				break
			}
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// recordKey builds a key that sorts by start time. UnixNano is zero-padded
// to fixed width so byte order matches numeric order.
func recordKey(record Record) []byte {
	return []byte(fmt.Sprintf("%020d-%s", record.StartedAt.UnixNano(), record.ID))
}
