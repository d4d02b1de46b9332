package farmstore

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.etcd.io/bbolt"
)

const formatVersion = 1

var (
	metaFormatKey   = []byte("format")
	metaInstanceKey = []byte("instance")
)

type DB struct {
	st         space
	schema     *Schema
	logf       func(format string, args ...any)
	verbose    bool
	metrics    *metrics
	instanceID string

	lastSize atomic.Int64
	reads    atomic.Uint64
	writes   atomic.Uint64
}

// Stats describes the activity of a DB since it was opened.
type Stats struct {
	Reads  uint64 // read transactions started
	Writes uint64 // write transactions committed
	Size   int64
}

type Options struct {
	Logf      func(format string, args ...any)
	Verbose   bool
	IsTesting bool
	MmapSize  int

	// Registerer receives the store metrics. Nil keeps them unregistered.
	Registerer prometheus.Registerer
}

// Open opens (creating if necessary) the durable space at path and prepares
// every region of the schema. Any error here means the space is unusable.
func Open(path string, scm *Schema, opt Options) (*DB, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("farmstore: %w", err)
	}
	db, err := open(newBoltSpace(bdb), scm, opt)
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return db, nil
}

// OpenMem returns a DB backed by a transient in-memory space.
func OpenMem(scm *Schema, opt Options) (*DB, error) {
	return open(newMemSpace(), scm, opt)
}

func open(st space, scm *Schema, opt Options) (*DB, error) {
	m, err := newMetrics(opt.Registerer)
	if err != nil {
		return nil, fmt.Errorf("farmstore: metrics: %w", err)
	}
	logf := opt.Logf
	if logf == nil {
		logf = func(format string, args ...any) {
			slog.Debug(fmt.Sprintf(format, args...))
		}
	}

	scm.opened = true
	db := &DB{
		st:      st,
		schema:  scm,
		logf:    logf,
		verbose: opt.Verbose,
		metrics: m,
	}

	err = db.Update(func(tx *Tx) error {
		tx.markWritten()
		for _, r := range scm.Regions() {
			if _, err := tx.stx.EnsureRegion(r.buck.Raw()); err != nil {
				return fmt.Errorf("creating region %v: %w", r, err)
			}
		}
		return db.prepareMeta(tx)
	})
	if err != nil {
		return nil, fmt.Errorf("farmstore: %w", err)
	}
	return db, nil
}

func (db *DB) prepareMeta(tx *Tx) error {
	b := tx.bucket(db.schema.meta())
	raw := b.Get(metaFormatKey)
	if raw == nil {
		id := uuid.NewString()
		ensure(b.Put(metaFormatKey, binary.AppendUvarint(nil, formatVersion)))
		ensure(b.Put(metaInstanceKey, []byte(id)))
		db.instanceID = id
		db.logf("farmstore: initialized new space %s", id)
		return nil
	}
	ver, n := binary.Uvarint(raw)
	if n <= 0 || ver != formatVersion {
		return fmt.Errorf("%w: format %x", ErrUnsupportedFormat, raw)
	}
	id, err := uuid.ParseBytes(b.Get(metaInstanceKey))
	if err != nil {
		return dataErrf(b.Get(metaInstanceKey), 0, err, "invalid instance id")
	}
	db.instanceID = id.String()
	return nil
}

func (db *DB) Schema() *Schema {
	return db.schema
}

// InstanceID is a random identifier assigned when the space was first created.
// It survives reopening and tells copies of the same space apart from
// unrelated ones.
func (db *DB) InstanceID() string {
	return db.instanceID
}

// Size is the size of the space as of the last committed write.
func (db *DB) Size() int64 {
	return db.lastSize.Load()
}

func (db *DB) Stats() Stats {
	return Stats{
		Reads:  db.reads.Load(),
		Writes: db.writes.Load(),
		Size:   db.Size(),
	}
}

func (db *DB) Close() error {
	err := db.st.Close()
	if err != nil {
		return fmt.Errorf("farmstore: closing: %w", err)
	}
	return nil
}
