package farmstore

// space is the durable memory space: a set of named regions, each an ordered
// byte-keyed map, changed only through transactions. Bolt backs it on disk;
// the in-memory variant serves tests and dry runs.
type space interface {
	Begin(writable bool) (spaceTx, error)
	Close() error
}

// spaceTx sees a consistent snapshot of the space. At most one writable
// transaction exists at a time. Rollback after Commit is a no-op.
type spaceTx interface {
	Writable() bool

	// Region returns nil if the region has never been created.
	Region(name []byte) regionData
	EnsureRegion(name []byte) (regionData, error)

	Commit() error
	Rollback() error

	// Size is the number of bytes the space occupies, as far as the backend
	// knows.
	Size() int64
}

// regionData is one region inside a transaction. Slices returned by Get and
// the cursor are only valid until the transaction ends and must not be
// modified. Slices passed to Put must stay untouched until then.
type regionData interface {
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error
	Scan() regionCursor
	Usage() regionUsage
}

// regionCursor walks a region in ascending key order. First and Next return
// a nil key when there is nothing more.
type regionCursor interface {
	First() (key, value []byte)
	Next() (key, value []byte)
}

type regionUsage struct {
	Keys  int
	Inuse int64
	Alloc int64
}
