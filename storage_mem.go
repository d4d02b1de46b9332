package farmstore

import (
	"errors"
	"maps"
	"slices"
	"sync"
)

var errSpaceClosed = errors.New("space closed")

// memSpace keeps regions in memory. The committed region set is immutable
// once published: readers share it, and the writer copies a region the
// first time it changes it, then publishes a new set on commit.
type memSpace struct {
	writer sync.Mutex // held from Begin(true) until Commit or Rollback

	mu        sync.Mutex
	committed map[string]*memRegion
	closed    bool
}

func newMemSpace() space {
	return &memSpace{committed: make(map[string]*memRegion)}
}

func (s *memSpace) snapshot() (map[string]*memRegion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errSpaceClosed
	}
	return s.committed, nil
}

func (s *memSpace) Begin(writable bool) (spaceTx, error) {
	if !writable {
		regions, err := s.snapshot()
		if err != nil {
			return nil, err
		}
		return &memTx{space: s, regions: regions}, nil
	}

	s.writer.Lock()
	regions, err := s.snapshot()
	if err != nil {
		s.writer.Unlock()
		return nil, err
	}
	return &memTx{
		space:    s,
		writable: true,
		regions:  maps.Clone(regions),
		owned:    make(map[string]bool),
	}, nil
}

func (s *memSpace) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.committed = nil
	return nil
}

type memTx struct {
	space    *memSpace
	writable bool
	done     bool
	regions  map[string]*memRegion
	owned    map[string]bool // regions already copied by this tx
}

func (tx *memTx) Writable() bool {
	return tx.writable
}

func (tx *memTx) Region(name []byte) regionData {
	if tx.regions[string(name)] == nil {
		return nil
	}
	return memRegionRef{tx, string(name)}
}

func (tx *memTx) EnsureRegion(name []byte) (regionData, error) {
	if !tx.writable {
		return nil, ErrReadOnly
	}
	n := string(name)
	if tx.regions[n] == nil {
		tx.regions[n] = &memRegion{vals: make(map[string][]byte)}
		tx.owned[n] = true
	}
	return memRegionRef{tx, n}, nil
}

// own returns a region this tx may modify in place.
func (tx *memTx) own(name string) (*memRegion, error) {
	if !tx.writable {
		return nil, ErrReadOnly
	}
	if tx.done {
		return nil, errSpaceClosed
	}
	r := tx.regions[name]
	if !tx.owned[name] {
		r = r.clone()
		tx.regions[name] = r
		tx.owned[name] = true
	}
	return r, nil
}

func (tx *memTx) Commit() error {
	if !tx.writable || tx.done {
		return errors.New("commit of a read-only or finished transaction")
	}
	tx.space.mu.Lock()
	closed := tx.space.closed
	if !closed {
		tx.space.committed = tx.regions
	}
	tx.space.mu.Unlock()
	tx.finish()
	if closed {
		return errSpaceClosed
	}
	return nil
}

func (tx *memTx) Rollback() error {
	tx.finish()
	return nil
}

func (tx *memTx) finish() {
	if tx.done {
		return
	}
	tx.done = true
	if tx.writable {
		tx.space.writer.Unlock()
	}
}

func (tx *memTx) Size() int64 {
	var n int64
	for _, r := range tx.regions {
		n += r.usage().Inuse
	}
	return n
}

// memRegion stores values by key with a separately kept sorted key list.
// Value slices are never modified after Put, so copies can share them.
type memRegion struct {
	keys []string
	vals map[string][]byte
}

func (r *memRegion) clone() *memRegion {
	return &memRegion{
		keys: slices.Clone(r.keys),
		vals: maps.Clone(r.vals),
	}
}

func (r *memRegion) usage() regionUsage {
	u := regionUsage{Keys: len(r.keys)}
	for k, v := range r.vals {
		u.Inuse += int64(len(k) + len(v))
	}
	u.Alloc = u.Inuse
	return u
}

// memRegionRef resolves the region on every call, since the first write
// replaces the tx's pointer with a private copy.
type memRegionRef struct {
	tx   *memTx
	name string
}

func (ref memRegionRef) region() *memRegion {
	return ref.tx.regions[ref.name]
}

func (ref memRegionRef) Get(key []byte) []byte {
	return ref.region().vals[string(key)]
}

func (ref memRegionRef) Put(key, value []byte) error {
	r, err := ref.tx.own(ref.name)
	if err != nil {
		return err
	}
	k := string(key)
	if _, found := r.vals[k]; !found {
		i, _ := slices.BinarySearch(r.keys, k)
		r.keys = slices.Insert(r.keys, i, k)
	}
	r.vals[k] = slices.Clone(value)
	return nil
}

func (ref memRegionRef) Delete(key []byte) error {
	r, err := ref.tx.own(ref.name)
	if err != nil {
		return err
	}
	k := string(key)
	if _, found := r.vals[k]; !found {
		return nil
	}
	delete(r.vals, k)
	i, _ := slices.BinarySearch(r.keys, k)
	r.keys = slices.Delete(r.keys, i, i+1)
	return nil
}

func (ref memRegionRef) Scan() regionCursor {
	return &memCursor{r: ref.region(), i: -1}
}

func (ref memRegionRef) Usage() regionUsage {
	return ref.region().usage()
}

type memCursor struct {
	r *memRegion
	i int
}

func (c *memCursor) First() ([]byte, []byte) {
	c.i = 0
	return c.current()
}

func (c *memCursor) Next() ([]byte, []byte) {
	if c.i < len(c.r.keys) {
		c.i++
	}
	return c.current()
}

func (c *memCursor) current() ([]byte, []byte) {
	if c.i < 0 || c.i >= len(c.r.keys) {
		return nil, nil
	}
	k := c.r.keys[c.i]
	return []byte(k), c.r.vals[k]
}
