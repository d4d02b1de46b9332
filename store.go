package farmstore

import (
	"fmt"
	"iter"
	"reflect"
)

// Store is an ordered map from a non-zero uint64 identifier to a record of
// type R, backed by one region. Records are encoded with msgpack and must fit
// within maxSize bytes including the value header and checksum.
type Store[R any] struct {
	region    *Region
	maxSize   int
	schemaVer uint64
}

func AddStore[R any](scm *Schema, r *Region, maxSize int) *Store[R] {
	rowType := reflect.TypeFor[R]()
	if rowType.Kind() != reflect.Struct {
		panic(fmt.Sprintf("AddStore(%v): record type must be a struct, got %v", r, rowType))
	}
	if maxSize < minValueSize {
		panic(fmt.Sprintf("AddStore(%v): max size %d is below the minimum of %d", r, maxSize, minValueSize))
	}
	if scm.RegionByTag(r.tag) != r {
		panic(fmt.Sprintf("AddStore(%v): region belongs to a different schema", r))
	}
	r.claim("store of " + rowType.String())
	s := &Store[R]{
		region:    r,
		maxSize:   maxSize,
		schemaVer: 1,
	}
	r.decode = func(raw []byte) (any, error) {
		return s.Decode(raw)
	}
	return s
}

// SetSchemaVersion changes the version written into new values. Values with
// a version above the current one are rejected as corrupt.
func (s *Store[R]) SetSchemaVersion(ver uint64) *Store[R] {
	if ver == 0 || ver > maxSchemaVersion {
		panic(fmt.Errorf("%v: invalid schema version %d", s.region, ver))
	}
	s.schemaVer = ver
	return s
}

func (s *Store[R]) Region() *Region {
	return s.region
}

func (s *Store[R]) MaxSize() int {
	return s.maxSize
}

// Encode returns the stored representation of row, or *SizeError if it
// doesn't fit.
func (s *Store[R]) Encode(row *R) ([]byte, error) {
	scratch := dataBytesPool.Get().([]byte)
	defer releaseBytes(dataBytesPool, scratch)
	data := encodeMsgPack(scratch, row)

	raw := appendValue(make([]byte, 0, len(data)+16), s.schemaVer, data)
	if len(raw) > s.maxSize {
		return nil, &SizeError{Region: s.region.String(), Size: len(raw), Max: s.maxSize}
	}
	return raw, nil
}

// Decode reconstructs a record from its stored representation.
func (s *Store[R]) Decode(raw []byte) (*R, error) {
	var vle value
	if err := vle.decode(raw); err != nil {
		return nil, err
	}
	if vle.SchemaVer > s.schemaVer {
		return nil, dataErrf(raw, 0, nil, "schema version %d is newer than supported %d", vle.SchemaVer, s.schemaVer)
	}
	row := new(R)
	if err := decodeMsgPack(vle.Data, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Store[R]) mustDecode(id uint64, raw []byte) *R {
	row, err := s.Decode(raw)
	if err != nil {
		panic(regionErrf(s.region, id, err, "decoding"))
	}
	return row
}

func (s *Store[R]) Get(tx *Tx, id uint64) (*R, bool) {
	keyBuf := keyBytesPool.Get().([]byte)
	defer releaseBytes(keyBytesPool, keyBuf)
	raw := tx.bucket(s.region).Get(appendKey(keyBuf, id))
	tx.db.metrics.op(s.region, "get")
	if raw == nil {
		if tx.db.verbose {
			tx.db.logf("db: GET.NOTFOUND %v/%d", s.region, id)
		}
		return nil, false
	}
	row := s.mustDecode(id, raw)
	if tx.db.verbose {
		tx.db.logf("db: GET %v/%d => %s", s.region, id, loggableRow(row))
	}
	return row, true
}

func (s *Store[R]) Exists(tx *Tx, id uint64) bool {
	keyBuf := keyBytesPool.Get().([]byte)
	defer releaseBytes(keyBytesPool, keyBuf)
	return tx.bucket(s.region).Get(appendKey(keyBuf, id)) != nil
}

// Put inserts row under id, replacing any previous record.
//
// Panics if id is zero or the encoded row exceeds the store's maximum size;
// DB.Update reports such a panic as *InternalError and stores nothing.
func (s *Store[R]) Put(tx *Tx, id uint64, row *R) {
	if id == 0 {
		panic(regionErrf(s.region, 0, nil, "attempt to store a record under zero id"))
	}
	if row == nil {
		panic(regionErrf(s.region, id, nil, "attempt to store a nil record"))
	}
	raw, err := s.Encode(row)
	if err != nil {
		panic(err)
	}
	tx.markWritten()
	ensure(tx.bucket(s.region).Put(appendKey(nil, id), raw))

	if tx.db.verbose {
		tx.db.logf("db: PUT %v/%d => %s", s.region, id, loggableRow(row))
	}
	tx.OnCommit(func() { tx.db.metrics.op(s.region, "put") })
}

// Remove deletes the record under id and returns it, or returns false if
// there was none.
func (s *Store[R]) Remove(tx *Tx, id uint64) (*R, bool) {
	key := appendKey(nil, id)
	b := tx.bucket(s.region)
	raw := b.Get(key)
	if raw == nil {
		if tx.db.verbose {
			tx.db.logf("db: DELETE.NOTFOUND %v/%d", s.region, id)
		}
		return nil, false
	}
	row := s.mustDecode(id, raw)
	tx.markWritten()
	ensure(b.Delete(key))

	if tx.db.verbose {
		tx.db.logf("db: DELETE %v/%d", s.region, id)
	}
	tx.OnCommit(func() { tx.db.metrics.op(s.region, "remove") })
	return row, true
}

// All yields every record in ascending id order. The sequence reflects the
// transaction's snapshot and can be ranged over more than once while tx is
// open. Mutating the store while ranging over it is not supported.
func (s *Store[R]) All(tx *Tx) iter.Seq2[uint64, *R] {
	return func(yield func(uint64, *R) bool) {
		tx.db.metrics.op(s.region, "scan")
		c := tx.bucket(s.region).Scan()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			id, err := decodeKey(k)
			if err != nil {
				panic(regionErrf(s.region, 0, err, "scanning"))
			}
			if !yield(id, s.mustDecode(id, v)) {
				return
			}
		}
	}
}

// Rows collects All into a slice.
func (s *Store[R]) Rows(tx *Tx) []*R {
	var result []*R
	for _, row := range s.All(tx) {
		result = append(result, row)
	}
	return result
}

// Count walks the region, so it also sees changes not yet committed.
func (s *Store[R]) Count(tx *Tx) int {
	n := 0
	c := tx.bucket(s.region).Scan()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}
