package farmstore

import (
	"go.etcd.io/bbolt"
)

// boltSpace maps every region onto a top-level bucket of one Bolt file.
type boltSpace struct {
	bdb *bbolt.DB
}

func newBoltSpace(bdb *bbolt.DB) space {
	return boltSpace{bdb}
}

func (s boltSpace) Begin(writable bool) (spaceTx, error) {
	btx, err := s.bdb.Begin(writable)
	if err != nil {
		return nil, err
	}
	return boltTx{btx}, nil
}

func (s boltSpace) Close() error {
	return s.bdb.Close()
}

type boltTx struct {
	btx *bbolt.Tx
}

func (tx boltTx) Writable() bool {
	return tx.btx.Writable()
}

func (tx boltTx) Region(name []byte) regionData {
	if b := tx.btx.Bucket(name); b != nil {
		return boltRegion{b}
	}
	return nil
}

func (tx boltTx) EnsureRegion(name []byte) (regionData, error) {
	b, err := tx.btx.CreateBucketIfNotExists(name)
	if err != nil {
		return nil, err
	}
	return boltRegion{b}, nil
}

func (tx boltTx) Commit() error {
	return tx.btx.Commit()
}

func (tx boltTx) Rollback() error {
	if err := tx.btx.Rollback(); err != bbolt.ErrTxClosed {
		return err
	}
	return nil
}

func (tx boltTx) Size() int64 {
	return tx.btx.Size()
}

type boltRegion struct {
	b *bbolt.Bucket
}

func (r boltRegion) Get(key []byte) []byte       { return r.b.Get(key) }
func (r boltRegion) Put(key, value []byte) error { return r.b.Put(key, value) }
func (r boltRegion) Delete(key []byte) error     { return r.b.Delete(key) }
func (r boltRegion) Scan() regionCursor          { return r.b.Cursor() }

// Usage reflects the last committed state of the bucket; Bolt computes page
// statistics from pages, not from pending changes. Small buckets live inline
// in their parent's page and have no pages of their own.
func (r boltRegion) Usage() regionUsage {
	st := r.b.Stats()
	return regionUsage{
		Keys:  st.KeyN,
		Inuse: int64(st.LeafInuse + st.BranchInuse + st.InlineBucketInuse),
		Alloc: int64(st.LeafAlloc + st.BranchAlloc + st.InlineBucketInuse),
	}
}
