package farmstore

import (
	"encoding/binary"
	"math"
)

var counterKey = []byte("last")

// Counter issues identifiers from a single uint64 persisted in its own region.
// Values start at 1 and only grow; an issued value is never handed out again.
type Counter struct {
	region *Region
}

func AddCounter(scm *Schema, r *Region) *Counter {
	if scm.RegionByTag(r.tag) != r {
		panic("region belongs to a different schema")
	}
	r.claim("counter")
	return &Counter{region: r}
}

func (c *Counter) Region() *Region {
	return c.region
}

// Current returns the last issued value, or 0 if nothing has been issued yet.
func (c *Counter) Current(tx *Tx) uint64 {
	raw := tx.bucket(c.region).Get(counterKey)
	if raw == nil {
		return 0
	}
	if len(raw) != 8 {
		panic(regionErrf(c.region, 0, dataErrf(raw, 0, nil, "counter must be 8 bytes"), "reading counter"))
	}
	return binary.BigEndian.Uint64(raw)
}

// Next persists the incremented counter within tx and returns the new value.
// The value is only durably issued once tx commits; if the write fails, no
// value is returned.
func (c *Counter) Next(tx *Tx) (uint64, error) {
	if !tx.IsWritable() {
		return 0, ErrReadOnly
	}
	cur := c.Current(tx)
	if cur == math.MaxUint64 {
		return 0, regionErrf(c.region, 0, ErrCounterExhausted, "")
	}
	next := cur + 1
	err := tx.bucket(c.region).Put(counterKey, binary.BigEndian.AppendUint64(nil, next))
	if err != nil {
		return 0, wrapInternal("allocate id", regionErrf(c.region, 0, err, "persisting counter"))
	}
	tx.markWritten()

	if tx.db.verbose {
		tx.db.logf("db: NEXT %v => %d", c.region, next)
	}
	m := tx.db.metrics
	tx.OnCommit(func() {
		m.idsIssued.Inc()
	})
	return next, nil
}
