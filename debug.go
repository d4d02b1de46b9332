package farmstore

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpRegionHeaders = DumpFlags(1 << iota)
	DumpRows
	DumpStats
	DumpRaw

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the contents of every region for debugging.
func (tx *Tx) Dump(f DumpFlags) string {
	var buf strings.Builder
	for _, r := range tx.db.schema.Regions() {
		tx.dumpRegion(&buf, f, r)
	}
	return buf.String()
}

func (tx *Tx) dumpRegion(w *strings.Builder, f DumpFlags, r *Region) {
	prefix := r.String()
	s := tx.RegionStats(r)

	if f.Contains(DumpRegionHeaders) {
		fmt.Fprintln(w, dumpSep1)
		fmt.Fprintf(w, "%s (%d records)\n", prefix, s.Records)
	}
	if f.Contains(DumpStats) {
		fmt.Fprintf(w, "%s.stats: size = %d, alloc = %d\n", prefix, s.Size, s.Alloc)
	}
	if !f.Contains(DumpRows) {
		return
	}
	if f.Contains(DumpStats) {
		fmt.Fprintln(w, dumpSep2)
	}
	c := tx.bucket(r).Scan()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		tx.dumpRow(w, f, r, k, v)
	}
}

func (tx *Tx) dumpRow(w *strings.Builder, f DumpFlags, r *Region, k, v []byte) {
	prefix := r.String()
	if r.decode == nil {
		// counter and meta regions hold raw scalars under string keys
		if len(v) == 8 {
			fmt.Fprintf(w, "%s.%s = %d\n", prefix, k, binary.BigEndian.Uint64(v))
		} else {
			fmt.Fprintf(w, "%s.%s = %q\n", prefix, k, v)
		}
		return
	}

	id, err := decodeKey(k)
	if err != nil {
		fmt.Fprintf(w, "%s.%s ** ERROR: %v\n", prefix, dumpBytes(k), err)
		return
	}
	var vle value
	if err := vle.decode(v); err != nil {
		fmt.Fprintf(w, "%s/%d ** ERROR: %v\n", prefix, id, err)
		return
	}
	row, err := r.decode(v)
	if err != nil {
		fmt.Fprintf(w, "%s/%d = (s%d) ** ERROR: %v\n", prefix, id, vle.SchemaVer, err)
		return
	}
	fmt.Fprintf(w, "%s/%d = (s%d, %d bytes) %s\n", prefix, id, vle.SchemaVer, len(v), must(json.Marshal(row)))
	if f.Contains(DumpRaw) {
		fmt.Fprintf(w, "%s/%d.raw = %s\n", prefix, id, dumpBytes(v))
	}
}

// Verify decodes every record of every store region and returns the problems
// found. An empty result means all stored bytes are intact.
func (tx *Tx) Verify() []error {
	var errs []error
	for _, r := range tx.db.schema.Regions() {
		if r.decode == nil {
			continue
		}
		c := tx.bucket(r).Scan()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			id, err := decodeKey(k)
			if err != nil {
				errs = append(errs, regionErrf(r, 0, err, "bad key"))
				continue
			}
			if _, err := r.decode(v); err != nil {
				errs = append(errs, regionErrf(r, id, err, "bad record"))
			}
		}
	}
	return errs
}

func dumpBytes(b []byte) string {
	switch {
	case b == nil:
		return "<nil>"
	case len(b) == 0:
		return "<empty>"
	}
	return hex.EncodeToString(b)
}
