/*
Package farmstore implements a persistent multi-collection record store on top
of a single durable key-value file (in this case, Bolt).

We implement:

1. Regions, independent named partitions of the durable space identified by a
small integer tag.

2. Counters, a single monotonic uint64 kept in its own region, used to issue
identifiers that are unique across all stores.

3. Stores, ordered maps from a uint64 identifier to a fixed-schema record,
each backed by exactly one region.

# Technical Details

**Regions.**
Every region is a top-level Bolt bucket named after its tag (“r001”). Tags are
handed out while building a Schema and never change, so reopening the file
reconstructs the same regions. Tag 255 is reserved for the meta region, which
holds the layout format version and the instance ID.

**Identifiers.**
A counter stores the last issued value as 8 big-endian bytes. The first issued
value is 1; 0 is never a valid identifier. Identifiers are never reused, even
when the record they named is removed.

**Concurrency.**
The store assumes its host admits one call at a time. Bolt serializes writers
anyway, and we add no locks of our own in stores or counters.

## Binary encoding

**Key**: 8 bytes, big-endian uint64. Iteration order equals numeric order.

**Value**: value header, then encoded data, then checksum.

**Value header**:
1. Flags (uvarint).
2. Schema version (uvarint).
3. Data size (uvarint).

**Value data**: msgpack of the record struct.

**Checksum**: xxhash64 of header and data, 8 bytes little-endian.

The whole value must fit within the store's declared maximum size. Exceeding
it is a programming error and panics; so does failing to decode a value that
is already stored. DB.View and DB.Update turn such panics into *InternalError
and roll the transaction back.
*/
package farmstore
