package farmstore

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func encodeMsgPack(buf []byte, obj any) []byte {
	bb := bytesBuilder{buf}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	enc.SetSortMapKeys(true)
	err := enc.Encode(obj)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode %T using MsgPack: %w", obj, err))
	}
	return bb.Buf
}

func decodeMsgPack(buf []byte, objPtr any) error {
	var r bytes.Reader
	r.Reset(buf)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	err := dec.Decode(objPtr)
	msgpack.PutDecoder(dec)
	if err != nil {
		return dataErrf(buf, 0, err, "failed to decode msgpack into %T", objPtr)
	}
	if r.Len() != 0 {
		return dataErrf(buf, len(buf)-r.Len(), nil, "%d trailing bytes after msgpack %T", r.Len(), objPtr)
	}
	return nil
}
