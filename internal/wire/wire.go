// Package wire frames litecache records as self-describing byte strings.
//
// Two record kinds exist:
//
//	hot:   magic(4) | ver(1) | kind(1=hot)   | gen(u64 be) | vlen(u32 be) | payload(vlen)
//	entry: magic(4) | ver(1) | kind(2=entry) | created(i64 be) | expires(i64 be) | accessed(i64 be) | vlen(u32 be) | payload(vlen)
//
// Timestamps are unix milliseconds. Decoders reject trailing bytes.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindHot   byte = 1
	kindEntry byte = 2

	hotHeader   = 4 + 1 + 1 + 8 + 4
	entryHeader = 4 + 1 + 1 + 8 + 8 + 8 + 4
)

var (
	ErrCorrupt = errors.New("litecache: corrupt record")
	magic4     = [...]byte{'L', 'I', 'T', 'E'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

func header(buf *bytes.Buffer, kind byte) {
	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)
}

// EncodeHot frames a value with the generation it was stored under.
func EncodeHot(gen uint64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hotHeader + len(payload))
	header(&buf, kindHot)

	var u8 [8]byte
	var u4 [4]byte
	binary.BigEndian.PutUint64(u8[:], gen)
	buf.Write(u8[:])
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])
	buf.Write(payload)
	return buf.Bytes()
}

// DecodeHot returns the generation and a payload slice aliasing b.
func DecodeHot(b []byte) (gen uint64, payload []byte, err error) {
	if len(b) < hotHeader || !hasMagic(b) || b[4] != version || b[5] != kindHot {
		return 0, nil, ErrCorrupt
	}
	off := 6
	gen = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	payload, err = tail(b, off)
	if err != nil {
		return 0, nil, err
	}
	return gen, payload, nil
}

// Entry is the decoded form of an entry record.
type Entry struct {
	CreatedAt  int64
	ExpiresAt  int64
	AccessedAt int64
	Payload    []byte
}

func EncodeEntry(e Entry) []byte {
	var buf bytes.Buffer
	buf.Grow(entryHeader + len(e.Payload))
	header(&buf, kindEntry)

	var u8 [8]byte
	var u4 [4]byte
	for _, ts := range [...]int64{e.CreatedAt, e.ExpiresAt, e.AccessedAt} {
		binary.BigEndian.PutUint64(u8[:], uint64(ts))
		buf.Write(u8[:])
	}
	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])
	buf.Write(e.Payload)
	return buf.Bytes()
}

// DecodeEntry decodes an entry record. Payload aliases b.
func DecodeEntry(b []byte) (Entry, error) {
	if len(b) < entryHeader || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return Entry{}, ErrCorrupt
	}
	off := 6
	var ts [3]int64
	for i := range ts {
		ts[i] = int64(binary.BigEndian.Uint64(b[off : off+8]))
		off += 8
	}
	payload, err := tail(b, off)
	if err != nil {
		return Entry{}, err
	}
	return Entry{CreatedAt: ts[0], ExpiresAt: ts[1], AccessedAt: ts[2], Payload: payload}, nil
}

// tail reads vlen at off and returns exactly vlen payload bytes.
func tail(b []byte, off int) ([]byte, error) {
	if off+4 > len(b) {
		return nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off {
		return nil, ErrCorrupt
	}
	return b[off : off+vlen], nil
}
