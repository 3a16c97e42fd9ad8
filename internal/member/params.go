package member

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
)

// Params is the contract a b-field's per-file user parameters must satisfy.
// Go generics can't express "anything serde round-trippable" the way the
// Rust original's `Serialize + DeserializeOwned` bound does, so we name the
// serialization contract explicitly instead, following the same manual
// length-prefixed byte encoding compactindexsized.Meta and bucketteer use
// rather than reaching for reflection-based encoding.
type Params interface {
	encoding.BinaryMarshaler
}

// Decoder reconstructs a T from the bytes a Params produced. Supplied by the
// caller at open time, the way indexmeta.Meta.UnmarshalWithDecoder is
// supplied a decoder rather than relying on reflection.
type Decoder[T Params] func([]byte) (T, error)

// FileParams is the header payload stored in every member file:
// n_hashes, marker_width, n_marker_bits, and the optional serialized T —
// present only in member 0, per spec.md's data model.
type FileParams struct {
	NHashes     uint8
	MarkerWidth uint8
	NMarkerBits uint8
	Other       []byte // nil when this member carries no user params
}

// MarshalBinary lets FileParams itself be used as a member's user params T
// (the common case of "no structured params, just raw bytes"), satisfying
// the Params constraint.
func (p FileParams) MarshalBinary() ([]byte, error) {
	return append([]byte(nil), p.Other...), nil
}

func (p FileParams) encode() []byte {
	var buf bytes.Buffer
	buf.WriteByte(p.NHashes)
	buf.WriteByte(p.MarkerWidth)
	buf.WriteByte(p.NMarkerBits)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p.Other)))
	buf.Write(lenBuf[:])
	buf.Write(p.Other)
	return buf.Bytes()
}

func decodeFileParams(b []byte) (FileParams, error) {
	if len(b) < 7 {
		return FileParams{}, fmt.Errorf("member: header payload too short (%d bytes)", len(b))
	}
	p := FileParams{
		NHashes:     b[0],
		MarkerWidth: b[1],
		NMarkerBits: b[2],
	}
	otherLen := binary.LittleEndian.Uint32(b[3:7])
	if otherLen > 0 {
		if len(b) < 7+int(otherLen) {
			return FileParams{}, fmt.Errorf("member: header payload truncated, want %d more bytes", otherLen)
		}
		p.Other = append([]byte(nil), b[7:7+otherLen]...)
	}
	return p, nil
}
