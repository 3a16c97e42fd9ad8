package bitstore

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// Magic is the two-byte prefix every member file starts with, per spec.md's
// file layout: offset 0 is 0xBF 0x1D.
var Magic = [2]byte{0xBF, 0x1D}

// fileHeader is: magic (2 bytes) | header length (uint32 LE) | header payload.
// The payload itself is opaque to bitstore — it is whatever bytes the
// member package asked to be stored alongside the bit region.
type fileHeader struct {
	payload []byte
}

func encodeHeader(payload []byte) []byte {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	// ignore errors: bytes.Buffer never fails to grow.
	_, _ = enc.Write(Magic[:])
	_ = enc.WriteUint32(uint32(len(payload)), binary.LittleEndian)
	_, _ = enc.Write(payload)
	return buf.Bytes()
}

func headerSizeOnDisk(payloadLen int) int64 {
	return int64(len(Magic) + 4 + payloadLen)
}

// decodeHeader validates the magic and returns the payload plus the total
// number of bytes the header occupies on disk (so the caller knows where
// the bit region begins).
func decodeHeader(r headerReader) ([]byte, int64, error) {
	prefix := make([]byte, len(Magic)+4)
	if _, err := r.ReadAt(prefix, 0); err != nil {
		return nil, 0, fmt.Errorf("bitstore: reading header prefix: %w", err)
	}
	if !bytes.Equal(prefix[:len(Magic)], Magic[:]) {
		return nil, 0, ErrHeaderMismatch
	}
	payloadLen := binary.LittleEndian.Uint32(prefix[len(Magic):])
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := r.ReadAt(payload, int64(len(prefix))); err != nil {
			return nil, 0, fmt.Errorf("bitstore: reading header payload: %w", err)
		}
	}
	return payload, headerSizeOnDisk(int(payloadLen)), nil
}

type headerReader interface {
	ReadAt(p []byte, off int64) (int, error)
}
