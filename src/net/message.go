package net

import (
	"encoding/binary"
	"math/bits"

	"github.com/mosaicnetworks/regka/src/common"
	"github.com/mosaicnetworks/regka/src/matrix"
)

const (
	codecComponent = "Codec"

	// senderIDSize is the size of the big-endian sender field.
	senderIDSize = 4
)

// Message is a decoded gossip payload.
type Message struct {
	SenderID    uint32
	ForwardMask []bool
	Matrix      *matrix.Matrix
}

// NumSignaled returns the number of contributions a mask signals for the
// purpose of sizing the overhead: 1 when every bit is set, else the number of
// set bits, and never less than 1.
func NumSignaled(mask []bool) int {
	count := 0
	for _, b := range mask {
		if b {
			count++
		}
	}
	if count == len(mask) || count == 0 {
		return 1
	}
	return count
}

// OverheadBits models the signature and aggregation overhead carried by a
// message signalling k contributions: 8*(160 + 64*(⌈log2 k⌉+1)). k below 1 is
// treated as 1.
func OverheadBits(k int) int {
	if k < 1 {
		k = 1
	}
	ceilLog2 := bits.Len(uint(k - 1))
	return 8 * (160 + 64*(ceilLog2+1))
}

func bitBytes(nbits int) int {
	return (nbits + 7) / 8
}

// MinPayloadSize is the size of a message for n nodes without padding.
func MinPayloadSize(n uint32) int {
	return senderIDSize + bitBytes(int(n)) + bitBytes(int(n)*int(n))
}

// Encode builds the payload sent by senderID: the sender, the forward mask
// built from forwardSet, the row-major matrix, then OverheadBits/8 zero bytes
// of padding.
func Encode(senderID uint32, forwardSet []uint32, m *matrix.Matrix) ([]byte, error) {
	n := m.Size()
	if senderID >= n {
		return nil, common.NewProtocolErr(codecComponent, common.IndexOutOfRange, "sender %d, size %d", senderID, n)
	}

	mask := make([]bool, n)
	for _, j := range forwardSet {
		if j >= n {
			return nil, common.NewProtocolErr(codecComponent, common.IndexOutOfRange, "contribution %d, size %d", j, n)
		}
		mask[j] = true
	}

	padding := OverheadBits(NumSignaled(mask)) / 8
	buf := make([]byte, MinPayloadSize(n)+padding)

	binary.BigEndian.PutUint32(buf, senderID)
	off := senderIDSize
	off += packBits(buf[off:], mask)
	packBits(buf[off:], m.Serialize())

	return buf, nil
}

// Decode parses a payload produced by Encode for an n-node run. The returned
// matrix is owned by the sender. Any inconsistency yields a MalformedMessage
// error and no partial result.
func Decode(payload []byte, n uint32) (*Message, error) {
	if n == 0 {
		return nil, common.NewProtocolErr(codecComponent, common.InvalidSize, "size must be positive")
	}

	if len(payload) < MinPayloadSize(n) {
		return nil, malformed("payload of %d bytes, need %d", len(payload), MinPayloadSize(n))
	}

	senderID := binary.BigEndian.Uint32(payload)
	if senderID >= n {
		return nil, malformed("sender %d, size %d", senderID, n)
	}

	off := senderIDSize
	maskBytes := bitBytes(int(n))
	mask, ok := unpackBits(payload[off:off+maskBytes], int(n))
	if !ok {
		return nil, malformed("non-zero padding in forward mask")
	}
	off += maskBytes

	matrixBits := int(n) * int(n)
	flat, ok := unpackBits(payload[off:off+bitBytes(matrixBits)], matrixBits)
	if !ok {
		return nil, malformed("non-zero padding in matrix")
	}
	for i := 0; i < int(n); i++ {
		if !flat[i*int(n)+i] {
			return nil, malformed("diagonal entry %d not set", i)
		}
	}

	m, err := matrix.Deserialize(flat, n, senderID)
	if err != nil {
		return nil, malformed("%v", err)
	}

	return &Message{
		SenderID:    senderID,
		ForwardMask: mask,
		Matrix:      m,
	}, nil
}

func malformed(format string, args ...interface{}) error {
	return common.NewProtocolErr(codecComponent, common.MalformedMessage, format, args...)
}

// packBits writes bs MSB first into dst and returns the number of bytes used.
func packBits(dst []byte, bs []bool) int {
	for i, b := range bs {
		if b {
			dst[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return bitBytes(len(bs))
}

// unpackBits reads nbits MSB first from src. It fails if any of the unused
// low bits of the last byte is set.
func unpackBits(src []byte, nbits int) ([]bool, bool) {
	bs := make([]bool, nbits)
	for i := range bs {
		bs[i] = src[i/8]&(0x80>>uint(i%8)) != 0
	}
	if rem := nbits % 8; rem != 0 {
		if src[len(src)-1]&(0xff>>uint(rem)) != 0 {
			return nil, false
		}
	}
	return bs, true
}
