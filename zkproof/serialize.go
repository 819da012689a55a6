package zkproof

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/yarongvili1/latticezk/matrix"
)

// Wire format of a proof: r, v, l, n as little-endian int32, B as a
// little-endian IEEE-754 double, then the matrices A, T, W, C, Z as raw
// little-endian elements in their fixed storage orders (A, T row-major;
// W, C, Z column-major). Storage orders are not transmitted.

const proofHeaderSize = 4*4 + 8

func elemSize[E matrix.Elem]() int {
	switch any(E(0)).(type) {
	case int32:
		return 4
	default:
		return 8
	}
}

func appendElems[E matrix.Elem](dst []byte, data []E) []byte {
	switch d := any(data).(type) {
	case []int32:
		for _, v := range d {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
	case []int64:
		for _, v := range d {
			dst = binary.LittleEndian.AppendUint64(dst, uint64(v))
		}
	}
	return dst
}

func decodeElems[E matrix.Elem](src []byte, data []E) {
	switch d := any(data).(type) {
	case []int32:
		for i := range d {
			d[i] = int32(binary.LittleEndian.Uint32(src[4*i:]))
		}
	case []int64:
		for i := range d {
			d[i] = int64(binary.LittleEndian.Uint64(src[8*i:]))
		}
	}
}

// WireSize returns the serialized size of the proof in bytes.
func (p *Proof[E]) WireSize() int {
	cells := p.MatA.NumCells() + p.MatT.NumCells() + p.MatW.NumCells() +
		p.MatC.NumCells() + p.MatZ.NumCells()
	return proofHeaderSize + cells*elemSize[E]()
}

// MarshalBinary serializes the proof into the wire format.
func (p *Proof[E]) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, p.WireSize())
	out = binary.LittleEndian.AppendUint32(out, uint32(p.R))
	out = binary.LittleEndian.AppendUint32(out, uint32(p.V))
	out = binary.LittleEndian.AppendUint32(out, uint32(p.L))
	out = binary.LittleEndian.AppendUint32(out, uint32(p.N))
	out = binary.LittleEndian.AppendUint64(out, math.Float64bits(p.B))
	out = appendElems(out, p.MatA.Data())
	out = appendElems(out, p.MatT.Data())
	out = appendElems(out, p.MatW.Data())
	out = appendElems(out, p.MatC.Data())
	out = appendElems(out, p.MatZ.Data())
	return out, nil
}

// UnmarshalBinary parses the wire format, allocating the matrices for
// the transmitted dimensions.
func (p *Proof[E]) UnmarshalBinary(data []byte) error {
	if len(data) < proofHeaderSize {
		return fmt.Errorf("zkproof: proof too short: %d bytes", len(data))
	}
	r := matrix.Dim(binary.LittleEndian.Uint32(data[0:]))
	v := matrix.Dim(binary.LittleEndian.Uint32(data[4:]))
	l := matrix.Dim(binary.LittleEndian.Uint32(data[8:]))
	n := matrix.Dim(binary.LittleEndian.Uint32(data[12:]))
	if r < 0 || v < 0 || l < 0 || n < 0 {
		return fmt.Errorf("zkproof: negative proof dimension")
	}
	b := math.Float64frombits(binary.LittleEndian.Uint64(data[16:]))
	cells := int64(r)*int64(v) + int64(r)*int64(l) + int64(r)*int64(n) +
		int64(l)*int64(n) + int64(v)*int64(n)
	if want := int64(proofHeaderSize) + cells*int64(elemSize[E]()); int64(len(data)) != want {
		return fmt.Errorf("zkproof: proof size %d, want %d", len(data), want)
	}
	q := NewProof[E](r, v, l, n, b)
	off := proofHeaderSize
	es := elemSize[E]()
	for _, m := range []struct{ data []E }{
		{q.MatA.Data()}, {q.MatT.Data()}, {q.MatW.Data()}, {q.MatC.Data()}, {q.MatZ.Data()},
	} {
		nb := len(m.data) * es
		decodeElems(data[off:off+nb], m.data)
		off += nb
	}
	*p = *q
	return nil
}
