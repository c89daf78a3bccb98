// Package iobuf implements the flat buffer stream exchanged with the
// reverse tunnel: a sequence of [u32 length][payload] records packed
// into one contiguous buffer, and the incremental decoder that splits
// an incoming stream back into individual buffers.
package iobuf

import (
	"encoding/binary"
	"fmt"
)

// EncodedSize returns the flattened size of a buffer vector:
// sum(4 + len) over all entries.
func EncodedSize(bufs [][]byte) int {
	total := 0
	for _, b := range bufs {
		total += 4 + len(b)
	}
	return total
}

// Encode flattens a buffer vector into dst, which must be at least
// EncodedSize(bufs) long. It returns the number of bytes written.
func Encode(bufs [][]byte, dst []byte) int {
	off := 0
	for _, b := range bufs {
		binary.LittleEndian.PutUint32(dst[off:], uint32(len(b)))
		off += 4
		off += copy(dst[off:], b)
	}
	return off
}

// EncodeAlloc flattens a buffer vector into a freshly allocated buffer.
func EncodeAlloc(bufs [][]byte) []byte {
	dst := make([]byte, EncodedSize(bufs))
	Encode(bufs, dst)
	return dst
}

type decodeState int

const (
	// expectLength needs the 4 header bytes of the next record
	expectLength decodeState = iota
	// expectPayload needs the remaining payload bytes of the record
	expectPayload
	// done has consumed the declared number of records
	done
)

// Decoder consumes a flat buffer stream in arbitrary chunks and
// reassembles the declared number of buffers. Feed may be called any
// number of times; Finish returns the decoded vector once complete.
type Decoder struct {
	state   decodeState
	header  [4]byte
	nHeader int
	need    uint32
	current []byte
	bufs    [][]byte
	want    int
}

// NewDecoder returns a decoder expecting want buffers. A zero count is
// terminal immediately.
func NewDecoder(want int) *Decoder {
	d := &Decoder{want: want}
	if want == 0 {
		d.state = done
	}
	return d
}

// Feed consumes the next chunk of the stream. Bytes past the final
// declared buffer are an error.
func (d *Decoder) Feed(p []byte) error {
	for len(p) > 0 {
		switch d.state {
		case expectLength:
			n := copy(d.header[d.nHeader:], p)
			d.nHeader += n
			p = p[n:]
			if d.nHeader < 4 {
				continue
			}
			d.need = binary.LittleEndian.Uint32(d.header[:])
			d.current = make([]byte, 0, d.need)
			d.nHeader = 0
			if d.need == 0 {
				d.finishBuffer()
			} else {
				d.state = expectPayload
			}
		case expectPayload:
			take := int(d.need) - len(d.current)
			if take > len(p) {
				take = len(p)
			}
			d.current = append(d.current, p[:take]...)
			p = p[take:]
			if len(d.current) == int(d.need) {
				d.finishBuffer()
			}
		case done:
			return fmt.Errorf("iobuf: %d trailing bytes after %d buffers", len(p), d.want)
		}
	}
	return nil
}

func (d *Decoder) finishBuffer() {
	d.bufs = append(d.bufs, d.current)
	d.current = nil
	if len(d.bufs) == d.want {
		d.state = done
	} else {
		d.state = expectLength
	}
}

// Complete reports whether all declared buffers have been decoded.
func (d *Decoder) Complete() bool {
	return d.state == done
}

// Finish returns the decoded buffer vector. It fails if the stream
// stopped mid-record or short of the declared count.
func (d *Decoder) Finish() ([][]byte, error) {
	if !d.Complete() {
		return nil, fmt.Errorf("iobuf: incomplete stream: have %d of %d buffers", len(d.bufs), d.want)
	}
	return d.bufs, nil
}
