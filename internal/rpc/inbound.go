package rpc

import (
	"encoding/binary"
	"fmt"

	"github.com/linux-msm/hexagonrpc/internal/aee"
	"github.com/linux-msm/hexagonrpc/internal/idl"
	"github.com/linux-msm/hexagonrpc/internal/iobuf"
	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// Inbound is the validated output geometry of a received reverse call:
// what the dispatcher must allocate before invoking the implementation.
type Inbound struct {
	// NPrimOut is the primary output size in bytes (0 when the method
	// has no inline outputs).
	NPrimOut int
	// OutSizes lists the sequence output buffer sizes in declaration
	// order, computed from the capacities the peer sent inline.
	OutSizes []int
}

// NOutbufs is the total output buffer count the descriptor demands.
func (g *Inbound) NOutbufs() int {
	n := len(g.OutSizes)
	if g.NPrimOut > 0 {
		n++
	}
	return n
}

// inboundCursor reads inline values out of a received primary input.
type inboundCursor struct {
	prim []byte
	off  int
}

func (c *inboundCursor) skip(n int) error {
	if c.off+n > len(c.prim) {
		return fmt.Errorf("primary input too small: need %d bytes, have %d", c.off+n, len(c.prim))
	}
	c.off += n
	return nil
}

func (c *inboundCursor) u32() (uint32, error) {
	if c.off+4 > len(c.prim) {
		return 0, fmt.Errorf("primary input too small: need %d bytes, have %d", c.off+4, len(c.prim))
	}
	v := binary.LittleEndian.Uint32(c.prim[c.off:])
	c.off += 4
	return v, nil
}

// ValidateInbound walks a method descriptor against the scalar
// descriptor and decoded buffers of a received request. It applies the
// same per-kind traversal as the forward counting stage: every input
// sequence must be backed by a buffer matching its inline count, and
// the output buffer total must match the scalar descriptor. On success
// it returns the output geometry the dispatcher allocates from.
//
// Sequence-of-record arguments never appear in the AP-resident
// interfaces; a descriptor using them inbound is answered with
// EUnsupported rather than guessed at.
func ValidateInbound(def *idl.Method, sc uint32, decoded [][]byte) (*Inbound, error) {
	badParm := func(format string, args ...interface{}) error {
		return aee.NewError("DISPATCH", aee.EBadParm, fmt.Sprintf(format, args...))
	}

	cur := &inboundCursor{}
	if len(decoded) > 0 {
		cur.prim = decoded[0]
	}
	if def.Extended() {
		if err := cur.skip(4); err != nil {
			return nil, badParm("extended id missing: %v", err)
		}
	}

	g := &Inbound{}
	j := 1 // next expected input buffer (0 is the primary)

	inSeq := func(d uint32) error {
		count, err := cur.u32()
		if err != nil {
			return badParm("%v", err)
		}
		if j >= len(decoded) {
			return badParm("not enough input buffers: need %d, have %d", j+1, len(decoded))
		}
		if int(count)*int(d) != len(decoded[j]) {
			return badParm("input buffer %d is %d bytes, count %d of size %d needs %d",
				j, len(decoded[j]), count, d, int(count)*int(d))
		}
		j++
		return nil
	}

	outSeq := func(d uint32) error {
		count, err := cur.u32()
		if err != nil {
			return badParm("%v", err)
		}
		g.OutSizes = append(g.OutSizes, int(count)*int(d))
		return nil
	}

	for i, ad := range def.Args {
		var err error
		switch ad.Kind {
		case idl.KindWord, idl.KindBlob:
			err = cur.skip(int(ad.D))
		case idl.KindBlobSeq:
			err = inSeq(ad.D)
		case idl.KindOutBlob:
			g.NPrimOut += int(ad.D)
		case idl.KindOutBlobSeq:
			err = outSeq(ad.D)
		case idl.KindType, idl.KindOutType:
			t, terr := def.InnerType(ad.D)
			if terr != nil {
				return nil, badParm("arg %d: %v", i, terr)
			}
			for _, e := range t.Elems {
				switch {
				case e.Kind == idl.KindBlob && ad.Kind == idl.KindType:
					err = cur.skip(int(e.D))
				case e.Kind == idl.KindBlob:
					g.NPrimOut += int(e.D)
				case ad.Kind == idl.KindType:
					err = inSeq(e.D)
				default:
					err = outSeq(e.D)
				}
				if err != nil {
					break
				}
			}
		case idl.KindTypeSeq, idl.KindOutTypeSeq:
			return nil, aee.NewError("DISPATCH", aee.EUnsupported,
				fmt.Sprintf("arg %d: inbound %s dispatch not supported", i, ad.Kind))
		default:
			return nil, badParm("arg %d: kind %d", i, uint32(ad.Kind))
		}
		if err != nil {
			return nil, fmt.Errorf("arg %d: %w", i, err)
		}
	}

	// A method with no inline inputs has no primary buffer on the wire
	// at all; any sequence input would have consumed count words.
	expectIn := j
	if cur.off == 0 {
		expectIn = 0
	}
	if expectIn != int(uapi.ScalarsInBufs(sc)) {
		return nil, badParm("descriptor needs %d input buffers, scalar says %d", expectIn, uapi.ScalarsInBufs(sc))
	}
	if g.NOutbufs() != int(uapi.ScalarsOutBufs(sc)) {
		return nil, badParm("descriptor needs %d output buffers, scalar says %d",
			g.NOutbufs(), uapi.ScalarsOutBufs(sc))
	}

	return g, nil
}

// AllocOutbufs takes pooled buffers matching the validated geometry:
// the primary output first when present, then one buffer per sequence
// output. The caller releases them with FreeOutbufs after the response
// has been flattened.
func AllocOutbufs(g *Inbound) [][]byte {
	out := make([][]byte, 0, g.NOutbufs())
	if g.NPrimOut > 0 {
		out = append(out, iobuf.GetBuffer(g.NPrimOut))
	}
	for _, size := range g.OutSizes {
		out = append(out, iobuf.GetBuffer(size))
	}
	return out
}

// FreeOutbufs returns dispatch output buffers to the pool.
func FreeOutbufs(bufs [][]byte) {
	for _, b := range bufs {
		iobuf.PutBuffer(b)
	}
}
