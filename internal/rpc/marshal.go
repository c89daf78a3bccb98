package rpc

import (
	"encoding/binary"
	"fmt"

	"github.com/linux-msm/hexagonrpc/internal/aee"
	"github.com/linux-msm/hexagonrpc/internal/constants"
	"github.com/linux-msm/hexagonrpc/internal/idl"
	"github.com/linux-msm/hexagonrpc/internal/interfaces"
	"github.com/linux-msm/hexagonrpc/internal/iobuf"
	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// bufCount accumulates the buffer geometry of one invocation during
// the counting stage.
type bufCount struct {
	nIn      int
	nOut     int
	nPrimIn  int
	nPrimOut int
}

// call carries the per-invocation state threaded through the stages.
// Descriptors are shared and immutable; everything here is call-local.
type call struct {
	def      *idl.Method
	count    bufCount
	inSlots  []uapi.Slot
	outSlots []uapi.Slot
	allocs   [][]byte
	released bool
}

// alloc takes a pooled buffer and records it for the release stage.
func (c *call) alloc(size int) []byte {
	b := iobuf.GetBuffer(size)
	c.allocs = append(c.allocs, b)
	return b
}

// release returns every allocation of this call to the pool. It runs on
// every exit path and is idempotent, so each buffer goes back exactly
// once.
func (c *call) release() {
	if c.released {
		return
	}
	c.released = true
	for _, b := range c.allocs {
		iobuf.PutBuffer(b)
	}
	c.allocs = nil
}

// countOps accumulates primary byte counts and buffer slot counts.
func countOps(cnt *bufCount) *stageOps {
	return &stageOps{
		primIn:  func(size int, _ []byte) { cnt.nPrimIn += size },
		primOut: func(size int, _ []byte) { cnt.nPrimOut += size },
		inbuf:   func(int, []byte) { cnt.nIn++ },
		outbuf:  func(int, []byte) { cnt.nOut++ },
		typeSeqIn: func(t *idl.InnerType, recs RecordSeq) error {
			if len(recs) == 0 {
				return nil
			}
			// One packed payload buffer for the sequence, plus one
			// input buffer per sequence field per instance.
			cnt.nIn++
			cnt.nIn += t.SeqCount() * len(recs)
			return nil
		},
		typeSeqOut: func(t *idl.InnerType, recs OutRecordSeq) error {
			if len(recs) == 0 {
				return nil
			}
			primIn, primOut := t.PrimSizes(true)
			if primIn > 0 {
				cnt.nIn++
			}
			if primOut > 0 {
				cnt.nOut++
			}
			cnt.nOut += t.SeqCount() * len(recs)
			return nil
		},
	}
}

// allocOps populates the invocation vector. Caller-provided payloads
// are pointed at directly; sequence-of-record payloads are taken from
// the pool and recorded on the call.
func allocOps(c *call) *stageOps {
	var ops *stageOps
	ops = &stageOps{
		inbuf: func(size int, src []byte) {
			c.inSlots = append(c.inSlots, uapi.PlainSlot(src[:size]))
		},
		outbuf: func(size int, dst []byte) {
			c.outSlots = append(c.outSlots, uapi.PlainSlot(dst[:size]))
		},
		typeSeqIn: func(t *idl.InnerType, recs RecordSeq) error {
			if len(recs) == 0 {
				return nil
			}
			primIn, _ := t.PrimSizes(false)
			c.inSlots = append(c.inSlots, uapi.PlainSlot(c.alloc(int(primIn)*len(recs))))
			for _, rec := range recs {
				if err := walkInnerIn(t, rec, ops); err != nil {
					return err
				}
			}
			return nil
		},
		typeSeqOut: func(t *idl.InnerType, recs OutRecordSeq) error {
			if len(recs) == 0 {
				return nil
			}
			primIn, primOut := t.PrimSizes(true)
			if primIn > 0 {
				c.inSlots = append(c.inSlots, uapi.PlainSlot(c.alloc(int(primIn)*len(recs))))
			}
			if primOut > 0 {
				c.outSlots = append(c.outSlots, uapi.PlainSlot(c.alloc(int(primOut)*len(recs))))
			}
			for _, rec := range recs {
				if err := walkInnerOut(t, rec, ops); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return ops
}

// encodeState tracks the primary-input cursor and the input slot index
// while values are marshalled.
type encodeState struct {
	c     *call
	prim  []byte
	off   int
	inIdx int
}

func (st *encodeState) put(size int, src []byte) {
	copy(st.prim[st.off:], src[:size])
	st.off += size
}

// packedOps marshals inner-type instances into a packed payload buffer
// while sharing the outer slot cursor.
func (st *encodeState) packedOps(payload []byte) *stageOps {
	inner := &encodeState{c: st.c, prim: payload}
	return &stageOps{
		primIn: inner.put,
		inbuf:  func(int, []byte) { st.inIdx++ },
	}
}

func encodeOps(st *encodeState) *stageOps {
	return &stageOps{
		primIn: st.put,
		inbuf:  func(int, []byte) { st.inIdx++ },
		typeSeqIn: func(t *idl.InnerType, recs RecordSeq) error {
			if len(recs) == 0 {
				return nil
			}
			payload := st.c.inSlots[st.inIdx].Buf
			st.inIdx++
			ops := st.packedOps(payload)
			for _, rec := range recs {
				if err := walkInnerIn(t, rec, ops); err != nil {
					return err
				}
			}
			return nil
		},
		typeSeqOut: func(t *idl.InnerType, recs OutRecordSeq) error {
			if len(recs) == 0 {
				return nil
			}
			primIn, _ := t.PrimSizes(true)
			if primIn == 0 {
				return nil
			}
			// The inner sequence capacities land in their own packed
			// input payload.
			payload := st.c.inSlots[st.inIdx].Buf
			st.inIdx++
			ops := st.packedOps(payload)
			for _, rec := range recs {
				if err := walkInnerOut(t, rec, ops); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// decodeState tracks the primary-output cursor and the output slot
// index while results are copied back.
type decodeState struct {
	c      *call
	prim   []byte
	off    int
	outIdx int
}

func (st *decodeState) take(size int, dst []byte) {
	copy(dst[:size], st.prim[st.off:])
	st.off += size
}

func decodeOps(st *decodeState) *stageOps {
	return &stageOps{
		primOut: st.take,
		// Sequence outputs were filled in place by the kernel; only
		// the slot cursor moves.
		outbuf: func(int, []byte) { st.outIdx++ },
		typeSeqOut: func(t *idl.InnerType, recs OutRecordSeq) error {
			if len(recs) == 0 {
				return nil
			}
			_, primOut := t.PrimSizes(true)
			var inner *decodeState
			if primOut > 0 {
				inner = &decodeState{c: st.c, prim: st.c.outSlots[st.outIdx].Buf}
				st.outIdx++
			}
			ops := &stageOps{
				outbuf: func(int, []byte) { st.outIdx++ },
			}
			if inner != nil {
				ops.primOut = inner.take
			}
			for _, rec := range recs {
				if err := walkInnerOut(t, rec, ops); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// Invoke marshals args per the method descriptor, submits one kernel
// invocation on the given handle, and copies results back into the
// caller's output destinations. Arguments follow the descriptor's
// declaration order with the package's Arg conventions.
func Invoke(t interfaces.Transport, def *idl.Method, handle uint32, args ...Arg) error {
	if err := def.Validate(); err != nil {
		return aee.NewMethodError("INVOKE", handle, int64(def.MsgID), aee.EBadParm, err.Error())
	}

	c := &call{def: def}
	defer c.release()

	// Count.
	cnt := &c.count
	if def.Extended() {
		cnt.nPrimIn += 4
	}
	if err := walkArgs(def, args, countOps(cnt)); err != nil {
		return aee.NewMethodError("INVOKE", handle, int64(def.MsgID), aee.EBadParm, err.Error())
	}
	if cnt.nPrimIn > 0 {
		cnt.nIn++
	}
	if cnt.nPrimOut > 0 {
		cnt.nOut++
	}
	if cnt.nIn > 255 || cnt.nOut > 255 {
		return aee.NewMethodError("INVOKE", handle, int64(def.MsgID), aee.EBadParm,
			fmt.Sprintf("buffer counts %d/%d exceed the descriptor fields", cnt.nIn, cnt.nOut))
	}

	// Allocate.
	var primIn, primOut []byte
	if cnt.nPrimIn > 0 {
		primIn = c.alloc(cnt.nPrimIn)
		c.inSlots = append(c.inSlots, uapi.PlainSlot(primIn))
	}
	if cnt.nPrimOut > 0 {
		primOut = c.alloc(cnt.nPrimOut)
		c.outSlots = append(c.outSlots, uapi.PlainSlot(primOut))
	}
	if err := walkArgs(def, args, allocOps(c)); err != nil {
		return aee.NewMethodError("INVOKE", handle, int64(def.MsgID), aee.EBadParm, err.Error())
	}
	if len(c.inSlots) != cnt.nIn || len(c.outSlots) != cnt.nOut {
		return aee.NewMethodError("INVOKE", handle, int64(def.MsgID), aee.EFailed,
			fmt.Sprintf("slot mismatch: counted %d/%d, allocated %d/%d",
				cnt.nIn, cnt.nOut, len(c.inSlots), len(c.outSlots)))
	}

	// Encode.
	enc := &encodeState{c: c, prim: primIn}
	if cnt.nPrimIn > 0 {
		enc.inIdx = 1
	}
	if def.Extended() {
		binary.LittleEndian.PutUint32(primIn[0:4], def.MsgID)
		enc.off = 4
	}
	if err := walkArgs(def, args, encodeOps(enc)); err != nil {
		return aee.NewMethodError("INVOKE", handle, int64(def.MsgID), aee.EBadParm, err.Error())
	}

	// Submit.
	method := def.MsgID
	if def.Extended() {
		method = constants.ExtendedMethodSlot
	}
	sc := uapi.ScalarsMake(method, uint8(cnt.nIn), uint8(cnt.nOut))
	slots := make([]uapi.Slot, 0, cnt.nIn+cnt.nOut)
	slots = append(slots, c.inSlots...)
	slots = append(slots, c.outSlots...)
	if err := t.Invoke(handle, sc, slots); err != nil {
		return aee.WrapError("INVOKE", err)
	}

	// Decode.
	dec := &decodeState{c: c, prim: primOut}
	if cnt.nPrimOut > 0 {
		dec.outIdx = 1
	}
	if err := walkArgs(def, args, decodeOps(dec)); err != nil {
		return aee.NewMethodError("INVOKE", handle, int64(def.MsgID), aee.EBadParm, err.Error())
	}

	return nil
}
