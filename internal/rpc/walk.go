package rpc

import (
	"encoding/binary"
	"fmt"

	"github.com/linux-msm/hexagonrpc/internal/idl"
)

// stageOps is the callback set one marshalling stage applies at each
// argument kind. The walk itself is stage-agnostic; a nil callback is a
// no-op for that kind.
type stageOps struct {
	primIn     func(size int, src []byte)
	primOut    func(size int, dst []byte)
	inbuf      func(size int, src []byte)
	outbuf     func(size int, dst []byte)
	typeSeqIn  func(t *idl.InnerType, recs RecordSeq) error
	typeSeqOut func(t *idl.InnerType, recs OutRecordSeq) error
}

func (ops *stageOps) emitPrimIn(size int, src []byte) {
	if ops.primIn != nil {
		ops.primIn(size, src)
	}
}

func (ops *stageOps) emitPrimOut(size int, dst []byte) {
	if ops.primOut != nil {
		ops.primOut(size, dst)
	}
}

func (ops *stageOps) emitInbuf(size int, src []byte) {
	if ops.inbuf != nil {
		ops.inbuf(size, src)
	}
}

func (ops *stageOps) emitOutbuf(size int, dst []byte) {
	if ops.outbuf != nil {
		ops.outbuf(size, dst)
	}
}

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// walkArgs traverses the descriptor and the argument vector in
// lockstep, applying ops at each argument. Every stage of a call runs
// this same traversal.
func walkArgs(def *idl.Method, args []Arg, ops *stageOps) error {
	if len(args) != len(def.Args) {
		return fmt.Errorf("argument count %d does not match descriptor (%d)", len(args), len(def.Args))
	}

	for i, ad := range def.Args {
		switch ad.Kind {
		case idl.KindWord:
			switch ad.D {
			case 4:
				w, ok := args[i].(Word32)
				if !ok {
					return argTypeError(i, ad, args[i])
				}
				ops.emitPrimIn(4, le32(uint32(w)))
			case 8:
				w, ok := args[i].(Word64)
				if !ok {
					return argTypeError(i, ad, args[i])
				}
				ops.emitPrimIn(8, le64(uint64(w)))
			default:
				return fmt.Errorf("arg %d: word size %d", i, ad.D)
			}

		case idl.KindBlob:
			b, ok := args[i].(Blob)
			if !ok || len(b) != int(ad.D) {
				return argTypeError(i, ad, args[i])
			}
			ops.emitPrimIn(int(ad.D), b)

		case idl.KindType:
			rec, ok := args[i].(Record)
			if !ok {
				return argTypeError(i, ad, args[i])
			}
			t, err := def.InnerType(ad.D)
			if err != nil {
				return err
			}
			if err := walkInnerIn(t, rec, ops); err != nil {
				return fmt.Errorf("arg %d: %w", i, err)
			}

		case idl.KindBlobSeq:
			s, ok := args[i].(Seq)
			if !ok {
				return argTypeError(i, ad, args[i])
			}
			size := int(s.Count) * int(ad.D)
			if len(s.Data) != size {
				return fmt.Errorf("arg %d: sequence payload is %d bytes, count %d of size %d needs %d",
					i, len(s.Data), s.Count, ad.D, size)
			}
			ops.emitPrimIn(4, le32(s.Count))
			ops.emitInbuf(size, s.Data)

		case idl.KindTypeSeq:
			recs, ok := args[i].(RecordSeq)
			if !ok {
				return argTypeError(i, ad, args[i])
			}
			t, err := def.InnerType(ad.D)
			if err != nil {
				return err
			}
			ops.emitPrimIn(4, le32(uint32(len(recs))))
			if ops.typeSeqIn != nil {
				if err := ops.typeSeqIn(t, recs); err != nil {
					return fmt.Errorf("arg %d: %w", i, err)
				}
			}

		case idl.KindOutBlob:
			d, ok := args[i].(OutBlob)
			if !ok || len(d) != int(ad.D) {
				return argTypeError(i, ad, args[i])
			}
			ops.emitPrimOut(int(ad.D), d)

		case idl.KindOutType:
			rec, ok := args[i].(OutRecord)
			if !ok {
				return argTypeError(i, ad, args[i])
			}
			t, err := def.InnerType(ad.D)
			if err != nil {
				return err
			}
			if err := walkInnerOut(t, rec, ops); err != nil {
				return fmt.Errorf("arg %d: %w", i, err)
			}

		case idl.KindOutBlobSeq:
			s, ok := args[i].(OutSeq)
			if !ok {
				return argTypeError(i, ad, args[i])
			}
			size := int(s.Max) * int(ad.D)
			if len(s.Dst) != size {
				return fmt.Errorf("arg %d: output destination is %d bytes, max %d of size %d needs %d",
					i, len(s.Dst), s.Max, ad.D, size)
			}
			ops.emitPrimIn(4, le32(s.Max))
			ops.emitOutbuf(size, s.Dst)

		case idl.KindOutTypeSeq:
			recs, ok := args[i].(OutRecordSeq)
			if !ok {
				return argTypeError(i, ad, args[i])
			}
			t, err := def.InnerType(ad.D)
			if err != nil {
				return err
			}
			ops.emitPrimIn(4, le32(uint32(len(recs))))
			if ops.typeSeqOut != nil {
				if err := ops.typeSeqOut(t, recs); err != nil {
					return fmt.Errorf("arg %d: %w", i, err)
				}
			}

		default:
			return fmt.Errorf("arg %d: kind %d", i, uint32(ad.Kind))
		}
	}

	return nil
}

// walkInnerIn traverses one input instance of an inner type. Inner
// types hold only blobs and byte sequences.
func walkInnerIn(t *idl.InnerType, rec Record, ops *stageOps) error {
	if len(rec) != len(t.Elems) {
		return fmt.Errorf("record has %d fields, inner type has %d", len(rec), len(t.Elems))
	}

	for i, e := range t.Elems {
		switch e.Kind {
		case idl.KindBlob:
			b, ok := rec[i].(Blob)
			if !ok || len(b) != int(e.D) {
				return argTypeError(i, e, rec[i])
			}
			ops.emitPrimIn(int(e.D), b)

		case idl.KindBlobSeq:
			s, ok := rec[i].(Seq)
			if !ok {
				return argTypeError(i, e, rec[i])
			}
			size := int(s.Count) * int(e.D)
			if len(s.Data) != size {
				return fmt.Errorf("field %d: sequence payload is %d bytes, needs %d", i, len(s.Data), size)
			}
			ops.emitPrimIn(4, le32(s.Count))
			ops.emitInbuf(size, s.Data)

		default:
			return fmt.Errorf("field %d: kind %s in inner type", i, e.Kind)
		}
	}

	return nil
}

// walkInnerOut traverses one output instance of an inner type. Blob
// fields come back through the packed output payload; sequence counts
// still travel on the input side.
func walkInnerOut(t *idl.InnerType, rec OutRecord, ops *stageOps) error {
	if len(rec) != len(t.Elems) {
		return fmt.Errorf("record has %d fields, inner type has %d", len(rec), len(t.Elems))
	}

	for i, e := range t.Elems {
		switch e.Kind {
		case idl.KindBlob:
			d, ok := rec[i].(OutBlob)
			if !ok || len(d) != int(e.D) {
				return argTypeError(i, e, rec[i])
			}
			ops.emitPrimOut(int(e.D), d)

		case idl.KindBlobSeq:
			s, ok := rec[i].(OutSeq)
			if !ok {
				return argTypeError(i, e, rec[i])
			}
			size := int(s.Max) * int(e.D)
			if len(s.Dst) != size {
				return fmt.Errorf("field %d: output destination is %d bytes, needs %d", i, len(s.Dst), size)
			}
			ops.emitPrimIn(4, le32(s.Max))
			ops.emitOutbuf(size, s.Dst)

		default:
			return fmt.Errorf("field %d: kind %s in inner type", i, e.Kind)
		}
	}

	return nil
}

func argTypeError(i int, def idl.ArgDef, got Arg) error {
	return fmt.Errorf("arg %d: %T does not satisfy %s(%d)", i, got, def.Kind, def.D)
}
