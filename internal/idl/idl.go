// Package idl holds the interp4 interface description meta-model.
//
// A method is described as an ordered argument list. Each argument has a
// kind tag and one unsigned payload whose meaning depends on the kind:
// an inline word size, a blob byte count, a sequence element size, or an
// index into the method's inner-type table. Inner types are single-level
// records of blobs and byte sequences; deeper nesting is rejected.
package idl

import "fmt"

// Kind tags an argument in a method definition.
type Kind uint32

const (
	// KindWord is a literal uint32 or uint64 in the primary input
	KindWord Kind = 0
	// KindBlob is a fixed-size record in the primary input
	KindBlob Kind = 1
	// KindType is a nested record, with D indexing the inner-type table
	KindType Kind = 2
	// KindBlobSeq is a variable-length byte sequence: count inline,
	// payload in its own input buffer. D is the element size.
	KindBlobSeq Kind = 3
	// KindTypeSeq is a variable-length sequence of nested records
	KindTypeSeq Kind = 4

	// Kind 5 is reserved for sequences of records that themselves
	// contain sequences of records. No public IDL uses it and the
	// engine rejects it outright.
	kindReserved5 Kind = 5

	// Output counterparts (top-level use only)
	KindOutBlob    Kind = 6
	KindOutType    Kind = 7
	KindOutBlobSeq Kind = 8
	KindOutTypeSeq Kind = 9
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindBlob:
		return "blob"
	case KindType:
		return "type"
	case KindBlobSeq:
		return "blob_seq"
	case KindTypeSeq:
		return "type_seq"
	case KindOutBlob:
		return "out_blob"
	case KindOutType:
		return "out_type"
	case KindOutBlobSeq:
		return "out_blob_seq"
	case KindOutTypeSeq:
		return "out_type_seq"
	default:
		return fmt.Sprintf("kind(%d)", uint32(k))
	}
}

// IsOutput reports whether the argument carries data from the DSP back
// to the caller.
func (k Kind) IsOutput() bool {
	return k >= KindOutBlob && k <= KindOutTypeSeq
}

// ArgDef is one element of a method's argument grammar.
type ArgDef struct {
	// Kind selects the argument grammar variant
	Kind Kind
	// D is the kind-dependent payload: word size, blob byte count,
	// sequence element size, or inner-type index
	D uint32
}

// InnerType is a single-level record layout. Only blob and blob-sequence
// elements are allowed; nesting inner types is invalid by construction.
type InnerType struct {
	Elems []ArgDef
}

// Method is an immutable method descriptor. Descriptors are shared
// between calls; all per-call state lives in the invocation engine.
type Method struct {
	// MsgID is the 32-bit message id. Ids above 30 do not fit the
	// 5-bit method slot and use the extended-id protocol.
	MsgID      uint32
	Args       []ArgDef
	InnerTypes []InnerType
}

// Extended reports whether the method id needs the extended-id word at
// the head of the primary input.
func (m *Method) Extended() bool {
	return m.MsgID > 30
}

// InnerType resolves an inner-type index from an argument payload.
func (m *Method) InnerType(idx uint32) (*InnerType, error) {
	if int(idx) >= len(m.InnerTypes) {
		return nil, fmt.Errorf("inner type index %d out of range (%d defined)", idx, len(m.InnerTypes))
	}
	return &m.InnerTypes[idx], nil
}

// Validate checks the descriptor shape: known kinds, word sizes of 4 or
// 8, resolvable inner-type indices, and single-level inner types. The
// engine validates descriptors once per call before any marshalling.
func (m *Method) Validate() error {
	for i, a := range m.Args {
		switch a.Kind {
		case KindWord:
			if a.D != 4 && a.D != 8 {
				return fmt.Errorf("arg %d: word size %d (must be 4 or 8)", i, a.D)
			}
		case KindBlob, KindBlobSeq, KindOutBlob, KindOutBlobSeq:
			// Any byte count is legal, including zero.
		case KindType, KindTypeSeq, KindOutType, KindOutTypeSeq:
			t, err := m.InnerType(a.D)
			if err != nil {
				return fmt.Errorf("arg %d: %w", i, err)
			}
			if err := t.validate(); err != nil {
				return fmt.Errorf("arg %d: %w", i, err)
			}
		case kindReserved5:
			return fmt.Errorf("arg %d: reserved kind 5", i)
		default:
			return fmt.Errorf("arg %d: unknown kind %d", i, uint32(a.Kind))
		}
	}
	return nil
}

func (t *InnerType) validate() error {
	for i, e := range t.Elems {
		switch e.Kind {
		case KindBlob, KindBlobSeq:
		default:
			return fmt.Errorf("inner elem %d: kind %s not allowed in inner type", i, e.Kind)
		}
	}
	return nil
}

// PrimSizes returns the fixed per-instance primary-input and
// primary-output byte counts of an inner type. For an input record the
// blob bytes and sequence count words all land in the packed input
// payload; for an output record the blob bytes land in the packed output
// payload while the sequence count words still land in the input side.
func (t *InnerType) PrimSizes(out bool) (primIn, primOut uint32) {
	for _, e := range t.Elems {
		switch e.Kind {
		case KindBlob:
			if out {
				primOut += e.D
			} else {
				primIn += e.D
			}
		case KindBlobSeq:
			primIn += 4
		}
	}
	return primIn, primOut
}

// SeqCount returns the number of blob-sequence elements in the record,
// each of which occupies its own I/O buffer slot per instance.
func (t *InnerType) SeqCount() int {
	n := 0
	for _, e := range t.Elems {
		if e.Kind == KindBlobSeq {
			n++
		}
	}
	return n
}
