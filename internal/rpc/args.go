// Package rpc implements the FastRPC invocation engine: the five-pass
// forward marshaller over interp4 method descriptors and the descriptor
// walks the reverse tunnel shares with it.
//
// The invoking function has 5 stages that interpret the method
// definition: count the I/O buffers in need of marshalling, populate
// the invocation vector (allocating when needed), marshal the argument
// values into the primary input buffer, demarshal the primary output
// buffer back into the caller's destinations, and release anything the
// allocation stage produced. All stages interpret the arguments through
// the exact same walk and differ only in the callback set applied at
// each argument kind, so they cannot disagree about which argument
// contributes which buffer.
package rpc

// Arg is one call-site argument. The vector passed to Invoke must match
// the method descriptor's argument list element for element; the walk
// rejects any mismatch before marshalling starts.
type Arg interface {
	isArg()
}

// Word32 is a literal uint32 for a word argument of size 4.
type Word32 uint32

// Word64 is a literal uint64 for a word argument of size 8.
type Word64 uint64

// Blob is a fixed-size inline record. Its length must equal the
// descriptor's byte count.
type Blob []byte

// Seq is a variable-length input sequence: the element count goes into
// the primary input, the payload into its own input buffer. Data must
// hold exactly Count elements; nil is fine when Count is 0.
type Seq struct {
	Count uint32
	Data  []byte
}

// Record is one instance of an inner type used as an inline nested
// record. Fields follow the inner-type element list: Blob for blobs,
// Seq for byte sequences.
type Record []Arg

// RecordSeq is a variable-length sequence of inner-type instances. The
// count is the slice length; instance payloads are packed into one
// engine-allocated input buffer.
type RecordSeq []Record

// OutBlob is the destination for a fixed-size output record copied out
// of the primary output. Its length must equal the descriptor's byte
// count.
type OutBlob []byte

// OutSeq is the destination for a variable-length output sequence. Max
// is the element capacity the peer may fill; Dst must hold Max elements
// and receives the payload directly.
type OutSeq struct {
	Max uint32
	Dst []byte
}

// OutRecord is one output instance of an inner type: OutBlob for blobs,
// OutSeq for byte sequences.
type OutRecord []Arg

// OutRecordSeq is a variable-length sequence of output inner-type
// instances.
type OutRecordSeq []OutRecord

func (Word32) isArg()       {}
func (Word64) isArg()       {}
func (Blob) isArg()         {}
func (Seq) isArg()          {}
func (Record) isArg()       {}
func (RecordSeq) isArg()    {}
func (OutBlob) isArg()      {}
func (OutSeq) isArg()       {}
func (OutRecord) isArg()    {}
func (OutRecordSeq) isArg() {}
