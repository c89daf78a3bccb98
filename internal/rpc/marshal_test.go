package rpc

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linux-msm/hexagonrpc/internal/aee"
	"github.com/linux-msm/hexagonrpc/internal/idl"
	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// testTransport verifies the submitted invocation against golden wire
// data and writes scripted output payloads back, the way the original
// test suite interposed the invoke ioctl.
type testTransport struct {
	t          *testing.T
	wantHandle uint32
	wantSc     uint32
	wantIn     [][]byte
	out        [][]byte
	err        error
	calls      int
}

func (tt *testTransport) Invoke(handle, sc uint32, args []uapi.Slot) error {
	tt.calls++
	if tt.err != nil {
		return tt.err
	}

	require.Equal(tt.t, tt.wantHandle, handle, "handle")
	require.Equal(tt.t, tt.wantSc, sc, "scalar descriptor")

	nIn := int(uapi.ScalarsInBufs(sc))
	nOut := int(uapi.ScalarsOutBufs(sc))
	require.Len(tt.t, args, nIn+nOut, "buffer vector length")

	for i, a := range args {
		require.EqualValues(tt.t, -1, a.Fd, "buffer %d fd", i)
		require.Zero(tt.t, a.Attr, "buffer %d attr", i)
	}

	if tt.wantIn != nil {
		require.Len(tt.t, tt.wantIn, nIn)
		for i, want := range tt.wantIn {
			assert.Equal(tt.t, want, append([]byte{}, args[i].Buf...), "input buffer %d", i)
		}
	}

	for i, payload := range tt.out {
		require.LessOrEqual(tt.t, len(payload), len(args[nIn+i].Buf), "output %d fits", i)
		copy(args[nIn+i].Buf, payload)
	}

	return nil
}

// No-argument call: empty scalar descriptor and no buffer vector.
func TestInvokeNoArgs(t *testing.T) {
	def := &idl.Method{MsgID: 0}
	tt := &testTransport{
		t:          t,
		wantHandle: 0,
		wantSc:     uapi.ScalarsMake(0, 0, 0),
		wantIn:     [][]byte{},
	}

	require.NoError(t, Invoke(tt, def, 0))
	assert.Equal(t, 1, tt.calls)
}

// Mixed scalars and sequences: words and sequence counts interleave in
// the primary input in declaration order.
func TestInvokeScalarArgs(t *testing.T) {
	def := &idl.Method{
		MsgID: 0,
		Args: []idl.ArgDef{
			{Kind: idl.KindWord, D: 4},
			{Kind: idl.KindBlobSeq, D: 1},
			{Kind: idl.KindBlobSeq, D: 1},
			{Kind: idl.KindWord, D: 8},
		},
	}

	tt := &testTransport{
		t:      t,
		wantSc: uapi.ScalarsMake(0, 3, 0),
		wantIn: [][]byte{
			{
				0x67, 0x45, 0x23, 0x01,
				0x02, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
				0x10, 0x32, 0x54, 0x76, 0x98, 0xba, 0xdc, 0xfe,
			},
			[]byte("hi"),
			{},
		},
	}

	require.NoError(t, Invoke(tt, def, 0,
		Word32(0x01234567),
		Seq{Count: 2, Data: []byte("hi")},
		Seq{Count: 0, Data: nil},
		Word64(0xFEDCBA9876543210),
	))
}

// Output path: capacities travel in the primary input; the kernel fills
// the primary output and the sequence destinations in place.
func TestInvokeOutputArgs(t *testing.T) {
	def := &idl.Method{
		MsgID: 1,
		Args: []idl.ArgDef{
			{Kind: idl.KindOutBlob, D: 4},
			{Kind: idl.KindOutBlobSeq, D: 1},
			{Kind: idl.KindOutBlobSeq, D: 1},
		},
	}

	tt := &testTransport{
		t:      t,
		wantSc: uapi.ScalarsMake(1, 1, 3),
		wantIn: [][]byte{
			{
				0x02, 0x00, 0x00, 0x00,
				0x05, 0x00, 0x00, 0x00,
			},
		},
		out: [][]byte{
			{0x00, 0x00, 0x00, 0x00},
			[]byte("hi"),
			[]byte("hello"),
		},
	}

	u32Out := make([]byte, 4)
	dstHi := make([]byte, 2)
	dstHello := make([]byte, 5)

	require.NoError(t, Invoke(tt, def, 0,
		OutBlob(u32Out),
		OutSeq{Max: 2, Dst: dstHi},
		OutSeq{Max: 5, Dst: dstHello},
	))

	assert.Equal(t, []byte{0, 0, 0, 0}, u32Out)
	assert.Equal(t, []byte("hi"), dstHi)
	assert.Equal(t, []byte("hello"), dstHello)
}

// Extended method id: the 32-bit id leads the primary input and the
// scalar descriptor carries the reserved slot value.
func TestInvokeExtendedMethodID(t *testing.T) {
	def := &idl.Method{
		MsgID: 32,
		Args: []idl.ArgDef{
			{Kind: idl.KindWord, D: 4},
			{Kind: idl.KindBlobSeq, D: 1},
			{Kind: idl.KindBlobSeq, D: 1},
		},
	}

	tt := &testTransport{
		t:      t,
		wantSc: uapi.ScalarsMake(31, 3, 0),
		wantIn: [][]byte{
			{
				0x20, 0x00, 0x00, 0x00,
				0x67, 0x45, 0x23, 0x01,
				0x02, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
			},
			[]byte("hi"),
			{},
		},
	}

	require.NoError(t, Invoke(tt, def, 0,
		Word32(0x01234567),
		Seq{Count: 2, Data: []byte("hi")},
		Seq{Count: 0, Data: nil},
	))
}

// Scalar round trip through an echoing kernel: every word written into
// the primary input comes back at its output destination.
func TestInvokeScalarRoundTrip(t *testing.T) {
	def := &idl.Method{
		MsgID: 7,
		Args: []idl.ArgDef{
			{Kind: idl.KindWord, D: 4},
			{Kind: idl.KindWord, D: 8},
			{Kind: idl.KindOutBlob, D: 4},
			{Kind: idl.KindOutBlob, D: 8},
		},
	}

	echo := transportFunc(func(handle, sc uint32, args []uapi.Slot) error {
		nIn := int(uapi.ScalarsInBufs(sc))
		copy(args[nIn].Buf, args[0].Buf)
		return nil
	})

	out32 := make([]byte, 4)
	out64 := make([]byte, 8)
	require.NoError(t, Invoke(echo, def, 0,
		Word32(0xdeadbeef),
		Word64(0x0123456789abcdef),
		OutBlob(out32),
		OutBlob(out64),
	))

	assert.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, out32)
	assert.Equal(t, []byte{0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01}, out64)
}

type transportFunc func(handle, sc uint32, args []uapi.Slot) error

func (f transportFunc) Invoke(handle, sc uint32, args []uapi.Slot) error {
	return f(handle, sc, args)
}

// Sequence length accounting: the emitted buffer length is always
// count times element size.
func TestSequenceLengthAccounting(t *testing.T) {
	for _, tc := range []struct {
		d, n uint32
	}{
		{1, 0}, {1, 7}, {4, 3}, {16, 2},
	} {
		def := &idl.Method{
			MsgID: 0,
			Args:  []idl.ArgDef{{Kind: idl.KindBlobSeq, D: tc.d}},
		}

		var gotLen uint64
		tr := transportFunc(func(handle, sc uint32, args []uapi.Slot) error {
			require.EqualValues(t, 2, uapi.ScalarsInBufs(sc))
			gotLen = uint64(len(args[1].Buf))
			return nil
		})

		require.NoError(t, Invoke(tr, def, 0,
			Seq{Count: tc.n, Data: make([]byte, tc.d*tc.n)}))
		assert.EqualValues(t, tc.d*tc.n, gotLen, "d=%d n=%d", tc.d, tc.n)
	}
}

// Inner-type record sequence: the instances pack into one allocated
// input buffer; per-instance sequence payloads keep their own buffers.
func TestInvokeRecordSeq(t *testing.T) {
	def := &idl.Method{
		MsgID: 2,
		Args:  []idl.ArgDef{{Kind: idl.KindTypeSeq, D: 0}},
		InnerTypes: []idl.InnerType{{Elems: []idl.ArgDef{
			{Kind: idl.KindBlob, D: 4},
			{Kind: idl.KindBlobSeq, D: 1},
		}}},
	}

	// Two instances: packed payload is 2 * (4 blob + 4 count) = 16
	// bytes, and each instance's sequence payload gets its own buffer.
	tt := &testTransport{
		t:      t,
		wantSc: uapi.ScalarsMake(2, 4, 0),
		wantIn: [][]byte{
			{0x02, 0x00, 0x00, 0x00}, // primary: element count
			{
				0xaa, 0xbb, 0xcc, 0xdd, 0x03, 0x00, 0x00, 0x00,
				0x11, 0x22, 0x33, 0x44, 0x00, 0x00, 0x00, 0x00,
			},
			[]byte("abc"),
			{},
		},
	}

	require.NoError(t, Invoke(tt, def, 0,
		RecordSeq{
			{Blob{0xaa, 0xbb, 0xcc, 0xdd}, Seq{Count: 3, Data: []byte("abc")}},
			{Blob{0x11, 0x22, 0x33, 0x44}, Seq{Count: 0, Data: nil}},
		},
	))
}

// Empty record sequence: only the count word goes out.
func TestInvokeEmptyRecordSeq(t *testing.T) {
	def := &idl.Method{
		MsgID:      2,
		Args:       []idl.ArgDef{{Kind: idl.KindTypeSeq, D: 0}},
		InnerTypes: []idl.InnerType{{Elems: []idl.ArgDef{{Kind: idl.KindBlob, D: 4}}}},
	}

	tt := &testTransport{
		t:      t,
		wantSc: uapi.ScalarsMake(2, 1, 0),
		wantIn: [][]byte{{0x00, 0x00, 0x00, 0x00}},
	}

	require.NoError(t, Invoke(tt, def, 0, RecordSeq{}))
}

// Argument vector mismatches fail with EBadParm before submission.
func TestInvokeArgMismatch(t *testing.T) {
	def := &idl.Method{
		MsgID: 0,
		Args:  []idl.ArgDef{{Kind: idl.KindWord, D: 4}},
	}
	tt := &testTransport{t: t}

	tests := []struct {
		name string
		args []Arg
	}{
		{"wrong type", []Arg{Word64(1)}},
		{"too few", nil},
		{"too many", []Arg{Word32(1), Word32(2)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Invoke(tt, def, 0, tc.args...)
			require.Error(t, err)
			assert.True(t, aee.IsCode(err, aee.EBadParm))
			assert.Zero(t, tt.calls, "must fail before submit")
		})
	}
}

// Descriptor-level failures: bad word size and the reserved kind.
func TestInvokeBadDescriptor(t *testing.T) {
	tt := &testTransport{t: t}

	badWord := &idl.Method{MsgID: 0, Args: []idl.ArgDef{{Kind: idl.KindWord, D: 2}}}
	err := Invoke(tt, badWord, 0, Word32(1))
	assert.True(t, aee.IsCode(err, aee.EBadParm))

	reserved := &idl.Method{MsgID: 0, Args: []idl.ArgDef{{Kind: idl.Kind(5), D: 0}}}
	err = Invoke(tt, reserved, 0, Word32(1))
	assert.True(t, aee.IsCode(err, aee.EBadParm))

	assert.Zero(t, tt.calls)
}

// Kernel errors propagate with their errno intact and skip decoding.
func TestInvokeTransportError(t *testing.T) {
	def := &idl.Method{
		MsgID: 0,
		Args:  []idl.ArgDef{{Kind: idl.KindOutBlob, D: 4}},
	}

	tr := transportFunc(func(handle, sc uint32, args []uapi.Slot) error {
		return syscall.EFAULT
	})

	dst := make([]byte, 4)
	err := Invoke(tr, def, 0, OutBlob(dst))
	require.Error(t, err)
	assert.True(t, aee.IsErrno(err, syscall.EFAULT))
	assert.Equal(t, []byte{0, 0, 0, 0}, dst, "no decode on failure")
}

// Release runs exactly once across every exit path.
func TestCallReleaseIdempotent(t *testing.T) {
	c := &call{}
	c.alloc(64)
	c.alloc(300)
	require.Len(t, c.allocs, 2)

	c.release()
	assert.True(t, c.released)
	assert.Nil(t, c.allocs)

	// A second release must not double-free pooled buffers.
	c.release()
	assert.Nil(t, c.allocs)
}
