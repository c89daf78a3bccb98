//go:build !integration

package unit

import (
	"encoding/binary"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hexagonrpc "github.com/linux-msm/hexagonrpc"
	"github.com/linux-msm/hexagonrpc/internal/iobuf"
	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// These tests run without a DSP or a FastRPC device: the whole engine
// is driven through scripted transports.

func TestScalarDescriptorLayout(t *testing.T) {
	// [3 attr][5 method][8 in][8 out][4 in-handles][4 out-handles]
	sc := uapi.ScalarsMake(4, 2, 2)
	assert.Equal(t, uint32(0x04020200), sc)
	assert.Equal(t, uint32(4), uapi.ScalarsMethod(sc))
}

// A daemon-shaped session end to end: register the default listener,
// then serve one reverse call resolved through apps_remotectl.
func TestSessionEndToEnd(t *testing.T) {
	reg := hexagonrpc.NewRegistry()
	reg.Register(hexagonrpc.AppsStdInterface("/usr/share/qcom/"))

	// Reverse leg: the DSP opens apps_std by name via handle 0, then
	// the transport dies to end the loop.
	name := []byte("apps_std\x00")
	openPrim := make([]byte, 8)
	binary.LittleEndian.PutUint32(openPrim[0:4], uint32(len(name)))
	binary.LittleEndian.PutUint32(openPrim[4:8], 32)
	flat := iobuf.EncodeAlloc([][]byte{openPrim, name})

	calls := 0
	var lastResult uint32
	var lastOutbufs []byte

	stub := &hexagonrpc.StubTransport{Handler: func(handle, sc uint32, args []hexagonrpc.Slot) error {
		calls++
		switch uapi.ScalarsMethod(sc) {
		case 3: // init2
			return nil
		case 4: // next2
			prim := args[0].Buf
			lastResult = binary.LittleEndian.Uint32(prim[4:8])
			lastOutbufs = append([]byte(nil), args[1].Buf...)

			if calls > 2 {
				return syscall.ESHUTDOWN
			}
			out := args[2].Buf
			binary.LittleEndian.PutUint32(out[0:4], 0x42) // rctx
			binary.LittleEndian.PutUint32(out[4:8], 0)    // handle: apps_remotectl
			binary.LittleEndian.PutUint32(out[8:12], uapi.ScalarsMake(0, 2, 2))
			binary.LittleEndian.PutUint32(out[12:16], uint32(len(flat)))
			copy(args[3].Buf, flat)
			return nil
		default:
			t.Fatalf("unexpected method %d", uapi.ScalarsMethod(sc))
			return nil
		}
	}}

	err := hexagonrpc.Serve(stub, reg, nil)
	require.Error(t, err, "loop only ends on transport failure")
	assert.True(t, hexagonrpc.IsErrno(err, syscall.ESHUTDOWN))

	// The final poll posted the open result: handle 1, status 0.
	assert.Equal(t, uint32(hexagonrpc.OK), lastResult)

	d := iobuf.NewDecoder(2)
	require.NoError(t, d.Feed(lastOutbufs))
	bufs, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(bufs[0][0:4]))
	assert.Zero(t, binary.LittleEndian.Uint32(bufs[0][4:8]))
}

// Flat codec round trip via the public-facing listener wire format.
func TestFlatCodecRoundTrip(t *testing.T) {
	vectors := [][][]byte{
		{},
		{{}},
		{[]byte("hi"), []byte("hello")},
		{make([]byte, 200), {}, []byte{0xff}},
	}

	for _, bufs := range vectors {
		flat := iobuf.EncodeAlloc(bufs)
		require.Len(t, flat, iobuf.EncodedSize(bufs))

		d := iobuf.NewDecoder(len(bufs))
		require.NoError(t, d.Feed(flat))
		got, err := d.Finish()
		require.NoError(t, err)
		require.Len(t, got, len(bufs))
		for i := range bufs {
			assert.Equal(t, bufs[i], got[i])
		}
	}
}
