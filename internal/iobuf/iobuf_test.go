package iobuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedSize(t *testing.T) {
	assert.Equal(t, 0, EncodedSize(nil))
	assert.Equal(t, 4, EncodedSize([][]byte{{}}))
	assert.Equal(t, 4+2+4+5, EncodedSize([][]byte{[]byte("hi"), []byte("hello")}))
}

func TestEncodeLayout(t *testing.T) {
	bufs := [][]byte{[]byte("hi"), {}, []byte("hello")}
	dst := make([]byte, EncodedSize(bufs))
	n := Encode(bufs, dst)
	require.Equal(t, len(dst), n)

	want := []byte{
		0x02, 0x00, 0x00, 0x00, 'h', 'i',
		0x00, 0x00, 0x00, 0x00,
		0x05, 0x00, 0x00, 0x00, 'h', 'e', 'l', 'l', 'o',
	}
	assert.Equal(t, want, dst)
}

func TestDecodeRoundTrip(t *testing.T) {
	bufs := [][]byte{[]byte("hi"), {}, []byte("hello"), make([]byte, 300)}
	flat := EncodeAlloc(bufs)

	d := NewDecoder(len(bufs))
	require.NoError(t, d.Feed(flat))
	require.True(t, d.Complete())

	got, err := d.Finish()
	require.NoError(t, err)
	require.Len(t, got, len(bufs))
	for i := range bufs {
		assert.Equal(t, bufs[i], got[i], "buffer %d", i)
	}
}

func TestDecodeChunked(t *testing.T) {
	bufs := [][]byte{[]byte("hi"), []byte("hello")}
	flat := EncodeAlloc(bufs)

	// Feed one byte at a time so every state transition straddles a
	// chunk boundary at least once.
	d := NewDecoder(2)
	for _, b := range flat {
		require.False(t, d.Complete())
		require.NoError(t, d.Feed([]byte{b}))
	}
	require.True(t, d.Complete())

	got, err := d.Finish()
	require.NoError(t, err)
	assert.Equal(t, bufs, got)
}

func TestDecodeIncomplete(t *testing.T) {
	flat := EncodeAlloc([][]byte{[]byte("hello")})

	d := NewDecoder(1)
	require.NoError(t, d.Feed(flat[:len(flat)-1]))
	assert.False(t, d.Complete())

	_, err := d.Finish()
	assert.Error(t, err)
}

func TestDecodeTrailingBytes(t *testing.T) {
	flat := EncodeAlloc([][]byte{[]byte("hi")})

	d := NewDecoder(1)
	require.NoError(t, d.Feed(flat))
	assert.Error(t, d.Feed([]byte{0x00}))
}

func TestDecodeZeroBuffers(t *testing.T) {
	d := NewDecoder(0)
	assert.True(t, d.Complete())

	got, err := d.Finish()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPoolRoundTrip(t *testing.T) {
	sizes := []int{1, 256, 300, 4096, 70000, 2 << 20}
	for _, size := range sizes {
		b := GetBuffer(size)
		require.Len(t, b, size)
		for _, c := range b {
			require.Zero(t, c, "pooled buffer must come back zeroed")
		}
		for i := range b {
			b[i] = 0xaa
		}
		PutBuffer(b)
	}

	// A reused buffer must be zeroed again.
	b := GetBuffer(16)
	for _, c := range b {
		assert.Zero(t, c)
	}
	PutBuffer(b)
}
