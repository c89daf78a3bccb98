package hexagonrpc

import (
	"fmt"
	"sync"

	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// StubTransport is a scripted Transport for testing code that issues
// forward calls or runs the listener without a DSP. It verifies each
// invocation against the next scripted call, fills the output slots
// from the script, and records everything it saw.
type StubTransport struct {
	mu sync.Mutex

	// Script is consumed one entry per invocation. An exhausted
	// script fails the call.
	Script []StubCall

	// Handler, when set, replaces the script entirely.
	Handler func(handle, sc uint32, args []Slot) error

	// Calls records every invocation in order.
	Calls []InvokeRecord

	next int
}

// StubCall scripts one expected invocation and its response.
type StubCall struct {
	// WantHandle/WantSc are matched against the submitted call.
	WantHandle uint32
	WantSc     uint32
	// WantIn, when non-nil, is matched element-wise against the input
	// buffer payloads.
	WantIn [][]byte
	// Out payloads are copied into the output slots in order. An
	// entry longer than its slot fails the call.
	Out [][]byte
	// Err, when set, is returned without touching the output slots.
	Err error
}

// InvokeRecord is one observed invocation.
type InvokeRecord struct {
	Handle uint32
	Sc     uint32
	In     [][]byte
	NOut   int
}

// Compile-time interface check
var _ Transport = (*StubTransport)(nil)

// Invoke implements the Transport contract against the script.
func (s *StubTransport) Invoke(handle, sc uint32, args []Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nIn := int(uapi.ScalarsInBufs(sc))
	nOut := int(uapi.ScalarsOutBufs(sc))
	if nIn+nOut != len(args) {
		return fmt.Errorf("stub: scalar %08x declares %d buffers, got %d", sc, nIn+nOut, len(args))
	}

	rec := InvokeRecord{Handle: handle, Sc: sc, NOut: nOut}
	for _, a := range args[:nIn] {
		rec.In = append(rec.In, append([]byte(nil), a.Buf...))
	}
	s.Calls = append(s.Calls, rec)

	if s.Handler != nil {
		return s.Handler(handle, sc, args)
	}

	if s.next >= len(s.Script) {
		return fmt.Errorf("stub: unexpected invocation %d (handle=%d sc=%08x)", s.next, handle, sc)
	}
	call := s.Script[s.next]
	s.next++

	if call.Err != nil {
		return call.Err
	}

	if handle != call.WantHandle {
		return fmt.Errorf("stub: handle %d, want %d", handle, call.WantHandle)
	}
	if sc != call.WantSc {
		return fmt.Errorf("stub: scalar %08x, want %08x", sc, call.WantSc)
	}

	for i, a := range args {
		if a.Fd != -1 || a.Attr != 0 {
			return fmt.Errorf("stub: buffer %d has fd=%d attr=%#x", i, a.Fd, a.Attr)
		}
	}

	if call.WantIn != nil {
		if len(call.WantIn) != nIn {
			return fmt.Errorf("stub: %d input buffers, want %d", nIn, len(call.WantIn))
		}
		for i, want := range call.WantIn {
			got := args[i].Buf
			if len(got) != len(want) {
				return fmt.Errorf("stub: input %d is %d bytes, want %d", i, len(got), len(want))
			}
			for j := range want {
				if got[j] != want[j] {
					return fmt.Errorf("stub: input %d differs at byte %d: %02x != %02x", i, j, got[j], want[j])
				}
			}
		}
	}

	for i, payload := range call.Out {
		if i >= nOut {
			return fmt.Errorf("stub: script has %d output payloads, call takes %d", len(call.Out), nOut)
		}
		dst := args[nIn+i].Buf
		if len(payload) > len(dst) {
			return fmt.Errorf("stub: output %d payload is %d bytes, slot holds %d", i, len(payload), len(dst))
		}
		copy(dst, payload)
	}

	return nil
}

// Exhausted reports whether every scripted call has been consumed.
func (s *StubTransport) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next >= len(s.Script)
}

// NewEchoTransport returns a transport that copies each call's primary
// input into its primary output, truncating to the smaller of the two.
// Useful for scalar round-trip tests.
func NewEchoTransport() *StubTransport {
	return &StubTransport{
		Handler: func(handle, sc uint32, args []Slot) error {
			nIn := int(uapi.ScalarsInBufs(sc))
			nOut := int(uapi.ScalarsOutBufs(sc))
			if nIn == 0 || nOut == 0 || nIn+nOut != len(args) {
				return nil
			}
			copy(args[nIn].Buf, args[0].Buf)
			return nil
		},
	}
}
