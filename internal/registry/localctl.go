package registry

import (
	"bytes"
	"encoding/binary"

	"github.com/linux-msm/hexagonrpc/internal/aee"
	"github.com/linux-msm/hexagonrpc/internal/remote"
)

// apps_remotectl: the local control interface the DSP uses to resolve
// AP-resident interfaces by name. It serves the same open/close grammar
// as the remote processor's remotectl.

const (
	localctlMethodOpen  = 0
	localctlMethodClose = 1
)

// localctlInterface builds the slot-0 interface over the registry that
// owns it. The registry keeps filling up after this runs; open consults
// it live, so interfaces registered later are still resolvable.
func localctlInterface(r *Registry) *Interface {
	return &Interface{
		Name: "apps_remotectl",
		Data: r,
		Procs: []Proc{
			localctlMethodOpen:  {Def: remote.RemotectlOpen, Impl: localctlOpen},
			localctlMethodClose: {Def: remote.RemotectlClose, Impl: localctlClose},
		},
	}
}

// localctlOpen scans the registry for the requested name and returns
// the slot index as the handle. A miss reports the dlopen-style "not
// found" code in the status word, with the message in the error buffer.
func localctlOpen(data interface{}, inbufs [][]byte, outbufs [][]byte) aee.Code {
	r := data.(*Registry)

	name := string(bytes.TrimRight(inbufs[1], "\x00"))
	prim := outbufs[0]

	handle, ok := r.FindByName(name)
	if !ok {
		msg := "interface not found: " + name
		n := copy(outbufs[1], msg)
		if n < len(outbufs[1]) {
			outbufs[1][n] = 0
			n++
		}
		binary.LittleEndian.PutUint32(prim[0:4], 0)
		binary.LittleEndian.PutUint32(prim[4:8], uint32(aee.NoSuchInterface))
		return aee.OK
	}

	binary.LittleEndian.PutUint32(prim[0:4], handle)
	binary.LittleEndian.PutUint32(prim[4:8], 0)
	return aee.OK
}

// localctlClose is a no-op: handles are stable for the process
// lifetime, so there is nothing to release.
func localctlClose(data interface{}, inbufs [][]byte, outbufs [][]byte) aee.Code {
	binary.LittleEndian.PutUint32(outbufs[0][0:4], 0)
	return aee.OK
}
