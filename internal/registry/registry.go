// Package registry names and routes the AP-resident interfaces that
// share the reverse tunnel. A handle is an index into a process-wide
// table that is populated during daemon startup and read-only while the
// listener runs.
package registry

import (
	"github.com/linux-msm/hexagonrpc/internal/aee"
	"github.com/linux-msm/hexagonrpc/internal/idl"
)

// Impl executes one dispatched method. It receives the interface's
// private data, the decoded input buffers (primary first), and the
// preallocated output buffers to fill. The return value is the result
// code the peer sees on its next poll.
type Impl func(data interface{}, inbufs [][]byte, outbufs [][]byte) aee.Code

// Proc binds a method descriptor to its implementation. A Proc with a
// nil Def or Impl is an unbound slot; dispatching to it yields
// EUnsupported.
type Proc struct {
	Def  *idl.Method
	Impl Impl
}

// Bound reports whether the slot can be dispatched to.
func (p *Proc) Bound() bool {
	return p != nil && p.Def != nil && p.Impl != nil
}

// Interface is one AP-resident interface: a name the peer can resolve
// through apps_remotectl, private state, and the proc table indexed by
// method id.
type Interface struct {
	Name  string
	Data  interface{}
	Procs []Proc
}

// Proc resolves a method id to its slot, nil when out of range.
func (i *Interface) Proc(method uint32) *Proc {
	if int64(method) >= int64(len(i.Procs)) {
		return nil
	}
	return &i.Procs[method]
}

// Registry is the process-wide handle table. Slot 0 always carries the
// apps_remotectl control interface. Handles are stable for the process
// lifetime; there is no reclamation, which is sound because the handle
// space is 32 bits and the daemon serves a single DSP session.
type Registry struct {
	ifaces []*Interface
}

// New creates a registry with apps_remotectl installed on slot 0.
func New() *Registry {
	r := &Registry{}
	r.Register(localctlInterface(r))
	return r
}

// Register appends an interface and returns its handle. Call this only
// during startup, before the listener runs.
func (r *Registry) Register(iface *Interface) uint32 {
	r.ifaces = append(r.ifaces, iface)
	return uint32(len(r.ifaces) - 1)
}

// Lookup resolves a handle, nil when unknown.
func (r *Registry) Lookup(handle uint32) *Interface {
	if int64(handle) >= int64(len(r.ifaces)) {
		return nil
	}
	return r.ifaces[handle]
}

// Len returns the number of registered interfaces.
func (r *Registry) Len() int {
	return len(r.ifaces)
}

// FindByName scans the table for a named interface and returns its
// handle.
func (r *Registry) FindByName(name string) (uint32, bool) {
	for i, iface := range r.ifaces {
		if iface != nil && iface.Name == name {
			return uint32(i), true
		}
	}
	return 0, false
}
