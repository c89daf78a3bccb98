package hexagonrpc

import (
	"github.com/linux-msm/hexagonrpc/internal/remote"
)

// The standard AP-resident interfaces of a daemon session. Their proc
// tables carry the wire descriptors so the dispatcher can resolve and
// validate calls; slots without an implementation answer EUnsupported
// until one is bound with Bind.

// AppsStdInterface builds the apps_std filesystem interface serving
// files under root.
func AppsStdInterface(root string) *Interface {
	procs := make([]Proc, 32)
	procs[1] = Proc{Def: remote.AppsStdFreopen}
	procs[2] = Proc{Def: remote.AppsStdFflush}
	procs[3] = Proc{Def: remote.AppsStdFclose}
	procs[4] = Proc{Def: remote.AppsStdFread}
	procs[9] = Proc{Def: remote.AppsStdFseek}
	procs[19] = Proc{Def: remote.AppsStdFopenWithEnv}
	procs[26] = Proc{Def: remote.AppsStdOpendir}
	procs[27] = Proc{Def: remote.AppsStdClosedir}
	procs[28] = Proc{Def: remote.AppsStdReaddir}
	procs[29] = Proc{Def: remote.AppsStdMkdir}
	procs[31] = Proc{Def: remote.AppsStdStat}

	return &Interface{
		Name:  "apps_std",
		Data:  root,
		Procs: procs,
	}
}

// AppsMemInterface builds the apps_mem memory mapping interface bound
// to the session channel.
func AppsMemInterface(c *Channel) *Interface {
	procs := make([]Proc, 4)
	procs[2] = Proc{Def: remote.AppsMemRequestMap64}
	procs[3] = Proc{Def: remote.AppsMemRequestUnmap64}

	return &Interface{
		Name:  "apps_mem",
		Data:  c,
		Procs: procs,
	}
}

// Bind attaches an implementation to one method slot of an interface.
// The slot's descriptor must already be present.
func Bind(iface *Interface, method uint32, impl Impl) {
	iface.Procs[method].Impl = impl
}
