// Package remote holds the interp4 method definitions of the
// well-known FastRPC interfaces this daemon talks to or serves. The
// descriptors are immutable and shared; treat them as read-only.
package remote

import "github.com/linux-msm/hexagonrpc/internal/idl"

// RemotectlOpen resolves an interface name to a handle on the peer:
// in: name; out: u32 handle, error string, u32 error valid length.
var RemotectlOpen = &idl.Method{
	MsgID: 0,
	Args: []idl.ArgDef{
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlobSeq, D: 1},
		{Kind: idl.KindOutBlob, D: 4},
	},
}

// RemotectlClose releases a handle on the peer:
// in: u32 handle; out: error string, u32 error valid length.
var RemotectlClose = &idl.Method{
	MsgID: 1,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindOutBlobSeq, D: 1},
		{Kind: idl.KindOutBlob, D: 4},
	},
}
