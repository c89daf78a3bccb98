package remote

import "github.com/linux-msm/hexagonrpc/internal/idl"

// ListenerInit2 arms the reverse tunnel on the DSP. No arguments.
var ListenerInit2 = &idl.Method{
	MsgID: 3,
}

// ListenerNext2 posts the previous dispatch result and fetches the next
// request in one call:
// in: u32 prev rctx, u32 prev result, flattened previous outbufs;
// out: u32 rctx, u32 handle, u32 sc, u32 inbufs length, flattened inbufs.
var ListenerNext2 = &idl.Method{
	MsgID: 4,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlobSeq, D: 1},
	},
}

// DefaultListenerRegister marks this process as the default reverse
// tunnel endpoint for its session. Invoked on the handle obtained by
// opening "adsp_default_listener".
var DefaultListenerRegister = &idl.Method{
	MsgID: 0,
}
