package remote

import "github.com/linux-msm/hexagonrpc/internal/idl"

// apps_mem is the memory mapping interface the DSP calls back into.

// AppsMemRequestMap64: in: u32 heap id, u32 local flags, u32 remote
// flags, u32 padding, u64 virtual address, u64 length; out: u64 apps
// address, u64 adsp address.
var AppsMemRequestMap64 = &idl.Method{
	MsgID: 2,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindWord, D: 8},
		{Kind: idl.KindWord, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
	},
}

// AppsMemRequestUnmap64: in: u64 address, u64 length.
var AppsMemRequestUnmap64 = &idl.Method{
	MsgID: 3,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 8},
		{Kind: idl.KindWord, D: 8},
	},
}
