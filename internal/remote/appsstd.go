package remote

import "github.com/linux-msm/hexagonrpc/internal/idl"

// apps_std is the filesystem interface the DSP calls back into. The
// method bodies live with the daemon; these tables describe the wire
// grammar the dispatcher validates against.

// AppsStdFreopen: in: u32 stream; out: u32 stream, error string.
var AppsStdFreopen = &idl.Method{
	MsgID: 1,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlobSeq, D: 1},
	},
}

// AppsStdFflush: in: u32 stream.
var AppsStdFflush = &idl.Method{
	MsgID: 2,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
	},
}

// AppsStdFclose: in: u32 stream.
var AppsStdFclose = &idl.Method{
	MsgID: 3,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
	},
}

// AppsStdFread: in: u32 stream; out: u32 read, u32 eof, data.
var AppsStdFread = &idl.Method{
	MsgID: 4,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlobSeq, D: 1},
	},
}

// AppsStdFseek: in: u32 stream, u32 offset, u32 whence.
var AppsStdFseek = &idl.Method{
	MsgID: 9,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindWord, D: 4},
		{Kind: idl.KindWord, D: 4},
	},
}

// AppsStdFopenWithEnv: in: env name, delimiter, search path, mode;
// out: u32 stream.
var AppsStdFopenWithEnv = &idl.Method{
	MsgID: 19,
	Args: []idl.ArgDef{
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindOutBlob, D: 4},
	},
}

// AppsStdOpendir: in: path; out: u64 dir handle.
var AppsStdOpendir = &idl.Method{
	MsgID: 26,
	Args: []idl.ArgDef{
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindOutBlob, D: 8},
	},
}

// AppsStdClosedir: in: u64 dir handle.
var AppsStdClosedir = &idl.Method{
	MsgID: 27,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 8},
	},
}

// AppsStdReaddir: in: u64 dir handle; out: u32 inode, 256-byte name,
// u32 end-of-directory flag.
var AppsStdReaddir = &idl.Method{
	MsgID: 28,
	Args: []idl.ArgDef{
		{Kind: idl.KindWord, D: 8},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlob, D: 256},
		{Kind: idl.KindOutBlob, D: 4},
	},
}

// AppsStdMkdir: in: path blob, u32 mode.
var AppsStdMkdir = &idl.Method{
	MsgID: 29,
	Args: []idl.ArgDef{
		{Kind: idl.KindBlob, D: 1},
		{Kind: idl.KindWord, D: 4},
	},
}

// AppsStdStat is the first method past the 5-bit id space; it exercises
// the extended-id protocol on every call.
// in: path; out: dev, ino, mode, nlink, rdev, size, and the
// atime/mtime/ctime second and nanosecond pairs.
var AppsStdStat = &idl.Method{
	MsgID: 31,
	Args: []idl.ArgDef{
		{Kind: idl.KindBlobSeq, D: 1},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlob, D: 4},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
		{Kind: idl.KindOutBlob, D: 8},
	},
}
