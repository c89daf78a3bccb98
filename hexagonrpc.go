// Package hexagonrpc mediates remote procedure calls between the
// application processor and a Hexagon DSP over the kernel FastRPC
// device. Forward calls marshal typed argument vectors against interp4
// method descriptors into single kernel invocations; the reverse tunnel
// serves DSP-initiated calls against registered AP-resident interfaces.
package hexagonrpc

import (
	"github.com/linux-msm/hexagonrpc/internal/constants"
	"github.com/linux-msm/hexagonrpc/internal/idl"
	"github.com/linux-msm/hexagonrpc/internal/interfaces"
	"github.com/linux-msm/hexagonrpc/internal/logging"
	"github.com/linux-msm/hexagonrpc/internal/registry"
	"github.com/linux-msm/hexagonrpc/internal/rpc"
	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// Method descriptor meta-model. Descriptors are immutable; build them
// once and share them across calls.
type (
	// Method describes one remote method as a typed argument list.
	Method = idl.Method
	// ArgDef is one element of a method's argument grammar.
	ArgDef = idl.ArgDef
	// InnerType is a single-level nested record layout.
	InnerType = idl.InnerType
	// Kind tags an argument grammar variant.
	Kind = idl.Kind
)

// Argument kinds.
const (
	KindWord       = idl.KindWord
	KindBlob       = idl.KindBlob
	KindType       = idl.KindType
	KindBlobSeq    = idl.KindBlobSeq
	KindTypeSeq    = idl.KindTypeSeq
	KindOutBlob    = idl.KindOutBlob
	KindOutType    = idl.KindOutType
	KindOutBlobSeq = idl.KindOutBlobSeq
	KindOutTypeSeq = idl.KindOutTypeSeq
)

// Call-site argument values. The vector passed to Invoke must match
// the descriptor element for element.
type (
	Arg          = rpc.Arg
	Word32       = rpc.Word32
	Word64       = rpc.Word64
	Blob         = rpc.Blob
	Seq          = rpc.Seq
	Record       = rpc.Record
	RecordSeq    = rpc.RecordSeq
	OutBlob      = rpc.OutBlob
	OutSeq       = rpc.OutSeq
	OutRecord    = rpc.OutRecord
	OutRecordSeq = rpc.OutRecordSeq
)

// Transport submits one kernel invocation; *Channel is the device
// implementation and StubTransport the scripted one for tests.
type Transport = interfaces.Transport

// Slot is one borrowed I/O buffer of an invocation.
type Slot = uapi.Slot

// Observer receives engine metrics callbacks.
type Observer = interfaces.Observer

// Logging re-exports, so callers can configure the daemon's leveled
// logger without reaching into internal packages.
type (
	Logger    = logging.Logger
	LogConfig = logging.Config
	LogLevel  = logging.LogLevel
)

// Log levels.
const (
	LevelDebug = logging.LevelDebug
	LevelInfo  = logging.LevelInfo
	LevelWarn  = logging.LevelWarn
	LevelError = logging.LevelError
)

// NewLogger creates a leveled logger; nil config means info to stderr.
func NewLogger(config *LogConfig) *Logger {
	return logging.NewLogger(config)
}

// Reverse tunnel interface registry.
type (
	// Registry is the process-wide handle table.
	Registry = registry.Registry
	// Interface is one AP-resident interface.
	Interface = registry.Interface
	// Proc binds a method descriptor to its implementation.
	Proc = registry.Proc
	// Impl executes one dispatched method.
	Impl = registry.Impl
)

// NewRegistry creates a registry with apps_remotectl on slot 0.
func NewRegistry() *Registry {
	return registry.New()
}

// Well-known protocol constants.
const (
	// RemotectlHandle is the fixed handle of remotectl on the peer.
	RemotectlHandle = constants.RemotectlHandle
	// ADSPListenerHandle is the conventional handle of the reverse
	// tunnel interface.
	ADSPListenerHandle = constants.ADSPListenerHandle
	// EnvChannelFd names the environment variable carrying the device
	// fd to spawned clients.
	EnvChannelFd = constants.EnvChannelFd
)

// Invoke marshals args per the method descriptor and submits one
// invocation on the transport. Arguments follow the descriptor's
// declaration left to right: inputs pass values or (count, payload)
// pairs, outputs pass destinations or (capacity, destination) pairs.
func Invoke(t Transport, def *Method, handle uint32, args ...Arg) error {
	return rpc.Invoke(t, def, handle, args...)
}
