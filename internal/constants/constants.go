// Package constants holds shared defaults for the hexagonrpc daemon
package constants

const (
	// MaxListenerPrimInSize bounds the flattened input buffers of an
	// incoming reverse call (primary input included, with their length
	// prefixes). The DSP never sends more than this in practice; larger
	// requests are answered with EBADPARM.
	MaxListenerPrimInSize = 256

	// RemotectlErrorSize is the error string buffer passed to
	// remotectl.open and remotectl.close.
	RemotectlErrorSize = 256

	// RemotectlHandle is the fixed handle of the remote processor
	// control interface.
	RemotectlHandle = 0

	// ADSPListenerHandle is the well-known handle of the reverse
	// tunnel interface on the DSP.
	ADSPListenerHandle = 3

	// MaxDirectMethodID is the largest method id that fits the 5-bit
	// method slot of a scalar descriptor. Larger ids use the reserved
	// slot value and an extended id word in the primary input.
	MaxDirectMethodID = 30

	// ExtendedMethodSlot is the reserved 5-bit slot value that marks
	// an extended method id.
	ExtendedMethodSlot = 31

	// EnvChannelFd is the environment variable carrying the FastRPC
	// device file descriptor to spawned client programs.
	EnvChannelFd = "HEXAGONRPC_FD"

	// DefaultSharedDir is where HexagonFS files are served from when
	// no root directory is configured.
	DefaultSharedDir = "/usr/share/qcom/"
)
