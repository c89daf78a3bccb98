// Package interfaces provides internal contract definitions shared
// between the engine packages. These are separate from the public
// surface to avoid circular imports between the root package and the
// internal packages.
package interfaces

import "github.com/linux-msm/hexagonrpc/internal/uapi"

// Transport submits one kernel invocation. The real implementation is
// the FastRPC character device; tests substitute scripted stubs. The
// slots are borrowed for the duration of the call only.
type Transport interface {
	Invoke(handle uint32, sc uint32, args []uapi.Slot) error
}

// Observer interface for metrics collection.
// Implementations must be thread-safe; forward calls may observe from
// multiple threads while the listener observes from its own.
type Observer interface {
	ObserveForward(latencyNs uint64, success bool)
	ObserveDispatch(handle, method, result uint32, latencyNs uint64)
	ObserveTunnelBytes(inBytes, outBytes uint64)
}
