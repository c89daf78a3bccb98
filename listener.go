package hexagonrpc

import (
	"github.com/linux-msm/hexagonrpc/internal/listener"
	"github.com/linux-msm/hexagonrpc/internal/logging"
)

// ServeOptions tunes the reverse tunnel loop.
type ServeOptions struct {
	// ListenerHandle overrides the conventional adsp_listener handle.
	ListenerHandle uint32
	// MaxPrimIn overrides the cap on the flattened inbound input buffers.
	MaxPrimIn int
	// Logger receives one line per dispatched-result failure.
	Logger *logging.Logger
	// Observer receives dispatch metrics.
	Observer Observer
}

// Serve runs the reverse tunnel on the transport until the peer or the
// kernel fails the poll. Dispatch-level failures are reported to the
// peer and do not end the loop.
//
// The listener is strictly sequential: one request is decoded,
// dispatched, and encoded before the next poll. Forward calls on the
// same channel may proceed concurrently from other goroutines.
func Serve(t Transport, reg *Registry, opts *ServeOptions) error {
	if opts == nil {
		opts = &ServeOptions{}
	}
	return listener.Run(t, reg, listener.Options{
		Handle:    opts.ListenerHandle,
		MaxPrimIn: opts.MaxPrimIn,
		Logger:    opts.Logger,
		Observer:  opts.Observer,
	})
}
