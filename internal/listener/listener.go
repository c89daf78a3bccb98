// Package listener drives the reverse tunnel: it polls the DSP-side
// adsp_listener for incoming invocations, dispatches them to the
// registered AP-resident interfaces, and folds each result into the
// next poll per the next2 protocol.
package listener

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/linux-msm/hexagonrpc/internal/aee"
	"github.com/linux-msm/hexagonrpc/internal/constants"
	"github.com/linux-msm/hexagonrpc/internal/interfaces"
	"github.com/linux-msm/hexagonrpc/internal/iobuf"
	"github.com/linux-msm/hexagonrpc/internal/logging"
	"github.com/linux-msm/hexagonrpc/internal/registry"
	"github.com/linux-msm/hexagonrpc/internal/remote"
	"github.com/linux-msm/hexagonrpc/internal/rpc"
	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// Options tunes one listener run.
type Options struct {
	// Handle of the adsp_listener interface on the peer.
	Handle uint32
	// MaxPrimIn caps the size of the flattened inbound input buffers.
	MaxPrimIn int
	// Logger for dispatch failures; Observer for metrics. Either may
	// be nil.
	Logger   *logging.Logger
	Observer interfaces.Observer
}

func (o *Options) defaults() {
	if o.Handle == 0 {
		o.Handle = constants.ADSPListenerHandle
	}
	if o.MaxPrimIn == 0 {
		o.MaxPrimIn = constants.MaxListenerPrimInSize
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}
}

// Run arms the tunnel with init2 and then serves next2 polls until the
// transport fails. Dispatch failures are reported to the peer on the
// following poll and never terminate the loop. The previous-call state
// is deliberately local to this function; the next2 protocol requires
// strictly sequential request handling.
func Run(t interfaces.Transport, reg *registry.Registry, opts Options) error {
	opts.defaults()

	if err := rpc.Invoke(t, remote.ListenerInit2, opts.Handle); err != nil {
		return aee.WrapError("LISTENER_INIT", err)
	}

	var (
		lastResult = uint32(aee.NoPriorCall)
		lastRctx   uint32
		returned   [][]byte
	)

	var (
		rctxW      = make([]byte, 4)
		handleW    = make([]byte, 4)
		scW        = make([]byte, 4)
		inbufsLenW = make([]byte, 4)
		inbufs     = make([]byte, opts.MaxPrimIn)
	)

	for {
		flat := flatten(returned)
		err := rpc.Invoke(t, remote.ListenerNext2, opts.Handle,
			rpc.Word32(lastRctx),
			rpc.Word32(lastResult),
			rpc.Seq{Count: uint32(len(flat)), Data: flat},
			rpc.OutBlob(rctxW),
			rpc.OutBlob(handleW),
			rpc.OutBlob(scW),
			rpc.OutBlob(inbufsLenW),
			rpc.OutSeq{Max: uint32(opts.MaxPrimIn), Dst: inbufs},
		)
		rpc.FreeOutbufs(returned)
		returned = nil
		if err != nil {
			return aee.WrapError("LISTENER_NEXT", err)
		}

		var (
			rctx      = binary.LittleEndian.Uint32(rctxW)
			handle    = binary.LittleEndian.Uint32(handleW)
			sc        = binary.LittleEndian.Uint32(scW)
			inbufsLen = binary.LittleEndian.Uint32(inbufsLenW)
		)

		var code aee.Code
		var method uint32
		start := time.Now()

		if int(inbufsLen) > opts.MaxPrimIn {
			// The receive window cannot hold this request; tell the
			// peer instead of faulting on truncated data.
			code = aee.EBadParm
			opts.Logger.Debug("input buffers exceed the receive window",
				"len", inbufsLen, "max", opts.MaxPrimIn)
		} else {
			var decoded [][]byte
			decoded, code = decode(sc, inbufs[:inbufsLen])
			if code == aee.OK {
				returned, method, code = dispatch(reg, handle, sc, decoded)
			}
		}

		if code != aee.OK {
			opts.Logger.Error("dispatch failed",
				"handle", handle, "sc", sc, "result", code.String())
		}
		if opts.Observer != nil {
			opts.Observer.ObserveDispatch(handle, method, uint32(code),
				uint64(time.Since(start).Nanoseconds()))
			opts.Observer.ObserveTunnelBytes(uint64(inbufsLen), uint64(iobuf.EncodedSize(returned)))
		}

		lastRctx = rctx
		lastResult = uint32(code)
	}
}

// flatten encodes the previous outbufs for the return leg of next2.
func flatten(returned [][]byte) []byte {
	if len(returned) == 0 {
		return nil
	}
	return iobuf.EncodeAlloc(returned)
}

// decode splits the flat inbound stream into the per-buffer vector the
// scalar descriptor declares.
func decode(sc uint32, flat []byte) ([][]byte, aee.Code) {
	d := iobuf.NewDecoder(int(uapi.ScalarsInBufs(sc)))
	if err := d.Feed(flat); err != nil {
		return nil, aee.EBadParm
	}
	decoded, err := d.Finish()
	if err != nil {
		return nil, aee.EBadParm
	}
	return decoded, aee.OK
}

// dispatch resolves and executes one inbound invocation. It returns the
// allocated output buffers for the next poll, the resolved method id,
// and the result code.
func dispatch(reg *registry.Registry, handle, sc uint32, decoded [][]byte) ([][]byte, uint32, aee.Code) {
	// Handle arguments are never accepted on the reverse path.
	if uapi.ScalarsInHandles(sc) != 0 || uapi.ScalarsOutHandles(sc) != 0 {
		return nil, 0, aee.EBadParm
	}

	method := uapi.ScalarsMethod(sc)
	if method == constants.ExtendedMethodSlot {
		// Extended-id protocol: the real method id leads the primary
		// input.
		if len(decoded) == 0 || len(decoded[0]) < 4 {
			return nil, method, aee.EBadParm
		}
		method = binary.LittleEndian.Uint32(decoded[0])
	}

	iface := reg.Lookup(handle)
	if iface == nil {
		return nil, method, aee.EUnsupported
	}

	proc := iface.Proc(method)
	if !proc.Bound() {
		return nil, method, aee.EUnsupported
	}

	geom, err := rpc.ValidateInbound(proc.Def, sc, decoded)
	if err != nil {
		var ae *aee.Error
		if errors.As(err, &ae) && ae.Code == aee.EUnsupported {
			return nil, method, aee.EUnsupported
		}
		return nil, method, aee.EBadParm
	}

	returned := rpc.AllocOutbufs(geom)
	code := proc.Impl(iface.Data, decoded, returned)
	return returned, method, code
}
