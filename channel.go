package hexagonrpc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/linux-msm/hexagonrpc/internal/aee"
	"github.com/linux-msm/hexagonrpc/internal/constants"
	"github.com/linux-msm/hexagonrpc/internal/logging"
	"github.com/linux-msm/hexagonrpc/internal/remote"
	"github.com/linux-msm/hexagonrpc/internal/rpc"
	"github.com/linux-msm/hexagonrpc/internal/uapi"
)

// Channel is one FastRPC device session. The file descriptor may be
// shared across threads: the kernel serializes invocations as it sees
// fit and the engine keeps all marshalling state call-local.
type Channel struct {
	fd     int
	path   string
	logger *logging.Logger
}

// Compile-time interface check
var _ Transport = (*Channel)(nil)

// Open opens a FastRPC device node (e.g. /dev/fastrpc-adsp).
func Open(path string) (*Channel, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	return &Channel{fd: fd, path: path, logger: logging.Default()}, nil
}

// FromEnv builds a channel from the file descriptor a parent daemon
// exported through HEXAGONRPC_FD. Client programs use this to issue
// forward calls on the daemon's session without reopening the device.
func FromEnv() (*Channel, error) {
	v := os.Getenv(constants.EnvChannelFd)
	if v == "" {
		return nil, fmt.Errorf("%s is not set", constants.EnvChannelFd)
	}
	fd, err := strconv.Atoi(v)
	if err != nil || fd < 0 {
		return nil, fmt.Errorf("%s=%q is not a file descriptor", constants.EnvChannelFd, v)
	}
	return &Channel{fd: fd, path: "<inherited>", logger: logging.Default()}, nil
}

// Fd exposes the raw descriptor, e.g. for exporting to child processes.
func (c *Channel) Fd() int {
	return c.fd
}

// Close releases the device descriptor.
func (c *Channel) Close() error {
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}

// SetLogger overrides the channel's logger.
func (c *Channel) SetLogger(logger *logging.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

func (c *Channel) ioctl(req uint32, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(c.fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Attach joins the session to the DSP's root protection domain.
func (c *Channel) Attach() error {
	if err := c.ioctl(uapi.FASTRPC_IOCTL_INIT_ATTACH, nil); err != nil {
		return aee.WrapError("INIT_ATTACH", err)
	}
	return nil
}

// AttachSensors joins the sensors protection domain instead of the
// root one.
func (c *Channel) AttachSensors() error {
	if err := c.ioctl(uapi.FASTRPC_IOCTL_INIT_ATTACH_SNS, nil); err != nil {
		return aee.WrapError("INIT_ATTACH_SNS", err)
	}
	return nil
}

// CreateStaticPD attaches to a preallocated named protection domain
// such as "audiopd".
func (c *Channel) CreateStaticPD(name string, memLen uint32) error {
	nameb := append([]byte(name), 0)
	req := uapi.InitCreateStatic{
		NameLen: uint32(len(nameb)),
		MemLen:  memLen,
		Name:    uint64(uintptr(unsafe.Pointer(&nameb[0]))),
	}
	err := c.ioctl(uapi.FASTRPC_IOCTL_INIT_CREATE_STATIC, unsafe.Pointer(&req))
	runtime.KeepAlive(nameb)
	if err != nil {
		return aee.WrapError("INIT_CREATE_STATIC", err)
	}
	return nil
}

// Invoke submits one kernel invocation. It implements the Transport
// contract the marshaller drives; the slots are pinned only for the
// duration of the ioctl.
func (c *Channel) Invoke(handle uint32, sc uint32, slots []Slot) error {
	var kargs []uapi.InvokeArg
	var argsPtr uint64

	if len(slots) > 0 {
		kargs = make([]uapi.InvokeArg, len(slots))
		for i, s := range slots {
			kargs[i] = uapi.InvokeArg{
				Length: uint64(len(s.Buf)),
				Fd:     s.Fd,
				Attr:   s.Attr,
			}
			if len(s.Buf) > 0 {
				kargs[i].Ptr = uint64(uintptr(unsafe.Pointer(&s.Buf[0])))
			}
		}
		argsPtr = uint64(uintptr(unsafe.Pointer(&kargs[0])))
	}

	inv := uapi.Invoke{Handle: handle, Sc: sc, Args: argsPtr}
	err := c.ioctl(uapi.FASTRPC_IOCTL_INVOKE, unsafe.Pointer(&inv))
	runtime.KeepAlive(kargs)
	runtime.KeepAlive(slots)
	return err
}

// OpenHandle resolves a named interface on the peer through
// remotectl.open and returns its handle.
func (c *Channel) OpenHandle(name string) (uint32, error) {
	return OpenHandle(c, name)
}

// CloseHandle releases a handle obtained from OpenHandle.
func (c *Channel) CloseHandle(handle uint32) error {
	return CloseHandle(c, handle)
}

// OpenHandle resolves a named interface on the peer through
// remotectl.open and returns its handle.
func OpenHandle(t Transport, name string) (uint32, error) {
	nameb := append([]byte(name), 0)
	handleW := make([]byte, 4)
	statusW := make([]byte, 4)
	errBuf := make([]byte, constants.RemotectlErrorSize)

	err := rpc.Invoke(t, remote.RemotectlOpen, constants.RemotectlHandle,
		Seq{Count: uint32(len(nameb)), Data: nameb},
		OutBlob(handleW),
		OutSeq{Max: constants.RemotectlErrorSize, Dst: errBuf},
		OutBlob(statusW),
	)
	if err != nil {
		return 0, err
	}

	if status := binary.LittleEndian.Uint32(statusW); status != 0 {
		return 0, aee.NewError("REMOTECTL_OPEN", aee.Code(status), errString(errBuf))
	}

	return binary.LittleEndian.Uint32(handleW), nil
}

// CloseHandle releases a handle obtained from OpenHandle.
func CloseHandle(t Transport, handle uint32) error {
	statusW := make([]byte, 4)
	errBuf := make([]byte, constants.RemotectlErrorSize)

	err := rpc.Invoke(t, remote.RemotectlClose, constants.RemotectlHandle,
		Word32(handle),
		OutSeq{Max: constants.RemotectlErrorSize, Dst: errBuf},
		OutBlob(statusW),
	)
	if err != nil {
		return err
	}

	if status := binary.LittleEndian.Uint32(statusW); status != 0 {
		return aee.NewError("REMOTECTL_CLOSE", aee.Code(status), errString(errBuf))
	}

	return nil
}

// RegisterDefaultListener announces this process as the session's
// reverse tunnel endpoint: open the default listener interface by name,
// invoke register on it, and release the handle.
func RegisterDefaultListener(t Transport) error {
	hdl, err := OpenHandle(t, "adsp_default_listener")
	if err != nil {
		return err
	}
	defer CloseHandle(t, hdl)

	return rpc.Invoke(t, remote.DefaultListenerRegister, hdl)
}

// errString cuts a NUL-terminated peer error message out of its buffer.
func errString(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}
