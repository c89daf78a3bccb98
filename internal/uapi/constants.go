// Package uapi provides Linux kernel UAPI definitions for the FastRPC
// character device (misc/fastrpc.h)
package uapi

// ioctl encoding constants
const (
	_IOC_NONE      = 0
	_IOC_WRITE     = 1
	_IOC_READ      = 2
	_IOC_SIZEBITS  = 14
	_IOC_TYPEBITS  = 8
	_IOC_NRBITS    = 8
	_IOC_NRSHIFT   = 0
	_IOC_TYPESHIFT = _IOC_NRSHIFT + _IOC_NRBITS
	_IOC_SIZESHIFT = _IOC_TYPESHIFT + _IOC_TYPEBITS
	_IOC_DIRSHIFT  = _IOC_SIZESHIFT + _IOC_SIZEBITS
)

// IoctlEncode creates an ioctl command number
func IoctlEncode(dir, typ, nr, size uint32) uint32 {
	return (dir << _IOC_DIRSHIFT) |
		(size << _IOC_SIZESHIFT) |
		(typ << _IOC_TYPESHIFT) |
		(nr << _IOC_NRSHIFT)
}

// FastRPC ioctl numbers ('R' command space)
var (
	FASTRPC_IOCTL_ALLOC_DMA_BUFF     = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 1, 16)
	FASTRPC_IOCTL_FREE_DMA_BUFF      = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 2, 4)
	FASTRPC_IOCTL_INVOKE             = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 3, 16)
	FASTRPC_IOCTL_INIT_ATTACH        = IoctlEncode(_IOC_NONE, 'R', 4, 0)
	FASTRPC_IOCTL_INIT_CREATE        = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 5, 24)
	FASTRPC_IOCTL_MMAP               = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 6, 32)
	FASTRPC_IOCTL_MUNMAP             = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 7, 16)
	FASTRPC_IOCTL_INIT_ATTACH_SNS    = IoctlEncode(_IOC_NONE, 'R', 8, 0)
	FASTRPC_IOCTL_INIT_CREATE_STATIC = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 9, 16)
	FASTRPC_IOCTL_MEM_MAP            = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 10, 64)
	FASTRPC_IOCTL_MEM_UNMAP          = IoctlEncode(_IOC_READ|_IOC_WRITE, 'R', 11, 16)
)

// Scalar descriptor layout: [3 attr][5 method][8 in-bufs][8 out-bufs]
// [4 in-handles][4 out-handles]. See fastrpc.git/inc/remote.h.
const (
	scAttrShift    = 29
	scMethodShift  = 24
	scInBufsShift  = 16
	scOutBufsShift = 8
	scInHdlShift   = 4
)

// ScalarsMakeX packs the full scalar descriptor.
func ScalarsMakeX(attr, method uint32, inBufs, outBufs uint8, inHandles, outHandles uint8) uint32 {
	return ((attr & 0x7) << scAttrShift) |
		((method & 0x1f) << scMethodShift) |
		((uint32(inBufs) & 0xff) << scInBufsShift) |
		((uint32(outBufs) & 0xff) << scOutBufsShift) |
		((uint32(inHandles) & 0x0f) << scInHdlShift) |
		(uint32(outHandles) & 0x0f)
}

// ScalarsMake packs a scalar descriptor with zero attributes and no
// handle arguments, the only form this engine emits.
func ScalarsMake(method uint32, inBufs, outBufs uint8) uint32 {
	return ScalarsMakeX(0, method, inBufs, outBufs, 0, 0)
}

// ScalarsMethod extracts the 5-bit method slot
func ScalarsMethod(sc uint32) uint32 {
	return (sc >> scMethodShift) & 0x1f
}

// ScalarsInBufs extracts the input buffer count
func ScalarsInBufs(sc uint32) uint8 {
	return uint8((sc >> scInBufsShift) & 0xff)
}

// ScalarsOutBufs extracts the output buffer count
func ScalarsOutBufs(sc uint32) uint8 {
	return uint8((sc >> scOutBufsShift) & 0xff)
}

// ScalarsInHandles extracts the input handle count
func ScalarsInHandles(sc uint32) uint8 {
	return uint8((sc >> scInHdlShift) & 0x0f)
}

// ScalarsOutHandles extracts the output handle count
func ScalarsOutHandles(sc uint32) uint8 {
	return uint8(sc & 0x0f)
}
