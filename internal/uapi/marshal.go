package uapi

import (
	"encoding/binary"
)

// MarshalError is returned when a wire payload cannot be decoded
type MarshalError string

func (e MarshalError) Error() string {
	return string(e)
}

const (
	ErrInsufficientData MarshalError = "insufficient data for unmarshaling"
)

// MarshalInvokeArg serializes an InvokeArg to its 24-byte kernel layout
func MarshalInvokeArg(a *InvokeArg) []byte {
	buf := make([]byte, 24)

	binary.LittleEndian.PutUint64(buf[0:8], a.Ptr)
	binary.LittleEndian.PutUint64(buf[8:16], a.Length)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(a.Fd))
	binary.LittleEndian.PutUint32(buf[20:24], a.Attr)

	return buf
}

// UnmarshalInvokeArg decodes the 24-byte kernel layout
func UnmarshalInvokeArg(data []byte, a *InvokeArg) error {
	if len(data) < 24 {
		return ErrInsufficientData
	}

	a.Ptr = binary.LittleEndian.Uint64(data[0:8])
	a.Length = binary.LittleEndian.Uint64(data[8:16])
	a.Fd = int32(binary.LittleEndian.Uint32(data[16:20]))
	a.Attr = binary.LittleEndian.Uint32(data[20:24])

	return nil
}

// MarshalInvoke serializes an Invoke to its 16-byte kernel layout
func MarshalInvoke(inv *Invoke) []byte {
	buf := make([]byte, 16)

	binary.LittleEndian.PutUint32(buf[0:4], inv.Handle)
	binary.LittleEndian.PutUint32(buf[4:8], inv.Sc)
	binary.LittleEndian.PutUint64(buf[8:16], inv.Args)

	return buf
}

// UnmarshalInvoke decodes the 16-byte kernel layout
func UnmarshalInvoke(data []byte, inv *Invoke) error {
	if len(data) < 16 {
		return ErrInsufficientData
	}

	inv.Handle = binary.LittleEndian.Uint32(data[0:4])
	inv.Sc = binary.LittleEndian.Uint32(data[4:8])
	inv.Args = binary.LittleEndian.Uint64(data[8:16])

	return nil
}
