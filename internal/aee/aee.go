// Package aee mirrors the Application Environment Error numbering used
// by the Hexagon peer. These values travel on the wire as dispatch
// results; keep them bit-exact with AEEStdErr.h.
package aee

import "fmt"

// Code is a peer-visible 32-bit result code.
type Code uint32

const (
	OK                  Code = 0
	EFailed             Code = 1
	ENoMemory           Code = 2
	EClassNotSupport    Code = 3
	EVersionNotSupport  Code = 4
	EAlreadyLoaded      Code = 5
	EUnableToLoad       Code = 6
	EUnableToUnload     Code = 7
	EBadState           Code = 13
	EBadParm            Code = 14
	ESchemeNotSupported Code = 15
	EBadItem            Code = 16
	EInvalidFormat      Code = 17
	EUnsupported        Code = 20
	EPrivLevel          Code = 21
	EResourceNotFound   Code = 22
	EReentered          Code = 23
	EBadTask            Code = 24
	EReadOnly           Code = 30
	EHeap               Code = 34
	EItemBusy           Code = 35

	// NoSuchInterface (-5) is what remotectl.open hands back when the
	// named interface does not exist. It predates the AEE numbering.
	NoSuchInterface Code = 0xFFFFFFFB

	// NoPriorCall is the initial listener result, meaning no previous
	// dispatch has happened on this tunnel.
	NoPriorCall Code = 0xFFFFFFFF
)

func (c Code) String() string {
	switch c {
	case OK:
		return "success"
	case EFailed:
		return "operation failed"
	case ENoMemory:
		return "out of memory"
	case EBadState:
		return "bad state"
	case EBadParm:
		return "bad parameter"
	case EInvalidFormat:
		return "invalid format"
	case EUnsupported:
		return "unsupported"
	case EResourceNotFound:
		return "resource not found"
	case EItemBusy:
		return "item busy"
	case NoSuchInterface:
		return "no such interface"
	case NoPriorCall:
		return "no prior call"
	default:
		return fmt.Sprintf("AEE error %d", uint32(c))
	}
}
