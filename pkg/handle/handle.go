// Package handle implements the entity handle server: a process-wide table
// mapping small positive int32 handles to *Link values, each carrying a
// packed pin-count/refcount/flags word that every operation advances with a
// single atomic compare-and-swap.
//
// # The packed word
//
// Link.cntFlags packs four things into one uint32 so every state change is
// one atomic op instead of several:
//
//	bit 31        closing           (no new pins will succeed)
//	bit 30        delete-deferred   (delete requested, refs still held)
//	bit 29        pending           (handle allocated, not yet published)
//	bit 28        implicit          (created as a side effect of a parent)
//	bit 27        allow-children    (refcount field counts children, not pins)
//	bit 26        no-user-access    (internal handle, application can't pin it)
//	bits 12-25    refcount          (HDL_REFCOUNT_UNIT-sized steps)
//	bits 0-11     pincount          (active Pin/PinForDelete claims)
//
// A handle can only be removed from the table once its pincount reaches
// zero; Close sets the closing flag to reject new pins, CloseWait blocks
// until the last existing pin releases, and Delete then removes the entry.
package handle

import (
	"strings"
	"sync/atomic"
)

// Handle identifies an entity. Positive values are valid; zero is never
// issued.
type Handle int32

const (
	flagClosing        uint32 = 0x80000000
	flagDeleteDeferred uint32 = 0x40000000
	flagPending        uint32 = 0x20000000
	flagImplicit       uint32 = 0x10000000
	flagAllowChildren  uint32 = 0x08000000
	flagNoUserAccess   uint32 = 0x04000000

	refcountMask  uint32 = 0x03fff000
	refcountUnit  uint32 = 0x00001000
	refcountShift        = 12
	pincountMask  uint32 = 0x00000fff
)

// minPseudoHandle is the exclusive upper bound of the values Create's random
// generator produces; values at and above it are left for RegisterSpecial.
const minPseudoHandle = 1 << 20

// maxHandles bounds how many live handles the server tracks at once; it
// exists because Create's random-retry allocator gets slower as the table
// fills, not because int32 runs out sooner.
const maxHandles = (1 << 31) / 128

// Link is the handle-table entry for one entity. The zero value is not
// usable; obtain one via Server.Create or Server.RegisterSpecial.
type Link struct {
	Hdl      Handle
	cntFlags atomic.Uint32
}

// refcount returns the current refcount field, in units (not shifted steps).
func (l *Link) refcount() uint32 {
	return (l.cntFlags.Load() & refcountMask) >> refcountShift
}

// pincount returns the current pincount field.
func (l *Link) pincount() uint32 {
	return l.cntFlags.Load() & pincountMask
}

// IsClosed reports whether Close has been called on this link. Intended
// for a thread already holding a pin to notice a concurrent close request
// without needing to go through the server.
func (l *Link) IsClosed() bool {
	return l.cntFlags.Load()&flagClosing != 0
}

// IsNotRefd reports whether the link's refcount has reached zero.
func (l *Link) IsNotRefd() bool {
	return l.cntFlags.Load()&refcountMask == 0
}

// flagString renders the symbolic flag bits of a packed word for logging.
func flagString(cf uint32) string {
	var names []string
	if cf&flagClosing != 0 {
		names = append(names, "closing")
	}
	if cf&flagDeleteDeferred != 0 {
		names = append(names, "delete-deferred")
	}
	if cf&flagPending != 0 {
		names = append(names, "pending")
	}
	if cf&flagImplicit != 0 {
		names = append(names, "implicit")
	}
	if cf&flagAllowChildren != 0 {
		names = append(names, "allow-children")
	}
	if cf&flagNoUserAccess != 0 {
		names = append(names, "no-user-access")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
