package handle

import "github.com/marmos91/corectl/internal/corerr"

// Pin looks up hdl and, if it resolves to a live, non-closing, non-pending
// link that the caller is allowed to touch, adds one to its pincount.
// fromUser should be true for calls originating from application code
// (these additionally respect the NoUserAccess flag) and false for calls
// internal to this module's own bookkeeping.
func (s *Server) Pin(hdl Handle, fromUser bool) (*Link, error) {
	return s.pinDelta(hdl, 1, fromUser)
}

// PinAndRef is Pin plus one additional refcount unit, used when the caller
// is both claiming a pin and taking a durable reference in one step.
func (s *Server) PinAndRef(hdl Handle, fromUser bool) (*Link, error) {
	return s.pinDelta(hdl, refcountUnit+1, fromUser)
}

func (s *Server) pinDelta(hdl Handle, delta uint32, fromUser bool) (*Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[hdl]
	if !ok {
		return nil, corerr.NewBadParameterError("handle not found")
	}

	for {
		cf := link.cntFlags.Load()
		if cf&(flagClosing|flagPending) != 0 {
			return nil, corerr.NewBadParameterError("handle is closing or not yet published")
		}
		if cf&flagNoUserAccess != 0 && fromUser {
			return nil, corerr.NewBadParameterError("handle is not user-accessible")
		}
		if link.cntFlags.CompareAndSwap(cf, cf+delta) {
			return link, nil
		}
	}
}

// Repin adds one to the pincount unconditionally. Used when a caller
// already holds a pin (so closing/pending can't apply to it) and needs a
// second one, e.g. to hand off to a callback that releases its own.
func (s *Server) Repin(link *Link) {
	link.cntFlags.Add(1)
}

// PinForDelete advances a link towards deletion and reports what the
// caller must do next:
//   - nil error: link is now pinned and marked closing; proceed to close,
//     wait, and delete it (and, if allowChildren, its children).
//   - AlreadyDeleted: a delete of this link was already deferred and the
//     reference it waits on is still outstanding.
//   - IllegalOperation: an implicit call tried to delete an explicit
//     parent, which only an explicit call may do.
//   - TryAgain: the delete cannot proceed yet. If a reference is still
//     outstanding (and allowChildren doesn't apply), the link is marked
//     delete-deferred and the DropRef that releases that reference pins
//     and closes it; repeating PinForDelete meanwhile reports
//     AlreadyDeleted. An implicit call on an implicit parent that still has
//     other children only drops the caller's child reference.
//
// explicitCall distinguishes an application-initiated delete from one a
// child triggers on its implicit parent as a side effect of its own
// deletion. fromUser applies the same NoUserAccess check as Pin.
func (s *Server) PinForDelete(hdl Handle, explicitCall, fromUser bool) (*Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[hdl]
	if !ok {
		return nil, corerr.NewBadParameterError("handle not found")
	}

	for {
		cf := link.cntFlags.Load()
		var cf1 uint32
		var tryAgain bool

		switch {
		case fromUser && cf&flagNoUserAccess != 0:
			return nil, corerr.NewBadParameterError("handle is not user-accessible")

		case cf&(flagClosing|flagPending) != 0:
			return nil, corerr.NewBadParameterError("handle already closing or not yet published")

		case cf&flagDeleteDeferred != 0:
			if cf&refcountMask != 0 {
				return nil, corerr.NewAlreadyDeletedError(int32(hdl))
			}
			cf1 = ((cf &^ flagDeleteDeferred) + 1) | flagClosing

		case explicitCall:
			cf1, tryAgain = pinForDeleteExplicit(cf)

		default:
			if cf&flagImplicit == 0 {
				return nil, corerr.NewIllegalOperationError(int32(hdl), "child cannot delete an explicit parent")
			}
			cf1, tryAgain = pinForDeleteImplicitChild(cf)
		}

		if !link.cntFlags.CompareAndSwap(cf, cf1) {
			continue
		}
		if tryAgain {
			return nil, corerr.NewTryAgainError(int32(hdl))
		}
		return link, nil
	}
}

// pinForDeleteExplicit computes the next packed word for an
// application-initiated (or parent-cascading) delete request.
func pinForDeleteExplicit(cf uint32) (cf1 uint32, tryAgain bool) {
	if cf&flagImplicit != 0 {
		return (cf + 1) | flagClosing, false
	}
	switch {
	case cf&refcountMask == refcountUnit:
		return (cf - refcountUnit + 1) | flagClosing, false
	case cf&flagAllowChildren == 0:
		next := cf - refcountUnit
		if next&refcountMask == 0 {
			return (next + 1) | flagClosing, false
		}
		return next | flagDeleteDeferred, true
	default:
		return (cf - refcountUnit + 1) | flagClosing, false
	}
}

// pinForDeleteImplicitChild computes the next packed word for a child
// entity cascading a delete onto its implicit parent.
func pinForDeleteImplicitChild(cf uint32) (cf1 uint32, tryAgain bool) {
	switch {
	case cf&refcountMask == refcountUnit:
		return (cf - refcountUnit + 1) | flagClosing, false
	case cf&flagAllowChildren == 0:
		next := cf - refcountUnit
		if next&refcountMask == 0 {
			return (next + 1) | flagClosing, false
		}
		return next | flagDeleteDeferred, true
	default:
		return cf - refcountUnit, true
	}
}

// DropChildrefAndPin drops one child reference from a parent link and
// reports whether the caller (the last child to detach) must now delete
// the parent itself: true only for an implicit parent whose last child
// just left and mayDeleteParent was set. In that case the parent is also
// pinned and marked closing, as PinForDelete would leave it.
func (s *Server) DropChildrefAndPin(link *Link, mayDeleteParent bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		cf := link.cntFlags.Load()
		var cf1 uint32
		var delParent bool

		switch {
		case cf&(flagClosing|flagPending) != 0:
			cf1 = cf - refcountUnit
		case cf&flagImplicit != 0 && cf&refcountMask == refcountUnit && mayDeleteParent:
			cf1 = (cf - refcountUnit + 1) | flagClosing
			delParent = true
		default:
			cf1 = cf - refcountUnit
		}

		if link.cntFlags.CompareAndSwap(cf, cf1) {
			return delParent
		}
	}
}
