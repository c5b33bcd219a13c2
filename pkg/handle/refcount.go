package handle

// AddRef adds one refcount unit to a link the caller already holds a pin
// on. Used when a second entity is about to start depending on this one's
// lifetime (e.g. a reader depending on its topic).
func (s *Server) AddRef(link *Link) {
	link.cntFlags.Add(refcountUnit)
}

// DropRef removes one refcount unit. If that was the link's last
// reference and a delete had been deferred waiting for it (see
// PinForDelete's TryAgain path), DropRef finishes what the deferred
// caller started: it pins and closes the link itself, since nobody is
// left blocked on CloseWait to do so, and wakes Server.cond so any
// CloseWait in progress notices the closing flag.
//
// DropRef reports the link it finished closing, or nil if no deferred
// delete was waiting.
func (s *Server) DropRef(link *Link) *Link {
	for {
		cf := link.cntFlags.Load()
		next := cf - refcountUnit

		if cf&flagDeleteDeferred != 0 && next&refcountMask == 0 {
			cf1 := (next + 1) | flagClosing
			if !link.cntFlags.CompareAndSwap(cf, cf1) {
				continue
			}
			s.cond.L.Lock()
			s.cond.Broadcast()
			s.cond.L.Unlock()
			return link
		}

		if link.cntFlags.CompareAndSwap(cf, next) {
			return nil
		}
	}
}

// Unpin releases one pin claimed by Pin, Repin, Create, or
// RegisterSpecial. If this brings pincount down to one (only the
// PinForDelete caller's own pin left) and the link is closing, Unpin
// wakes any goroutine blocked in CloseWait.
func (s *Server) Unpin(link *Link) {
	cf := link.cntFlags.Add(^uint32(0)) // -1, wrapping subtract
	if cf&pincountMask == 1 && cf&flagClosing != 0 {
		s.cond.L.Lock()
		s.cond.Broadcast()
		s.cond.L.Unlock()
	}
}

// UnpinAndDropRef is Unpin followed by DropRef, for the common case of
// releasing both in one step.
func (s *Server) UnpinAndDropRef(link *Link) *Link {
	s.Unpin(link)
	return s.DropRef(link)
}

// Close marks link as closing: no further Pin or PinAndRef call will
// succeed against it, though pins already outstanding remain valid until
// their holders call Unpin. Close does not wait for those pins to drain;
// call CloseWait for that.
func (s *Server) Close(link *Link) {
	link.cntFlags.Or(flagClosing)
}

// CloseWait blocks until link's pincount reaches one: the caller's own pin
// from PinForDelete, with every other outstanding pin having dropped. The
// caller must have already called Close (directly or via PinForDelete,
// which closes as part of pinning); CloseWait does not itself prevent new
// pins. The caller's own pin is never separately unpinned here; it is the
// caller's responsibility to Unpin once CloseWait returns, before Delete.
func (s *Server) CloseWait(link *Link) {
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	for link.cntFlags.Load()&pincountMask != 1 {
		s.cond.Wait()
	}
}
