package handle

import (
	"math/rand/v2"
	"sync"

	"github.com/marmos91/corectl/internal/corelog"
	"github.com/marmos91/corectl/internal/corerr"
)

// Server is the handle table: a map guarded by a mutex for structural
// changes (create/delete) plus a condition variable CloseWait blocks on
// while waiting for a link's last pin to release.
type Server struct {
	mu    sync.Mutex
	cond  *sync.Cond
	links map[Handle]*Link
}

// NewServer creates an empty handle table.
func NewServer() *Server {
	s := &Server{links: make(map[Handle]*Link)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

var (
	defaultMu     sync.Mutex
	defaultServer *Server
)

// ServerInit lazily creates the process-wide handle table. Safe to call
// more than once; only the first call has an effect.
func ServerInit() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultServer == nil {
		defaultServer = NewServer()
	}
	return nil
}

// ServerFini discards the process-wide handle table. Safe to call when
// ServerInit was never called.
func ServerFini() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultServer = nil
}

// Default returns the process-wide handle table, or nil if ServerInit has
// not been called.
func Default() *Server {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultServer
}

// Create allocates a fresh handle and Link for a new entity and inserts it
// into the table in the Pending state: pinned once, closed to nobody else
// yet, with the refcount seeded according to implicit/allowChildren.
//
// implicit marks an entity created as a side effect of its parent (its
// handle does not itself hold a reference on the parent's lifetime the way
// an explicitly-created entity's does). allowChildren makes the refcount
// field count live children instead of pins. userAccess false reserves the
// handle so only this module's own operations can pin it, never a caller
// going through the public API with a raw handle value.
//
// The returned Link is already in Server.links; callers finish setup and
// then call Unpend to make it externally visible.
func (s *Server) Create(implicit, allowChildren, userAccess bool) (*Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.links) >= maxHandles {
		return nil, corerr.NewOutOfResourcesError("handle table full")
	}

	flags := flagPending
	if implicit {
		flags |= flagImplicit
	} else {
		flags |= refcountUnit
	}
	if allowChildren {
		flags |= flagAllowChildren
	}
	if !userAccess {
		flags |= flagNoUserAccess
	}

	link := &Link{}
	link.cntFlags.Store(flags | 1)

	for {
		hdl := Handle(rand.Int32N(1<<31-1) + 1)
		if hdl == 0 || int(hdl) >= minPseudoHandle {
			continue
		}
		if _, exists := s.links[hdl]; exists {
			continue
		}
		link.Hdl = hdl
		s.links[hdl] = link
		break
	}

	corelog.Debug("handle created", corelog.Handle(int32(link.Hdl)), corelog.Flags(flagString(flags)))
	return link, nil
}

// RegisterSpecial inserts a Link at a caller-chosen handle value (used for
// the small number of built-in entities allocated before the table's
// normal random-handle allocator would ever produce their value).
func (s *Server) RegisterSpecial(implicit, allowChildren bool, want Handle) (*Link, error) {
	if want <= 0 {
		return nil, corerr.NewBadParameterError("registered handle must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.links) >= maxHandles {
		return nil, corerr.NewOutOfResourcesError("handle table full")
	}
	if _, exists := s.links[want]; exists {
		return nil, corerr.NewBadParameterError("handle already registered")
	}

	flags := flagPending
	if implicit {
		flags |= flagImplicit
	} else {
		flags |= refcountUnit
	}
	if allowChildren {
		flags |= flagAllowChildren
	}

	link := &Link{Hdl: want}
	link.cntFlags.Store(flags | 1)
	s.links[want] = link
	return link, nil
}

// Unpend clears the Pending flag, making the link visible to Pin, and
// drops the setup-time pin Create/RegisterSpecial left in place.
func (s *Server) Unpend(link *Link) {
	link.cntFlags.And(^flagPending)
	s.Unpin(link)
}

// Delete removes link from the table. The caller must have already closed
// the link, waited out every other outstanding pin (Close then CloseWait),
// and released its own remaining pin (Unpin); Delete itself does no
// waiting and does not check pincount.
func (s *Server) Delete(link *Link) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, link.Hdl)
}
