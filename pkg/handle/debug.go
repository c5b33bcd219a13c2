package handle

// Snapshot is a point-in-time, lock-free-to-read copy of one table entry,
// intended for introspection (admin/debug endpoints, tests) rather than for
// driving control flow: by the time a caller observes it, the live Link may
// already have moved on.
type Snapshot struct {
	Hdl            Handle
	PinCount       uint32
	RefCount       uint32
	Flags          string
	Closing        bool
	DeleteDeferred bool
	Pending        bool
	Implicit       bool
	AllowChildren  bool
	NoUserAccess   bool
}

// ListHandles returns a snapshot of every live entry in the table, in no
// particular order.
func (s *Server) ListHandles() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Snapshot, 0, len(s.links))
	for hdl, link := range s.links {
		cf := link.cntFlags.Load()
		out = append(out, Snapshot{
			Hdl:            hdl,
			PinCount:       cf & pincountMask,
			RefCount:       (cf & refcountMask) >> refcountShift,
			Flags:          flagString(cf),
			Closing:        cf&flagClosing != 0,
			DeleteDeferred: cf&flagDeleteDeferred != 0,
			Pending:        cf&flagPending != 0,
			Implicit:       cf&flagImplicit != 0,
			AllowChildren:  cf&flagAllowChildren != 0,
			NoUserAccess:   cf&flagNoUserAccess != 0,
		})
	}
	return out
}

// Count returns the number of live entries in the table.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}
