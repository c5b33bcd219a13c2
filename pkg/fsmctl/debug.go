package fsmctl

// FSMSnapshot is a point-in-time, introspection-only copy of one FSM's
// scheduling state, intended for admin/debug endpoints rather than for
// driving control flow.
type FSMSnapshot struct {
	ID              string
	StateName       string
	Busy            bool
	Deleting        bool
	StateTimerArmed bool
	OverallArmed    bool
}

// ListFSMs returns a snapshot of every FSM instance owned by this control,
// in no particular order.
func (c *Control) ListFSMs() []FSMSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]FSMSnapshot, 0, len(c.fsms))
	for fsm := range c.fsms {
		name := "<none>"
		if fsm.current != nil {
			name = fsm.current.Name
		}
		out = append(out, FSMSnapshot{
			ID:              fsm.id,
			StateName:       name,
			Busy:            fsm.busy,
			Deleting:        fsm.deleting,
			StateTimerArmed: fsm.stateTimer.armed,
			OverallArmed:    fsm.overallTimer.armed,
		})
	}
	return out
}

// QueueDepth returns the number of events currently queued awaiting
// dispatch.
func (c *Control) QueueDepth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events.Len()
}

// TimerCount returns the number of armed timers (state and overall,
// combined) across every FSM owned by this control.
func (c *Control) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
