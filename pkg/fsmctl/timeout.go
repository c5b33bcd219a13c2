package fsmctl

import (
	"time"

	"github.com/marmos91/corectl/internal/corelog"
)

// SetTimeout arms (or, given timeout<=0, clears) the FSM's overall timeout:
// a single deadline independent of whatever state it's currently in. If the
// deadline is reached before anything else deactivates the FSM, action runs
// on the worker goroutine exactly as a transition action would. Calling
// SetTimeout again before the deadline replaces both the action and the
// deadline; it does not stack.
//
// Unlike a per-state Timeout, the overall timeout survives state
// transitions — it is cleared only by an explicit SetTimeout(nil, 0),
// by Stop, or by Free.
func (fsm *FSM) SetTimeout(action ActionFunc, timeout time.Duration) {
	c := fsm.control
	c.mu.Lock()
	defer c.mu.Unlock()

	if fsm.deleting {
		return
	}

	if timeout <= 0 {
		c.clearTimer(&fsm.overallTimer)
		fsm.overallFunc = nil
		return
	}

	c.clearTimer(&fsm.overallTimer)
	fsm.overallFunc = action
	deadline := time.Now().Add(timeout)
	c.armTimer(&fsm.overallTimer, deadline)

	if d, ok := c.nextDeadlineLocked(); ok && d.Equal(deadline) {
		corelog.Debug("overall timeout armed", corelog.TimeoutKind("overall"))
		c.wakeLocked()
	}
}
