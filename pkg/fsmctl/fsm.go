// Package fsmctl implements a cooperative, single-threaded finite state
// machine scheduler: a table-driven transition table, a FIFO/LIFO event
// queue, and one worker goroutine per control that drains events and armed
// timeouts and runs transition actions with the control lock released.
//
// A Control owns zero or more FSM instances and the single worker goroutine
// that drives all of them. An FSM never runs its own action concurrently
// with itself or with another FSM sharing the same control: handleEvent
// holds the control lock for everything except the action call itself.
package fsmctl

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/corectl/internal/corelog"
	"github.com/marmos91/corectl/internal/corerr"
)

// Event IDs below EventUser are reserved; application transition tables use
// non-negative event IDs of their own choosing.
const (
	// EventAuto fires immediately on entry to any state that has a
	// transition registered for it, without anything dispatching it.
	EventAuto int32 = -1
	// EventTimeout fires when a state's Timeout elapses with no other
	// event having moved the FSM out of that state first.
	EventTimeout int32 = -2
	// EventDelete fires nothing itself; it marks the reserved low end of
	// the built-in event ID range.
	EventDelete int32 = -3
)

// ActionFunc is run by the worker goroutine with the control lock released.
// It must not call back into the control synchronously from a goroutine
// other than the one it's given (re-entrant Dispatch from within an action
// is fine; anything else risks the action observing a half-applied state).
type ActionFunc func(fsm *FSM, arg any)

// DebugAction identifies which point in the dispatch/handling cycle a debug
// hook is being invoked for.
type DebugAction int

const (
	// DebugDispatch marks an event queued via the normal FIFO path.
	DebugDispatch DebugAction = iota
	// DebugDispatchDirect marks an event queued via the LIFO/priority path
	// (used for EventAuto and EventTimeout, which must preempt whatever
	// else is already queued).
	DebugDispatchDirect
	// DebugHandling marks the point where a queued event is about to be
	// matched against the transition table.
	DebugHandling
)

// DebugFunc observes every dispatch and handling step, primarily useful for
// tests and tracing; it is never required for correct operation.
type DebugFunc func(fsm *FSM, action DebugAction, current *State, eventID int32, arg any)

// State is one node of a transition table: an optional entry action run
// whenever the FSM lands on this state, and an optional timeout after which
// EventTimeout fires if nothing else has moved the FSM on.
type State struct {
	Name    string
	Func    ActionFunc
	Timeout time.Duration
}

// Transition is one edge of the table: from Begin, on EventID, run Func (if
// set) and land on End.
type Transition struct {
	Begin   *State
	EventID int32
	Func    ActionFunc
	End     *State
}

// FSM is one running instance of a transition table. Create one per
// protocol exchange or managed resource; many FSMs can share one Control.
type FSM struct {
	id          string
	control     *Control
	transitions []Transition
	arg         any

	current  *State
	deleting bool
	busy     bool

	stateTimer   timerEvent
	overallTimer timerEvent
	overallFunc  ActionFunc

	debugFunc DebugFunc
}

type event struct {
	fsm     *FSM
	eventID int32
}

// Control is the single worker goroutine and its shared event queue and
// timer heap. All FSMs it owns are serialized onto that one goroutine;
// actions never run concurrently with each other.
type Control struct {
	mu      sync.Mutex
	cond    *sync.Cond
	running bool
	fsms    map[*FSM]struct{}
	events  *list.List // of *event, front = next to dispatch
	timers  timerHeap
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

// ControlCreate allocates a control with no worker goroutine running yet;
// call ControlStart to begin dispatching.
func ControlCreate() *Control {
	c := &Control{
		fsms:   make(map[*FSM]struct{}),
		events: list.New(),
		wake:   make(chan struct{}, 1),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// ControlStart launches the worker goroutine. name is used only for log
// correlation.
func (c *Control) ControlStart(name string) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return corerr.NewPreconditionNotMetError(0, "fsm control already running")
	}
	c.running = true
	c.done = make(chan struct{})
	c.stopped = make(chan struct{})
	c.mu.Unlock()

	go c.run(name)
	return nil
}

// ControlStop signals the worker goroutine to exit and waits for it to
// drain its current action (if any) before returning.
func (c *Control) ControlStop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.done)
	<-c.stopped
}

// ControlFree stops every FSM owned by this control (running their delete
// path to completion) and releases their resources. The control itself must
// not be running.
func (c *Control) ControlFree() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for fsm := range c.fsms {
		c.deactivateLocked(fsm)
		for fsm.busy {
			c.cond.Wait()
		}
	}
	c.fsms = make(map[*FSM]struct{})
	c.events = list.New()
}

// Create registers a new FSM instance against this control's transition
// table. The FSM starts with no current state; call Start to enter it.
func Create(control *Control, transitions []Transition, arg any) *FSM {
	fsm := &FSM{
		id:          uuid.NewString(),
		control:     control,
		transitions: transitions,
		arg:         arg,
	}
	fsm.stateTimer.fsm = fsm
	fsm.stateTimer.kind = timerKindState
	fsm.overallTimer.fsm = fsm
	fsm.overallTimer.kind = timerKindOverall

	control.mu.Lock()
	control.fsms[fsm] = struct{}{}
	control.mu.Unlock()
	return fsm
}

// Start dispatches the built-in auto-transition event, entering whatever
// state the table designates as the starting point.
func (fsm *FSM) Start() {
	fsm.Dispatch(EventAuto, false)
}

// ID returns this FSM instance's correlation ID, generated once at Create
// and stable for the FSM's lifetime. Used to tie log lines and debug
// snapshots for one instance together, never to address or look it up.
func (fsm *FSM) ID() string {
	return fsm.id
}

// SetDebug installs (or clears, with nil) a debug hook on this FSM.
func (fsm *FSM) SetDebug(fn DebugFunc) {
	fsm.control.mu.Lock()
	defer fsm.control.mu.Unlock()
	fsm.debugFunc = fn
}

// Running reports whether the FSM has entered a state, or is mid-action.
func (fsm *FSM) Running() bool {
	c := fsm.control
	c.mu.Lock()
	defer c.mu.Unlock()
	return fsm.current != nil || fsm.busy
}

// Dispatch queues eventID for this FSM. lifo queues it ahead of everything
// else pending (used internally for EventAuto/EventTimeout, and available
// to callers that need an event to preempt a backlog); otherwise it's
// appended to the back of the FIFO.
func (fsm *FSM) Dispatch(eventID int32, lifo bool) {
	c := fsm.control
	c.mu.Lock()
	if fsm.deleting {
		c.mu.Unlock()
		return
	}
	c.dispatchLocked(fsm, eventID, lifo)
	c.mu.Unlock()
	c.wakeLocked()
}

// Stop deactivates the FSM: clears its timers, drops its queued events, and
// marks it unable to accept new ones. The FSM can no longer transition
// after this returns, but it is not removed from the control (use Free for
// that).
func (fsm *FSM) Stop() {
	c := fsm.control
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivateLocked(fsm)
}

// Free stops the FSM (if not already) and removes it from its control,
// blocking until any in-flight action finishes.
func (fsm *FSM) Free() {
	c := fsm.control
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deactivateLocked(fsm)
	for fsm.busy {
		c.cond.Wait()
	}
	delete(c.fsms, fsm)
}

func (c *Control) deactivateLocked(fsm *FSM) {
	fsm.deleting = true
	c.removeEventsLocked(fsm)
	c.clearTimer(&fsm.stateTimer)
	c.clearTimer(&fsm.overallTimer)
	fsm.current = nil
}

func (c *Control) dispatchLocked(fsm *FSM, eventID int32, lifo bool) {
	if fsm.debugFunc != nil {
		act := DebugDispatch
		if lifo {
			act = DebugDispatchDirect
		}
		fsm.debugFunc(fsm, act, fsm.current, eventID, fsm.arg)
	}
	e := &event{fsm: fsm, eventID: eventID}
	if lifo {
		c.events.PushFront(e)
	} else {
		c.events.PushBack(e)
	}
}

func (c *Control) removeEventsLocked(fsm *FSM) {
	for el := c.events.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*event).fsm == fsm {
			c.events.Remove(el)
		}
		el = next
	}
}

// wakeLocked nudges the worker goroutine; safe to call without holding
// c.mu. The channel is buffered 1 with a non-blocking send, so redundant
// wakeups while the loop is already awake are free.
func (c *Control) wakeLocked() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Control) run(name string) {
	defer close(c.stopped)
	corelog.Debug("fsm control started", corelog.FSMID(name))
	for {
		c.mu.Lock()
		if !c.running {
			c.mu.Unlock()
			return
		}
		if el := c.events.Front(); el != nil {
			c.events.Remove(el)
			ev := el.Value.(*event)
			c.mu.Unlock()
			c.handleEvent(ev)
			continue
		}
		deadline, ok := c.nextDeadlineLocked()
		c.mu.Unlock()

		if !ok {
			select {
			case <-c.wake:
			case <-c.done:
				return
			}
			continue
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			c.fireExpiredTimer()
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-c.wake:
			timer.Stop()
		case <-timer.C:
		case <-c.done:
			timer.Stop()
			return
		}
	}
}

func (c *Control) fireExpiredTimer() {
	c.mu.Lock()
	if len(c.timers) == 0 {
		c.mu.Unlock()
		return
	}
	te := c.timers[0]
	c.clearTimer(te)
	fsm := te.fsm
	kind := te.kind
	switch kind {
	case timerKindState:
		c.dispatchLocked(fsm, EventTimeout, true)
		c.mu.Unlock()
	case timerKindOverall:
		action := fsm.overallFunc
		fsm.busy = true
		c.mu.Unlock()
		if action != nil {
			action(fsm, fsm.arg)
		}
		c.mu.Lock()
		fsm.busy = false
		if fsm.deleting {
			c.cond.Broadcast()
		}
		c.mu.Unlock()
	}
}

func (c *Control) handleEvent(ev *event) {
	fsm := ev.fsm
	c.mu.Lock()

	if fsm.debugFunc != nil {
		fsm.debugFunc(fsm, DebugHandling, fsm.current, ev.eventID, fsm.arg)
	}

	var matched *Transition
	for i := range fsm.transitions {
		t := &fsm.transitions[i]
		if t.Begin == fsm.current && t.EventID == ev.eventID {
			matched = t
			break
		}
	}
	if matched == nil {
		c.mu.Unlock()
		return
	}

	c.clearTimer(&fsm.stateTimer)
	fsm.current = matched.End
	if fsm.current != nil && fsm.current.Timeout > 0 {
		c.armTimer(&fsm.stateTimer, time.Now().Add(fsm.current.Timeout))
	}
	fsm.busy = true
	c.mu.Unlock()

	if matched.Func != nil {
		matched.Func(fsm, fsm.arg)
	}
	if fsm.current != nil && fsm.current.Func != nil {
		fsm.current.Func(fsm, fsm.arg)
	}

	c.mu.Lock()
	fsm.busy = false
	if !fsm.deleting {
		c.checkAutoLocked(fsm)
	} else {
		c.cond.Broadcast()
	}
	c.mu.Unlock()
}

// checkAutoLocked dispatches EventAuto, LIFO, if the current state has an
// automatic transition registered. Caller must hold c.mu.
func (c *Control) checkAutoLocked(fsm *FSM) {
	for i := range fsm.transitions {
		if fsm.transitions[i].Begin == fsm.current && fsm.transitions[i].EventID == EventAuto {
			c.dispatchLocked(fsm, EventAuto, true)
			c.wakeLocked()
			return
		}
	}
}
