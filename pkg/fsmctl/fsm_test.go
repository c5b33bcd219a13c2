package fsmctl

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestFSM_AutoTransitionOnStart(t *testing.T) {
	idle := State{Name: "idle"}
	active := State{Name: "active"}

	var entered atomic.Bool
	active.Func = func(fsm *FSM, arg any) { entered.Store(true) }

	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &idle},
		{Begin: &idle, EventID: EventAuto, End: &active},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)
	fsm.Start()

	waitUntil(t, time.Second, entered.Load)
	waitUntil(t, time.Second, fsm.Running)
}

func TestFSM_DispatchDrivesTransition(t *testing.T) {
	start := State{Name: "start"}
	middle := State{Name: "middle"}
	end := State{Name: "end"}

	const eventNext int32 = 1

	var reachedEnd atomic.Bool
	end.Func = func(fsm *FSM, arg any) { reachedEnd.Store(true) }

	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &start},
		{Begin: &start, EventID: eventNext, End: &middle},
		{Begin: &middle, EventID: eventNext, End: &end},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)
	fsm.Start()
	waitUntil(t, time.Second, fsm.Running)

	fsm.Dispatch(eventNext, false)
	fsm.Dispatch(eventNext, false)

	waitUntil(t, time.Second, reachedEnd.Load)
}

func TestFSM_StateTimeoutFiresEventTimeout(t *testing.T) {
	waiting := State{Name: "waiting", Timeout: 20 * time.Millisecond}
	timedOut := State{Name: "timed_out"}

	var fired atomic.Bool
	timedOut.Func = func(fsm *FSM, arg any) { fired.Store(true) }

	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &waiting},
		{Begin: &waiting, EventID: EventTimeout, End: &timedOut},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)
	fsm.Start()

	waitUntil(t, time.Second, fired.Load)
}

func TestFSM_OverallTimeoutSurvivesTransitions(t *testing.T) {
	a := State{Name: "a"}
	b := State{Name: "b"}

	const eventMove int32 = 1

	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &a},
		{Begin: &a, EventID: eventMove, End: &b},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)

	var overallFired atomic.Bool
	fsm.SetTimeout(func(fsm *FSM, arg any) { overallFired.Store(true) }, 30*time.Millisecond)

	fsm.Start()
	waitUntil(t, time.Second, fsm.Running)

	fsm.Dispatch(eventMove, false)
	waitUntil(t, time.Second, overallFired.Load)
}

func TestFSM_ClearOverallTimeoutPreventsFire(t *testing.T) {
	a := State{Name: "a"}

	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &a},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)

	var overallFired atomic.Bool
	fsm.SetTimeout(func(fsm *FSM, arg any) { overallFired.Store(true) }, 20*time.Millisecond)
	fsm.SetTimeout(nil, 0)

	fsm.Start()
	waitUntil(t, time.Second, fsm.Running)

	time.Sleep(60 * time.Millisecond)
	assert.False(t, overallFired.Load())
}

func TestFSM_StopPreventsFurtherDispatch(t *testing.T) {
	a := State{Name: "a"}
	b := State{Name: "b"}

	const eventMove int32 = 1

	var reachedB atomic.Bool
	b.Func = func(fsm *FSM, arg any) { reachedB.Store(true) }

	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &a},
		{Begin: &a, EventID: eventMove, End: &b},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)
	fsm.Start()
	waitUntil(t, time.Second, fsm.Running)

	fsm.Stop()
	fsm.Dispatch(eventMove, false)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, reachedB.Load())
	assert.False(t, fsm.Running())
}

func TestFSM_FreeBlocksUntilActionCompletes(t *testing.T) {
	a := State{Name: "a"}
	b := State{Name: "b"}

	const eventMove int32 = 1
	release := make(chan struct{})
	var inAction atomic.Bool

	b.Func = func(fsm *FSM, arg any) {
		inAction.Store(true)
		<-release
	}

	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &a},
		{Begin: &a, EventID: eventMove, End: &b},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)
	fsm.Start()
	waitUntil(t, time.Second, fsm.Running)
	fsm.Dispatch(eventMove, false)
	waitUntil(t, time.Second, inAction.Load)

	var freed atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fsm.Free()
		freed.Store(true)
	}()

	time.Sleep(30 * time.Millisecond)
	assert.False(t, freed.Load(), "Free must block while the action is running")

	close(release)
	wg.Wait()
	assert.True(t, freed.Load())
}

func TestFSM_DebugHookObservesDispatchAndHandling(t *testing.T) {
	a := State{Name: "a"}
	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &a},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))
	defer control.ControlStop()

	fsm := Create(control, transitions, nil)

	var mu sync.Mutex
	var seen []DebugAction
	fsm.SetDebug(func(fsm *FSM, act DebugAction, current *State, eventID int32, arg any) {
		mu.Lock()
		seen = append(seen, act)
		mu.Unlock()
	})

	fsm.Start()
	waitUntil(t, time.Second, fsm.Running)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen, DebugDispatch)
	assert.Contains(t, seen, DebugHandling)
}

func TestControlFree_StopsAllOwnedFSMs(t *testing.T) {
	a := State{Name: "a"}
	transitions := []Transition{
		{Begin: nil, EventID: EventAuto, End: &a},
	}

	control := ControlCreate()
	require.NoError(t, control.ControlStart("test"))

	fsm1 := Create(control, transitions, nil)
	fsm2 := Create(control, transitions, nil)
	fsm1.Start()
	fsm2.Start()
	waitUntil(t, time.Second, fsm1.Running)
	waitUntil(t, time.Second, fsm2.Running)

	control.ControlStop()
	control.ControlFree()

	assert.False(t, fsm1.Running())
	assert.False(t, fsm2.Running())
}
