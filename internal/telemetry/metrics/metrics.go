// Package metrics registers the Prometheus instruments corectld exposes at
// /metrics: live handle count, loan pool occupancy, and FSM control queue
// and timer depth. Each gauge is backed by a live accessor rather than a
// value pushed by callers, so the exported numbers always reflect the
// current state of the handle table / FSM control at scrape time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HandleSource is the subset of handle.Server metrics needs.
type HandleSource interface {
	Count() int
}

// FSMSource is the subset of fsmctl.Control metrics needs.
type FSMSource interface {
	QueueDepth() int
	TimerCount() int
}

// LoanPoolSource reports the combined size of every registered reader's
// outstanding-loan and heap-cache pools.
type LoanPoolSource interface {
	LoanCount() int
	HeapCacheCount() int
}

// Register installs gauges backed by the given sources into reg. Any source
// may be nil, in which case its gauge always reports zero. Safe to call at
// most once per registry; a second call on the same registry panics with
// the AlreadyRegisteredError raised by reg.MustRegister, matching the
// package's house style of preferring an explicit panic over silently
// tracking duplicate registrations.
func Register(reg prometheus.Registerer, handles HandleSource, control FSMSource, loans LoanPoolSource) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "corectld_handle_count",
			Help: "Number of live entries in the entity handle table.",
		},
		func() float64 {
			if handles == nil {
				return 0
			}
			return float64(handles.Count())
		},
	))

	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "corectld_fsm_queue_depth",
			Help: "Number of events queued awaiting dispatch by the FSM control loop.",
		},
		func() float64 {
			if control == nil {
				return 0
			}
			return float64(control.QueueDepth())
		},
	))

	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "corectld_fsm_timer_count",
			Help: "Number of armed state/overall timers across every FSM owned by the control.",
		},
		func() float64 {
			if control == nil {
				return 0
			}
			return float64(control.TimerCount())
		},
	))

	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "corectld_loan_count",
			Help: "Number of loans currently handed to applications across all readers.",
		},
		func() float64 {
			if loans == nil {
				return 0
			}
			return float64(loans.LoanCount())
		},
	))

	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "corectld_loan_heap_cache_count",
			Help: "Number of recyclable heap-origin loans cached across all readers.",
		},
		func() float64 {
			if loans == nil {
				return 0
			}
			return float64(loans.HeapCacheCount())
		},
	))
}
