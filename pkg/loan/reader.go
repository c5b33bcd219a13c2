package loan

import (
	"sync"

	"github.com/marmos91/corectl/internal/corelog"
	"github.com/marmos91/corectl/internal/corerr"
)

// Operation identifies which of the three read-pipeline operations is being
// performed: peek leaves samples in the history cache and marked read;
// read marks them read without removing them; take removes them.
type Operation int

const (
	OperationPeek Operation = iota
	OperationRead
	OperationTake
)

// InstanceHandle identifies a single instance within a reader's history
// cache. Zero means "no instance filter".
type InstanceHandle uint64

// Condition is an optional read-condition narrowing which samples an RHC
// drain considers; nil means "no condition, use the reader's own state".
type Condition struct {
	Mask uint32
}

// RHC is the reader history cache contract this pipeline drains samples
// through. Implementations own the sample storage and invoke collect once
// per sample in delivery order.
type RHC interface {
	Peek(maxSamples int32, mask uint32, hand InstanceHandle, cond *Condition, collect CollectFunc, arg any) (int32, error)
	Read(maxSamples int32, mask uint32, hand InstanceHandle, cond *Condition, collect CollectFunc, arg any) (int32, error)
	Take(maxSamples int32, mask uint32, hand InstanceHandle, cond *Condition, collect CollectFunc, arg any) (int32, error)
}

// Reader owns a reader history cache plus the two per-reader loan pools
// (m_loans, m_heap_loan_cache) backing zero-copy reads. All fields are
// guarded by Mutex; callers never lock the pools directly.
type Reader struct {
	ID  string
	RHC RHC

	Mutex         sync.Mutex
	Loans         *Pool
	HeapLoanCache *Pool

	Sertype Sertype
}

// NewReader creates a reader-side read pipeline over the given history
// cache and sample type.
func NewReader(id string, rhc RHC, st Sertype) *Reader {
	return &Reader{
		ID:            id,
		RHC:           rhc,
		Loans:         NewPool(),
		HeapLoanCache: NewPool(),
		Sertype:       st,
	}
}

// Read executes a peek/read/take against buf, which is either entirely
// caller-owned memory (buf[0] already non-nil) or entirely available for
// loans (buf[0] nil). Mixing the two is undefined behavior on the caller's
// part. A non-nil buf[0] that matches an outstanding loan makes Read return
// the loans in buf first (see returnLoanLocked) and then fill buf with new
// loans; a later non-nil entry that is not a loan is reported as a
// bad-parameter error. A non-nil buf[0] that matches no loan marks buf as
// caller-owned memory.
//
// On success it returns the number of samples collected. buf and si must
// have at least maxSamples capacity.
func (r *Reader) Read(op Operation, buf []any, si []SampleInfo, maxSamples uint32, mask uint32, hand InstanceHandle, cond *Condition) (int, error) {
	if buf == nil || si == nil || maxSamples == 0 || uint32(len(buf)) < maxSamples || uint32(len(si)) < maxSamples {
		return 0, corerr.NewBadParameterError("read: buf/si too small or maxSamples is zero")
	}

	r.Mutex.Lock()
	defer r.Mutex.Unlock()

	if buf[0] != nil {
		if err := r.returnLoanLocked(buf, int32(len(buf))); err != nil {
			return 0, err
		}
	}

	arg := NewCollectSampleArg(buf, si, r.Loans, r.HeapLoanCache)
	useLoan := buf[0] == nil
	collect := CollectSample
	if useLoan {
		collect = CollectSampleLoan
	}

	n, err := r.dispatch(op, int32(maxSamples), mask, hand, cond, collect, arg)

	// When using loans, the caller scans buf for a terminating nil to know
	// when to stop returning loans; make sure one is present if there's room.
	if useLoan && n > 0 && int(n) < len(buf) {
		buf[n] = nil
	}

	// Drain every heap loan still left in the cache once the collectors are
	// done: a loan that arrived pre-serialized (e.g. over a zero-copy
	// transport) and got converted into a heap loan would otherwise make
	// this cache grow without bound.
	drained := 0
	for {
		l := r.HeapLoanCache.TakeAny()
		if l == nil {
			break
		}
		drained++
	}
	if drained > 0 {
		corelog.Debug("drained heap loan cache", corelog.Reader(r.ID), corelog.HeapCache(drained))
	}

	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *Reader) dispatch(op Operation, maxSamples int32, mask uint32, hand InstanceHandle, cond *Condition, collect CollectFunc, arg any) (int32, error) {
	switch op {
	case OperationPeek:
		return r.RHC.Peek(maxSamples, mask, hand, cond, collect, arg)
	case OperationRead:
		return r.RHC.Read(maxSamples, mask, hand, cond, collect, arg)
	case OperationTake:
		return r.RHC.Take(maxSamples, mask, hand, cond, collect, arg)
	default:
		return 0, corerr.NewBadParameterError("unknown read operation")
	}
}
