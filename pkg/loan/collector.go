package loan

import (
	"github.com/marmos91/corectl/internal/corerr"
)

// SampleInfo carries the per-sample metadata a collector fills in alongside
// the sample/serdata pointer it produces.
type SampleInfo struct {
	ValidData bool
}

// Serdata is the minimal contract a serialized sample must satisfy for the
// collectors in this package to consume it. Implementations live outside
// this package (they come from whatever wire/transport layer feeds the
// reader history cache); this package only consumes the interface.
type Serdata interface {
	// ToSample deserializes the full sample into dst.
	ToSample(dst any) bool
	// UntypedToSample deserializes only the key fields into dst.
	UntypedToSample(dst any) bool
	// ExistingLoan returns the loan already attached to this serdata by a
	// zero-copy transport, or nil if none is attached.
	ExistingLoan() *Loan
	// Ref increments this serdata's refcount and returns itself, mirroring
	// ddsi_serdata_ref's "return the same object, now reference-counted"
	// contract.
	Ref() Serdata
}

// Sertype is the minimal contract needed to manage the lifetime of a
// deserialized sample's dynamically-sized fields.
type Sertype interface {
	FreeSample(dst any)
	ZeroSample(dst any)
	// NewSample allocates a zero-value sample suitable as a collector
	// destination, used when this package owns the destination memory
	// (heap loans).
	NewSample() any
}

// CollectFunc is the shape of a sample collector: invoked once per sample
// drained from a reader history cache.
type CollectFunc func(arg any, si *SampleInfo, st Sertype, sd Serdata) error

// CollectSampleArg is the mutable cursor state threaded through a single
// peek/read/take call: a write position plus the output arrays being
// filled, and the pools a loan-based collector draws from.
type CollectSampleArg struct {
	NextIdx       int
	Ptrs          []any
	Infos         []SampleInfo
	LoanPool      *Pool // pool the loan is inserted into (collect_sample_loan only)
	HeapLoanCache *Pool // cache of recyclable heap loans (collect_sample_loan only)
}

// NewCollectSampleArg initializes a sample collector cursor.
func NewCollectSampleArg(ptrs []any, infos []SampleInfo, loanPool, heapLoanCache *Pool) *CollectSampleArg {
	return &CollectSampleArg{
		Ptrs:          ptrs,
		Infos:         infos,
		LoanPool:      loanPool,
		HeapLoanCache: heapLoanCache,
	}
}

// CollectSample deserializes samples directly into caller-owned memory at
// arg.Ptrs[arg.NextIdx]. It assumes the ptrs/infos arrays are large enough
// and each pointer already refers to an allocated, caller-owned sample.
func CollectSample(varg any, si *SampleInfo, st Sertype, sd Serdata) error {
	arg := varg.(*CollectSampleArg)
	arg.Infos[arg.NextIdx] = *si

	var ok bool
	if si.ValidData {
		ok = sd.ToSample(arg.Ptrs[arg.NextIdx])
	} else {
		// UntypedToSample only fills in the key value and ignores everything
		// else; zeroing the destination first avoids leaving stale/garbage
		// attributes behind that the caller would otherwise have to free.
		st.FreeSample(arg.Ptrs[arg.NextIdx])
		st.ZeroSample(arg.Ptrs[arg.NextIdx])
		ok = sd.UntypedToSample(arg.Ptrs[arg.NextIdx])
	}
	arg.NextIdx++
	if !ok {
		return corerr.NewError("deserialization failed")
	}
	return nil
}

// collectSampleLoanZerocopy attempts to reuse a loan already attached to sd
// by a zero-copy transport. It returns (true, nil) on success. A false,nil
// return means there was no usable existing loan and the caller should fall
// through to the heap-allocation path; this mirrors the "slightly unusual"
// two-way distinction the original collector makes between "no loan on
// serdata" and "loan in an unusable state" — both mean "fall through", and
// only a genuine pool failure is reported as an error.
func collectSampleLoanZerocopy(arg *CollectSampleArg, si *SampleInfo, sd Serdata) (bool, error) {
	ls := sd.ExistingLoan()
	if ls == nil {
		return false, nil
	}
	if ls.State != RawData && ls.State != RawKey {
		return false, nil
	}
	arg.LoanPool.Add(ls)
	ls.refcount++
	arg.Ptrs[arg.NextIdx] = ls.Payload
	arg.Infos[arg.NextIdx] = *si
	arg.NextIdx++
	return true, nil
}

// CollectSampleLoan fills arg.Ptrs[arg.NextIdx] with a loaned pointer rather
// than deserializing into caller-owned memory. It tries zero-copy reuse of
// an existing loan first, then a recycled heap-cache loan, then a fresh
// heap allocation — in that order, matching the original collector.
func CollectSampleLoan(varg any, si *SampleInfo, st Sertype, sd Serdata) error {
	arg := varg.(*CollectSampleArg)

	if ok, err := collectSampleLoanZerocopy(arg, si, sd); err != nil {
		return err
	} else if ok {
		return nil
	}

	state := RawKey
	if si.ValidData {
		state = RawData
	}

	var ls *Loan
	if arg.HeapLoanCache != nil {
		ls = arg.HeapLoanCache.TakeAny()
	}
	if ls == nil {
		var err error
		ls, err = newHeapLoan(st, state)
		if err != nil {
			return err
		}
	} else {
		ls.State = state
	}

	arg.Ptrs[arg.NextIdx] = ls.Payload
	if err := CollectSample(arg, si, st, sd); err != nil {
		ls.refcount--
		arg.Ptrs[arg.NextIdx-1] = nil
		return err
	}
	arg.LoanPool.Add(ls)
	ls.refcount++
	return nil
}

// CollectSampleRefs stores a reference to the serdata itself rather than a
// deserialized or loaned sample, incrementing its refcount. It cannot fail.
func CollectSampleRefs(varg any, si *SampleInfo, st Sertype, sd Serdata) error {
	arg := varg.(*CollectSampleArg)
	arg.Infos[arg.NextIdx] = *si
	arg.Ptrs[arg.NextIdx] = sd.Ref()
	arg.NextIdx++
	return nil
}

// newHeapLoan allocates a fresh heap-backed loan for the given sample state.
func newHeapLoan(st Sertype, state SampleState) (*Loan, error) {
	return &Loan{
		Payload: st.NewSample(),
		Origin:  OriginHeap,
		State:   state,
	}, nil
}
