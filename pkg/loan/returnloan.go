package loan

import (
	"github.com/marmos91/corectl/internal/corerr"
)

// returnOneLoan recycles or frees a single loan. A heap-origin loan with no
// other outstanding reference is reset and pushed onto the heap-loan cache
// for reuse; every other loan (externally-originated, or still referenced
// elsewhere) is simply released.
func returnOneLoan(r *Reader, l *Loan, reset bool) {
	if l.Origin != OriginHeap || l.refcount != 1 {
		l.refcount--
		return
	}
	if reset {
		l.Payload = r.Sertype.NewSample()
	}
	r.HeapLoanCache.Add(l)
}

// returnLoanLocked walks buf[first:] up to the first nil entry, returning
// each one to the pool. Encountering a buffer slot with no matching loan
// means the application mixed loaned and non-loaned memory; this function
// keeps going (so every remaining non-nil pointer does get resolved) but
// reports the bad-parameter condition once.
func returnLoanLocked(r *Reader, buf []any, first, bufsz int32, reset bool) error {
	var rerr error
	for s := first; s < bufsz && buf[s] != nil; s++ {
		l := r.Loans.FindAndRemove(buf[s])
		if l == nil {
			rerr = corerr.NewBadParameterError("return_loan: buffer entry is not an outstanding loan")
			continue
		}
		returnOneLoan(r, l, reset)
	}
	return rerr
}

// returnLoanLocked is invoked at the top of Reader.Read when the caller
// passes a non-nil buf[0]: if it matches an outstanding loan, the whole
// call is reinterpreted as "return these loans first, then read into the
// now-empty buffer". If buf[0] does not match a loan, the buffer is assumed
// to be fully caller-owned memory and nothing happens.
func (r *Reader) returnLoanLocked(buf []any, bufsz int32) error {
	l := r.Loans.FindAndRemove(buf[0])
	if l == nil {
		// Not a loan: treat the whole buffer as application-owned memory.
		return nil
	}
	buf[0] = nil
	returnOneLoan(r, l, true)
	return returnLoanLocked(r, buf, 1, bufsz, true)
}

// ReturnLoan returns a set of previously loaned samples to the reader's
// loan pool so their memory can be recycled or freed. buf[0] must be the
// first loaned pointer returned by a prior Read call using loans; bufsz is
// the capacity of buf, not the number of valid entries (the scan stops at
// the first nil).
func (r *Reader) ReturnLoan(buf []any, bufsz int32) error {
	if bufsz <= 0 {
		// No data, or a call following a failed read/take: those already
		// restore prior state on failure, so there's nothing to return.
		return nil
	}
	if buf[0] == nil {
		return nil
	}

	r.Mutex.Lock()
	defer r.Mutex.Unlock()

	l := r.Loans.FindAndRemove(buf[0])
	if l == nil {
		return corerr.NewPreconditionNotMetError(0, "return_loan: first entry is not an outstanding loan")
	}
	buf[0] = nil
	returnOneLoan(r, l, true)
	return returnLoanLocked(r, buf, 1, bufsz, true)
}
