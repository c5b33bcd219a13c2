// Package loan implements the read/take/peek pipeline with sample loans: a
// per-reader pool of outstanding loans, a heap-loan recycling cache, and the
// three sample collectors that drain a reader history cache into caller
// buffers.
//
// # Design
//
// A Pool is an unordered, pointer-keyed collection of *Loan values. A Go map
// keyed on the payload pointer gives O(1) insert and lookup-by-pointer
// without reimplementing a hash table. The pool also keeps an
// insertion-order slice for TakeAny, so FindAndRemove scans that slice and
// is linear in the pool size.
//
// Every reader owns two pools:
//   - Loans: loans currently handed to the application (m_loans)
//   - HeapCache: previously-returned heap loans available for recycling
//     (m_heap_loan_cache)
//
// # Thread Safety
//
// A Pool is not internally synchronized; it is guarded by the owning
// reader's mutex and must never be shared across readers.
package loan

// Origin distinguishes where a Loan's backing memory came from.
type Origin int

const (
	// OriginHeap indicates the loan's payload was allocated by this
	// package (a fresh allocation or a recycled heap-cache entry).
	OriginHeap Origin = iota

	// OriginExternal indicates the loan's payload was already present on
	// the incoming serdata (e.g. from a zero-copy transport) and this
	// package only took a reference to it.
	OriginExternal
)

func (o Origin) String() string {
	switch o {
	case OriginHeap:
		return "heap"
	case OriginExternal:
		return "external"
	default:
		return "unknown"
	}
}

// SampleState records whether a loaned sample carries full data or only a
// key (a dispose/unregister notification with no payload).
type SampleState int

const (
	// RawData indicates the loan holds a full sample.
	RawData SampleState = iota
	// RawKey indicates the loan holds only key fields.
	RawKey
)

// Loan is a unit of memory borrowed by the application from the read
// pipeline. It must be returned via Pool.FindAndRemove (through
// ReturnLoan) so it can be recycled or freed.
type Loan struct {
	Payload  any // opaque payload pointer/value visible to the caller
	Origin   Origin
	State    SampleState
	refcount int
}

// Pool is a per-reader unordered collection of outstanding loans, keyed by
// payload identity.
type Pool struct {
	byPayload map[any]*Loan
	order     []*Loan // insertion order, for TakeAny / deterministic draining
}

// NewPool creates an empty loan pool.
func NewPool() *Pool {
	return &Pool{byPayload: make(map[any]*Loan)}
}

// Add inserts a loan into the pool. It is the caller's responsibility to
// ensure l.Payload is unique within this pool.
func (p *Pool) Add(l *Loan) {
	p.byPayload[l.Payload] = l
	p.order = append(p.order, l)
}

// FindAndRemove looks up a loan by its payload pointer and removes it from
// the pool if found. Returns nil if no loan with that payload is present.
func (p *Pool) FindAndRemove(payload any) *Loan {
	l, ok := p.byPayload[payload]
	if !ok {
		return nil
	}
	delete(p.byPayload, payload)
	p.removeFromOrder(l)
	return l
}

// TakeAny removes and returns an arbitrary loan from the pool, or nil if the
// pool is empty. Used to drain the heap-loan cache: callers don't care which
// cached loan they get back, only that it's available for recycling.
func (p *Pool) TakeAny() *Loan {
	if len(p.order) == 0 {
		return nil
	}
	l := p.order[len(p.order)-1]
	p.order = p.order[:len(p.order)-1]
	delete(p.byPayload, l.Payload)
	return l
}

// Len returns the number of loans currently held by the pool.
func (p *Pool) Len() int {
	return len(p.order)
}

func (p *Pool) removeFromOrder(l *Loan) {
	for i, cur := range p.order {
		if cur == l {
			p.order = append(p.order[:i], p.order[i+1:]...)
			return
		}
	}
}
