package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSample struct {
	Value string
	freed bool
}

type testSertype struct {
	allocs int
}

func (st *testSertype) FreeSample(dst any) {
	dst.(*testSample).freed = true
}

func (st *testSertype) ZeroSample(dst any) {
	s := dst.(*testSample)
	s.Value = ""
	s.freed = false
}

func (st *testSertype) NewSample() any {
	st.allocs++
	return &testSample{}
}

type testSerdata struct {
	value        string
	existingLoan *Loan
	decodeFails  bool
}

func (sd *testSerdata) ToSample(dst any) bool {
	if sd.decodeFails {
		return false
	}
	dst.(*testSample).Value = sd.value
	return true
}

func (sd *testSerdata) UntypedToSample(dst any) bool {
	if sd.decodeFails {
		return false
	}
	dst.(*testSample).Value = sd.value
	return true
}

func (sd *testSerdata) ExistingLoan() *Loan {
	return sd.existingLoan
}

func (sd *testSerdata) Ref() Serdata {
	return sd
}

func newArg(n int) (*CollectSampleArg, []any, []SampleInfo) {
	ptrs := make([]any, n)
	infos := make([]SampleInfo, n)
	return NewCollectSampleArg(ptrs, infos, NewPool(), NewPool()), ptrs, infos
}

func TestCollectSample_ValidData(t *testing.T) {
	arg, ptrs, infos := newArg(1)
	ptrs[0] = &testSample{}
	st := &testSertype{}
	sd := &testSerdata{value: "hello"}

	err := CollectSample(arg, &SampleInfo{ValidData: true}, st, sd)
	require.NoError(t, err)
	assert.Equal(t, "hello", ptrs[0].(*testSample).Value)
	assert.True(t, infos[0].ValidData)
	assert.Equal(t, 1, arg.NextIdx)
}

func TestCollectSample_KeyOnlyZeroesDestinationFirst(t *testing.T) {
	arg, ptrs, _ := newArg(1)
	ptrs[0] = &testSample{Value: "stale"}
	st := &testSertype{}
	sd := &testSerdata{value: "key-1"}

	err := CollectSample(arg, &SampleInfo{ValidData: false}, st, sd)
	require.NoError(t, err)
	assert.Equal(t, "key-1", ptrs[0].(*testSample).Value)
}

func TestCollectSample_DecodeFailureReturnsError(t *testing.T) {
	arg, ptrs, _ := newArg(1)
	ptrs[0] = &testSample{}
	st := &testSertype{}
	sd := &testSerdata{decodeFails: true}

	err := CollectSample(arg, &SampleInfo{ValidData: true}, st, sd)
	assert.Error(t, err)
	// NextIdx still advances: the caller's buffer position moves on even
	// when deserialization of this particular sample failed.
	assert.Equal(t, 1, arg.NextIdx)
}

func TestCollectSampleLoan_ReusesExistingZerocopyLoan(t *testing.T) {
	arg, ptrs, _ := newArg(1)
	st := &testSertype{}
	existing := &Loan{Payload: "zerocopy-payload", Origin: OriginExternal, State: RawData}
	sd := &testSerdata{existingLoan: existing}

	err := CollectSampleLoan(arg, &SampleInfo{ValidData: true}, st, sd)
	require.NoError(t, err)

	assert.Equal(t, "zerocopy-payload", ptrs[0])
	assert.Equal(t, 1, existing.refcount)
	assert.Same(t, existing, arg.LoanPool.FindAndRemove("zerocopy-payload"))
	// No heap allocation happened: the zerocopy path short-circuits before
	// ever touching the heap cache or Sertype.NewSample.
	assert.Equal(t, 0, st.allocs)
}

func TestCollectSampleLoan_RecyclesHeapCacheBeforeAllocating(t *testing.T) {
	arg, ptrs, _ := newArg(1)
	st := &testSertype{}
	sd := &testSerdata{value: "recycled"}

	cached := &Loan{Payload: &testSample{Value: "old"}, Origin: OriginHeap, State: RawKey}
	arg.HeapLoanCache.Add(cached)

	err := CollectSampleLoan(arg, &SampleInfo{ValidData: true}, st, sd)
	require.NoError(t, err)

	assert.Same(t, cached.Payload, ptrs[0])
	assert.Equal(t, "recycled", ptrs[0].(*testSample).Value)
	assert.Equal(t, RawData, cached.State)
	assert.Equal(t, 1, cached.refcount)
	assert.Equal(t, 0, st.allocs)
	assert.Equal(t, 0, arg.HeapLoanCache.Len())
}

func TestCollectSampleLoan_AllocatesFreshWhenNoLoanAvailable(t *testing.T) {
	arg, ptrs, _ := newArg(1)
	st := &testSertype{}
	sd := &testSerdata{value: "fresh"}

	err := CollectSampleLoan(arg, &SampleInfo{ValidData: true}, st, sd)
	require.NoError(t, err)

	assert.Equal(t, 1, st.allocs)
	assert.Equal(t, "fresh", ptrs[0].(*testSample).Value)
	assert.Equal(t, 1, arg.LoanPool.Len())
}

func TestCollectSampleLoan_DecodeFailureUnwindsLoan(t *testing.T) {
	arg, ptrs, _ := newArg(1)
	st := &testSertype{}
	sd := &testSerdata{decodeFails: true}

	err := CollectSampleLoan(arg, &SampleInfo{ValidData: true}, st, sd)
	assert.Error(t, err)
	assert.Nil(t, ptrs[0])
	assert.Equal(t, 0, arg.LoanPool.Len())
}

func TestCollectSampleRefs_IncrementsAndStoresSerdata(t *testing.T) {
	arg, ptrs, infos := newArg(1)
	sd := &testSerdata{value: "ref'd"}

	err := CollectSampleRefs(arg, &SampleInfo{ValidData: true}, &testSertype{}, sd)
	require.NoError(t, err)
	assert.Same(t, sd, ptrs[0])
	assert.True(t, infos[0].ValidData)
}
