package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_AddAndFindAndRemove(t *testing.T) {
	p := NewPool()
	l := &Loan{Payload: "a"}
	p.Add(l)

	assert.Equal(t, 1, p.Len())

	got := p.FindAndRemove("a")
	assert.Same(t, l, got)
	assert.Equal(t, 0, p.Len())
}

func TestPool_FindAndRemove_MissingReturnsNil(t *testing.T) {
	p := NewPool()
	assert.Nil(t, p.FindAndRemove("nope"))
}

func TestPool_TakeAny_EmptyReturnsNil(t *testing.T) {
	p := NewPool()
	assert.Nil(t, p.TakeAny())
}

func TestPool_TakeAny_DrainsEveryLoanExactlyOnce(t *testing.T) {
	p := NewPool()
	p.Add(&Loan{Payload: "a"})
	p.Add(&Loan{Payload: "b"})
	p.Add(&Loan{Payload: "c"})

	seen := make(map[any]bool)
	for i := 0; i < 3; i++ {
		l := p.TakeAny()
		if assert.NotNil(t, l) {
			seen[l.Payload] = true
		}
	}

	assert.Equal(t, map[any]bool{"a": true, "b": true, "c": true}, seen)
	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.TakeAny())
}

func TestPool_RemoveFromOrder_MiddleEntry(t *testing.T) {
	p := NewPool()
	a := &Loan{Payload: "a"}
	b := &Loan{Payload: "b"}
	c := &Loan{Payload: "c"}
	p.Add(a)
	p.Add(b)
	p.Add(c)

	removed := p.FindAndRemove("b")
	assert.Same(t, b, removed)
	assert.Equal(t, 2, p.Len())

	// a and c must still both be drainable.
	remaining := map[any]bool{}
	remaining[p.TakeAny().Payload] = true
	remaining[p.TakeAny().Payload] = true
	assert.Equal(t, map[any]bool{"a": true, "c": true}, remaining)
}
