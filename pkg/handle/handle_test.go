package handle

import (
	"sync"
	"testing"
	"time"

	"github.com/marmos91/corectl/internal/corerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPublished(t *testing.T, s *Server, implicit, allowChildren, userAccess bool) *Link {
	t.Helper()
	link, err := s.Create(implicit, allowChildren, userAccess)
	require.NoError(t, err)
	s.Unpend(link)
	return link
}

func TestCreate_AssignsHandleBelowPseudoHandleRange(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)
	assert.Greater(t, int32(link.Hdl), int32(0))
	assert.Less(t, int(link.Hdl), minPseudoHandle)
}

func TestRegisterSpecial_RejectsDuplicateHandle(t *testing.T) {
	s := NewServer()
	_, err := s.RegisterSpecial(false, false, Handle(42))
	require.NoError(t, err)

	_, err = s.RegisterSpecial(false, false, Handle(42))
	require.Error(t, err)
	assert.True(t, corerr.IsBadParameterError(err))
}

func TestPin_SucceedsThenUnpinRestoresZeroPincount(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)

	pinned, err := s.Pin(link.Hdl, true)
	require.NoError(t, err)
	assert.Equal(t, link, pinned)
	assert.Equal(t, uint32(1), pinned.pincount()) // Unpend released the setup-time pin

	s.Unpin(pinned)
	assert.Equal(t, uint32(0), pinned.pincount())
}

func TestPin_RejectsNoUserAccessHandleFromUserCall(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, false)

	_, err := s.Pin(link.Hdl, true)
	require.Error(t, err)
	assert.True(t, corerr.IsBadParameterError(err))

	_, err = s.Pin(link.Hdl, false)
	require.NoError(t, err)
}

func TestPin_RejectsClosingHandle(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)
	s.Close(link)

	_, err := s.Pin(link.Hdl, true)
	require.Error(t, err)
	assert.True(t, corerr.IsBadParameterError(err))
}

func TestPinForDelete_SinglePinClosesImmediately(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)

	got, err := s.PinForDelete(link.Hdl, true, true)
	require.NoError(t, err)
	assert.True(t, got.IsClosed())

	// No other pin is outstanding, so CloseWait returns immediately with
	// only the deleter's own pin (pincount 1) left; that pin is released
	// after CloseWait returns, then the entry is removed.
	s.CloseWait(got)
	s.Unpin(got)
	s.Delete(got)

	_, err = s.Pin(link.Hdl, true)
	require.Error(t, err)
}

func TestPinForDelete_DeferredUntilOutstandingRefDrops(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)

	// Simulate a second reference holder (e.g. a dependent entity) that
	// keeps the link alive past its own pin.
	s.AddRef(link)

	_, err := s.PinForDelete(link.Hdl, true, true)
	require.Error(t, err)
	assert.True(t, corerr.IsTryAgainError(err))

	got := s.DropRef(link)
	require.NotNil(t, got, "dropping the last outstanding ref must finish the deferred delete")
	assert.True(t, got.IsClosed())
}

func TestPinForDelete_AlreadyDeferredWithOutstandingRefIsAlreadyDeleted(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)

	s.AddRef(link)

	_, err := s.PinForDelete(link.Hdl, true, true)
	require.Error(t, err)
	assert.True(t, corerr.IsTryAgainError(err), "first call defers and reports TryAgain")

	// A second pin_for_delete against a link whose deletion is already
	// deferred, with the reference still outstanding, must report
	// AlreadyDeleted rather than TryAgain again.
	_, err = s.PinForDelete(link.Hdl, true, true)
	require.Error(t, err)
	assert.True(t, corerr.IsAlreadyDeletedError(err))
}

func TestPinForDelete_ImplicitChildCannotDeleteExplicitParent(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)

	_, err := s.PinForDelete(link.Hdl, false, true)
	require.Error(t, err)
	assert.True(t, corerr.IsIllegalOperationError(err))
}

func TestCloseWait_BlocksUntilOnlyOwnPinRemains(t *testing.T) {
	s := NewServer()
	link := createPublished(t, s, false, false, true)

	// deleterPin simulates the caller's own pin from PinForDelete; extraPin
	// simulates an unrelated outstanding pin that must drop before
	// CloseWait returns.
	deleterPin, err := s.Pin(link.Hdl, true)
	require.NoError(t, err)
	extraPin, err := s.Pin(link.Hdl, true)
	require.NoError(t, err)
	s.Close(deleterPin)

	done := make(chan struct{})
	go func() {
		s.CloseWait(deleterPin)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("CloseWait returned before the extra pin released")
	case <-time.After(20 * time.Millisecond):
	}

	s.Unpin(extraPin) // pincount drops to 1: only the deleter's own pin left

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("CloseWait did not return once only the deleter's own pin remained")
	}
}

func TestDropChildrefAndPin_LastChildMayDeleteImplicitParent(t *testing.T) {
	s := NewServer()
	parent, err := s.Create(true /* implicit */, true /* allowChildren */, true)
	require.NoError(t, err)
	s.Unpend(parent)
	s.AddRef(parent) // one child attaches

	del := s.DropChildrefAndPin(parent, true)
	assert.True(t, del)
	assert.True(t, parent.IsClosed())
}

func TestServerSingleton_InitFiniAreIdempotent(t *testing.T) {
	var once sync.Once
	once.Do(func() { require.NoError(t, ServerInit()) })
	require.NoError(t, ServerInit())
	assert.NotNil(t, Default())

	ServerFini()
	assert.Nil(t, Default())
}
