package handle

// DeleteByHandle runs the full pin-for-delete sequence against hdl: pin for
// delete, wait out any outstanding pins, then remove the entry from the
// table. It returns a TryAgain corerr.CoreError (see corerr.IsTryAgainError)
// when another reference is still live: the entry then stays in the table
// marked delete-deferred, and the DropRef that releases that reference
// pins and closes it. DeleteByHandle does not loop or block on that, since
// the wait is unbounded; calling it again while the reference is live
// reports AlreadyDeleted.
func (s *Server) DeleteByHandle(hdl Handle) error {
	link, err := s.PinForDelete(hdl, true, true)
	if err != nil {
		return err
	}
	s.CloseWait(link)
	s.Unpin(link)
	s.Delete(link)
	return nil
}
