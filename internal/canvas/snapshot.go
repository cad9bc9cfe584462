package canvas

// Snapshot is a copy of a surface's pixels at one instant.
type Snapshot struct {
	width, height int
	pix           []uint8
}

// Snapshot copies the current pixels.
func (s *Surface) Snapshot() *Snapshot {
	data := s.dc.ResizeTarget().Data()
	pix := make([]uint8, len(data))
	copy(pix, data)
	return &Snapshot{width: s.Width(), height: s.Height(), pix: pix}
}

// Restore puts the snapshot's pixels back. A nil snapshot or one taken at
// different dimensions is ignored and Restore reports false.
func (s *Surface) Restore(snap *Snapshot) bool {
	if snap == nil || snap.width != s.Width() || snap.height != s.Height() {
		return false
	}
	copy(s.dc.ResizeTarget().Data(), snap.pix)
	return true
}
