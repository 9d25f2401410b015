package chunk

// ColumnSample is a vertical run of block states starting at MinY.
type ColumnSample struct {
	MinY   int
	States []State
}

// At returns the state at world y, or Air outside the sampled run.
func (s ColumnSample) At(y int) State {
	i := y - s.MinY
	if i < 0 || i >= len(s.States) {
		return Air
	}
	return s.States[i]
}

// Top returns the Y just above the sampled run.
func (s ColumnSample) Top() int { return s.MinY + len(s.States) }
