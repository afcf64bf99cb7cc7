package engine

// searchCounters is the pure-data telemetry container: every field is
// written by the worker and only ever read back for an info line or a
// test assertion, never branched on inside the search itself.
type searchCounters struct {
	nodes          int64
	qNodes         int64
	ttHits         int64
	cutoffs        int64
	nullMoveCuts   int64
	bestMoveChange int
	selDepth       int
}

func (c *searchCounters) reset() {
	*c = searchCounters{}
}
