package merge

// cursorHeap orders open cursors by the merge reader's contract: ascending
// key primarily, ascending merge-tree level secondarily (lower level is
// newer), descending Seq as the final tiebreak among files at the same
// level. Popping this heap therefore yields records in exactly the order
// the accumulator's Reset/Add protocol expects: newest first within a key
// group. Grounded on this corpus's own container/heap merge idiom used for
// its compaction pass, generalized from a single Less on string keys to the
// three-level tiebreak this merge needs.
type cursorHeap []*cursor

func (h cursorHeap) Len() int { return len(h) }

func (h cursorHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if kc := a.head.Key.Compare(b.head.Key); kc != 0 {
		return kc < 0
	}
	if a.src.Level != b.src.Level {
		return a.src.Level < b.src.Level
	}
	return a.src.Seq > b.src.Seq
}

func (h cursorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) {
	*h = append(*h, x.(*cursor))
}

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
