package common

// MoveList is a fixed-capacity, heap-free buffer of OrderedMove used for
// move ordering in pkg/engine, which fills it through Add. It never
// grows past MaxMoves, avoiding append's slice-growth allocations on
// every node. GenerateMoves itself writes into a plain []Move.
type MoveList struct {
	Items [MaxMoves]OrderedMove
	Size  int
}

func (l *MoveList) Clear() {
	l.Size = 0
}

func (l *MoveList) Add(m Move) {
	l.Items[l.Size] = OrderedMove{Move: m}
	l.Size++
}

func (l *MoveList) AddOrdered(m Move, key int32) {
	l.Items[l.Size] = OrderedMove{Move: m, Key: key}
	l.Size++
}

// PopLast removes and returns the last move in the list.
func (l *MoveList) PopLast() Move {
	l.Size--
	return l.Items[l.Size].Move
}

// PushFront shifts every element right by one and inserts m at index 0.
func (l *MoveList) PushFront(m Move) {
	if l.Size < MaxMoves {
		l.Size++
	}
	for i := l.Size - 1; i > 0; i-- {
		l.Items[i] = l.Items[i-1]
	}
	l.Items[0] = OrderedMove{Move: m}
}

// MoveToFront finds m within the already-generated range and moves it
// to index 0, shifting the intervening moves right by one. If m isn't
// present it falls back to PushFront so the caller never has to check.
func (l *MoveList) MoveToFront(m Move) {
	for i := 0; i < l.Size; i++ {
		if l.Items[i].Move == m {
			item := l.Items[i]
			copy(l.Items[1:i+1], l.Items[0:i])
			l.Items[0] = item
			return
		}
	}
	l.PushFront(m)
}

func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.Size; i++ {
		if l.Items[i].Move == m {
			return true
		}
	}
	return false
}

// SwapRemove removes index i in O(1) by overwriting it with the last
// element; the list becomes unordered past that point.
func (l *MoveList) SwapRemove(i int) Move {
	m := l.Items[i].Move
	l.Size--
	l.Items[i] = l.Items[l.Size]
	return m
}
