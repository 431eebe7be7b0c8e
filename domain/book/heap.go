package book

// bidQueue implements heap.Interface over resting buy orders:
// highest price first, earliest timestamp on ties.
// Use container/heap to manipulate it (Push, Pop, Init).
type bidQueue []*Order

func (q bidQueue) Len() int { return len(q) }

func (q bidQueue) Less(i, j int) bool {
	if q[i].Price != q[j].Price {
		return q[i].Price > q[j].Price
	}
	return q[i].Timestamp < q[j].Timestamp
}

func (q bidQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *bidQueue) Push(x any) {
	*q = append(*q, x.(*Order))
}

func (q *bidQueue) Pop() any {
	old := *q
	n := len(old)
	o := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return o
}

// Peek returns the current best bid without removing it.
func (q bidQueue) Peek() *Order {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}

// askQueue implements heap.Interface over resting sell orders:
// lowest price first, earliest timestamp on ties.
type askQueue []*Order

func (q askQueue) Len() int { return len(q) }

func (q askQueue) Less(i, j int) bool {
	if q[i].Price != q[j].Price {
		return q[i].Price < q[j].Price
	}
	return q[i].Timestamp < q[j].Timestamp
}

func (q askQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *askQueue) Push(x any) {
	*q = append(*q, x.(*Order))
}

func (q *askQueue) Pop() any {
	old := *q
	n := len(old)
	o := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return o
}

// Peek returns the current best ask without removing it.
func (q askQueue) Peek() *Order {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
