package pqueue

import (
	"math"
	"sort"
)

// WithCap bounds the queue; items ranked past the cap are dropped on Push.
func WithCap(size uint) Option {
	return func(q *Queue) {
		q.cap = int(size)
	}
}

type Option func(*Queue)

type item struct {
	value interface{}
	prior float64
}

func New(opts ...Option) *Queue {
	p := &Queue{cap: -1}
	for _, opt := range opts {
		opt(p)
	}
	if p.cap > 0 {
		p.items = make([]item, 0, p.cap)
	}
	return p
}

// Queue keeps values in ascending priority order. Values with equal priority
// stay in insertion order and NaN priorities rank last.
type Queue struct {
	cap   int
	items []item
}

func (q *Queue) Push(val interface{}, priority float64) {
	if q.cap == 0 {
		return
	}
	idx := sort.Search(len(q.items), func(i int) bool {
		return after(q.items[i].prior, priority)
	})
	if q.cap > 0 && idx >= q.cap {
		return
	}
	q.items = append(q.items, item{})
	copy(q.items[idx+1:], q.items[idx:])
	q.items[idx] = item{value: val, prior: priority}
	if q.cap > 0 && len(q.items) > q.cap {
		q.items = q.items[:q.cap]
	}
}

// after reports whether an item of priority p ranks strictly behind one of
// priority x.
func after(p, x float64) bool {
	switch {
	case math.IsNaN(x):
		return false
	case math.IsNaN(p):
		return true
	default:
		return p > x
	}
}

func (q *Queue) Len() int { return len(q.items) }

// Seek returns the item at rank idx without removing it.
func (q *Queue) Seek(idx int) (interface{}, float64) {
	item := q.items[idx]
	return item.value, item.prior
}
