package datastructure

import (
	"errors"

	"golang.org/x/exp/constraints"
)

var ErrHeapEmpty = errors.New("heap is empty")

// PriorityQueueNode. heap entry ranked by integer travel time (seconds)
type PriorityQueueNode[T constraints.Integer] struct {
	rank    int
	item    T
	itemPos int
}

func (p *PriorityQueueNode[T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[T]) GetRank() int {
	return p.rank
}

func (p *PriorityQueueNode[T]) GetPos() int {
	return p.itemPos
}

func NewPriorityQueueNode[T constraints.Integer](rank int, item T) *PriorityQueueNode[T] {
	return &PriorityQueueNode[T]{rank: rank, item: item, itemPos: -1}
}

// MinHeap. d-ary min heap with position tracking so DecreaseKey is O(log_d N).
// equal ranks pop in ascending item order, which keeps search results deterministic.
type MinHeap[T constraints.Integer] struct {
	heap []*PriorityQueueNode[T]
	d    int
}

func NewFourAryHeap[T constraints.Integer]() *MinHeap[T] {
	return &MinHeap[T]{
		heap: make([]*PriorityQueueNode[T], 0),
		d:    4,
	}
}

func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / h.d
}

func (h *MinHeap[T]) less(i, j int) bool {
	a, b := h.heap[i], h.heap[j]
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.item < b.item
}

func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.less(index, h.parent(index)) {
		h.swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown. swap with the smallest of the d children while it is smaller
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		leftMostChild := index*h.d + 1
		if leftMostChild >= len(h.heap) {
			return
		}

		sentinel := min(leftMostChild+h.d, len(h.heap))
		smallest := leftMostChild
		for i := leftMostChild + 1; i < sentinel; i++ {
			if h.less(i, smallest) {
				smallest = i
			}
		}

		if !h.less(smallest, index) {
			return
		}
		h.swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.heap[i].itemPos = i
	h.heap[j].itemPos = j
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) Insert(node *PriorityQueueNode[T]) {
	h.heap = append(h.heap, node)
	index := len(h.heap) - 1
	node.itemPos = index
	h.heapifyUp(index)
}

// ExtractMin. pop the root. popped node gets position -1
func (h *MinHeap[T]) ExtractMin() (*PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return nil, ErrHeapEmpty
	}
	root := h.heap[0]
	last := len(h.heap) - 1

	h.swap(0, last)
	h.heap = h.heap[:last]
	root.itemPos = -1
	if len(h.heap) > 0 {
		h.heapifyDown(0)
	}
	return root, nil
}

// DecreaseKey. rank must not be larger than the current rank of node, node must still be queued
func (h *MinHeap[T]) DecreaseKey(node *PriorityQueueNode[T], rank int) error {
	pos := node.itemPos
	if pos < 0 || pos >= len(h.heap) || h.heap[pos] != node || node.rank < rank {
		return errors.New("invalid index or new value")
	}

	node.rank = rank
	h.heapifyUp(pos)
	return nil
}
