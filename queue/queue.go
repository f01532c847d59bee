package queue

import (
	"sort"
	"time"
)

// Item is a payload held in a Queue until its release time.
type Item[T any] struct {
	// AddedAt is the time at which the item was pushed. It does not affect
	// ordering.
	AddedAt time.Time
	// ReleaseAt is the time at or after which the item becomes due.
	ReleaseAt time.Time
	Payload   T
}

// Queue holds items ordered by their release time in ascending order. Items
// with equal release time are kept in the order they were pushed.
//
// Queue is not safe for concurrent use.
type Queue[T any] struct {
	items []Item[T]
}

// New instantiates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push inserts payload to be released at releaseAt. A release time earlier than
// now is treated as now, i.e. the item is immediately due.
func (q *Queue[T]) Push(now, releaseAt time.Time, payload T) {
	if releaseAt.Before(now) {
		releaseAt = now
	}
	// Find the first item strictly after releaseAt so that an item pushed with the
	// same release time as existing items is placed after all of them.
	i := sort.Search(len(q.items), func(i int) bool {
		return q.items[i].ReleaseAt.After(releaseAt)
	})
	q.items = append(q.items, Item[T]{})
	copy(q.items[i+1:], q.items[i:])
	q.items[i] = Item[T]{
		AddedAt:   now,
		ReleaseAt: releaseAt,
		Payload:   payload,
	}
}

// PopReady removes and returns the earliest item if it is due at now. Otherwise,
// the queue is left unmodified and false is returned.
func (q *Queue[T]) PopReady(now time.Time) (Item[T], bool) {
	if len(q.items) == 0 || q.items[0].ReleaseAt.After(now) {
		return Item[T]{}, false
	}
	item := q.items[0]
	q.items[0] = Item[T]{} // avoid retaining the payload
	q.items = q.items[1:]
	return item, true
}

// NextReleaseAt returns the release time of the earliest item, if any.
func (q *Queue[T]) NextReleaseAt() (time.Time, bool) {
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].ReleaseAt, true
}

// Len returns the number of items that are yet to be released.
func (q *Queue[T]) Len() int { return len(q.items) }

// IsEmpty checks whether there are no items left to release.
func (q *Queue[T]) IsEmpty() bool { return len(q.items) == 0 }
