package queue

import (
	"errors"
	"iter"
)

// Iterator decodes a batch's entries one at a time, from either end. It
// holds a cursor range [low, high) over the batch's entry sequence and is
// exhausted exactly when the range is empty.
//
// A decode failure is local to one entry: the cursor still advances and
// the error is returned for that slot only, so one malformed message never
// hides the rest of the batch. An exhausted iterator is not restartable;
// call Batch.Iter again to re-traverse.
type Iterator[T any] struct {
	entries []Entry
	low     int
	high    int
}

// Next decodes the entry at the front of the remaining range and advances
// past it. It returns ErrDone once the iterator is exhausted; any other
// error refers to the entry at this position only.
func (it *Iterator[T]) Next() (Message[T], error) {
	if it.low >= it.high {
		var zero Message[T]
		return zero, ErrDone
	}
	msg, err := decodeEntry[T](it.entries[it.low])
	it.low++
	return msg, err
}

// NextBack decodes the entry at the back of the remaining range and
// shrinks the range past it. Forward and backward steps may be
// interleaved; no entry is ever yielded twice.
func (it *Iterator[T]) NextBack() (Message[T], error) {
	if it.low >= it.high {
		var zero Message[T]
		return zero, ErrDone
	}
	it.high--
	return decodeEntry[T](it.entries[it.high])
}

// Remaining returns the exact number of entries not yet yielded. Useful
// for pre-sizing downstream buffers.
func (it *Iterator[T]) Remaining() int { return it.high - it.low }

// All adapts forward iteration to a range-over-func sequence. Each pair is
// the decode result for one entry; decode errors do not stop the sequence.
func (it *Iterator[T]) All() iter.Seq2[Message[T], error] {
	return func(yield func(Message[T], error) bool) {
		for {
			msg, err := it.Next()
			if errors.Is(err, ErrDone) {
				return
			}
			if !yield(msg, err) {
				return
			}
		}
	}
}
