package memory

import (
	"iter"
	"maps"
	"slices"
)

// RecordStore is keyed storage for one entity kind with monotonic id allocation.
// Ids start at 1 and are never handed out twice, even after deletion.
type RecordStore[R any] struct {
	rows map[int]R
	next int
}

// NewRecordStore returns an empty store whose first allocated id is 1.
func NewRecordStore[R any]() *RecordStore[R] {
	return &RecordStore[R]{rows: make(map[int]R), next: 1}
}

// Allocate reserves the next unused id.
func (s *RecordStore[R]) Allocate() int {
	id := s.next
	s.next++
	return id
}

// NextID reports the id the next Allocate call will return.
func (s *RecordStore[R]) NextID() int { return s.next }

// Put stores r under id, replacing any previous record.
func (s *RecordStore[R]) Put(id int, r R) { s.rows[id] = r }

// Get returns the record under id.
func (s *RecordStore[R]) Get(id int) (R, bool) {
	r, ok := s.rows[id]
	return r, ok
}

// Has reports whether id currently exists.
func (s *RecordStore[R]) Has(id int) bool {
	_, ok := s.rows[id]
	return ok
}

// Delete removes id and reports whether it existed.
func (s *RecordStore[R]) Delete(id int) bool {
	if _, ok := s.rows[id]; !ok {
		return false
	}
	delete(s.rows, id)
	return true
}

// Len is the number of live records.
func (s *RecordStore[R]) Len() int { return len(s.rows) }

// All iterates live records in map order.
func (s *RecordStore[R]) All() iter.Seq2[int, R] { return maps.All(s.rows) }

// Values iterates live records in map order.
func (s *RecordStore[R]) Values() iter.Seq[R] { return maps.Values(s.rows) }

// CollectIDs materializes the ids of records matching keep so callers can
// delete them without mutating the map under iteration.
func (s *RecordStore[R]) CollectIDs(keep func(R) bool) []int {
	var ids []int
	for id, r := range s.rows {
		if keep(r) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func (s *RecordStore[R]) clone() *RecordStore[R] {
	return &RecordStore[R]{rows: maps.Clone(s.rows), next: s.next}
}
