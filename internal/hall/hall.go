// Package hall models the single physical screening room as a rectangular seat grid.
package hall

import (
	"fmt"
	"iter"
)

// Default dimensions of the hall.
const (
	DefaultRows  = 10
	DefaultSeats = 30
)

// Seat is a 1-indexed coordinate in the hall.
type Seat struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

func (s Seat) String() string { return fmt.Sprintf("row %d seat %d", s.Row, s.Seat) }

// Matrix is a hall with Rows rows of Seats seats each.
type Matrix struct {
	Rows  int
	Seats int
}

// New returns a hall with the given dimensions. Non-positive values fall back to the defaults.
func New(rows, seats int) Matrix {
	if rows <= 0 {
		rows = DefaultRows
	}
	if seats <= 0 {
		seats = DefaultSeats
	}
	return Matrix{Rows: rows, Seats: seats}
}

// Contains reports whether row and seat lie inside the grid.
func (m Matrix) Contains(row, seat int) bool {
	return row >= 1 && row <= m.Rows && seat >= 1 && seat <= m.Seats
}

// Capacity is the total number of seats.
func (m Matrix) Capacity() int { return m.Rows * m.Seats }

// All yields every seat in row-major order.
func (m Matrix) All() iter.Seq[Seat] {
	return func(yield func(Seat) bool) {
		for row := 1; row <= m.Rows; row++ {
			for seat := 1; seat <= m.Seats; seat++ {
				if !yield(Seat{Row: row, Seat: seat}) {
					return
				}
			}
		}
	}
}

// Except yields the seats of the hall not present in taken, in row-major order.
func (m Matrix) Except(taken map[Seat]struct{}) iter.Seq[Seat] {
	return func(yield func(Seat) bool) {
		for s := range m.All() {
			if _, ok := taken[s]; ok {
				continue
			}
			if !yield(s) {
				return
			}
		}
	}
}
