// Package randomtest provides a scripted RandomSource for tests.
package randomtest

import "github.com/lukejcollins/litroulette/internal/core/domain/ports"

var _ ports.RandomSource = (*Sequence)(nil)

// Sequence replays fixed draws, each reduced modulo n, and records the bounds it was asked
// for. It cycles when exhausted; an empty sequence always returns 0. It is not safe for
// concurrent use.
type Sequence struct {
	Values []int
	Bounds []int
	next   int
}

func NewSequence(values ...int) *Sequence {
	return &Sequence{Values: values}
}

func (s *Sequence) IntN(n int) int {
	s.Bounds = append(s.Bounds, n)
	if n <= 0 || len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
