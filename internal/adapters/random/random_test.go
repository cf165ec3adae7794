package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcess_Bounds(t *testing.T) {
	src := Process{}
	assert.Equal(t, 0, src.IntN(0))
	assert.Equal(t, 0, src.IntN(-3))
	for i := 0; i < 200; i++ {
		v := src.IntN(7)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}
}

func TestSeeded_Deterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
	assert.Equal(t, 0, a.IntN(0))
}
