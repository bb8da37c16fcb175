package strategy

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type cycle struct {
	next int
}

func (c *cycle) Pick(n int) int {
	v := c.next % n
	c.next++
	return v
}

func Test_Uniform(t *testing.T) {
	var s Strategy = NewUniform(&cycle{})
	assert.False(t, s.HasNext())
	_, err := s.Pick()
	assert.True(t, errors.Is(err, ErrEmpty))

	s.Push(4, 7, 9, 7)
	assert.Equal(t, 3, s.Size())
	assert.True(t, s.Contains(7))

	assert.True(t, s.Remove(4))
	assert.False(t, s.Remove(4))
	assert.Equal(t, []uint64{9, 7}, s.Items())

	id, err := s.Pick()
	assert.Nil(t, err)
	assert.Equal(t, uint64(9), id)
	id, _ = s.Pick()
	assert.Equal(t, uint64(7), id)

	assert.True(t, s.Remove(7))
	assert.True(t, s.Remove(9))
	assert.False(t, s.HasNext())
}
