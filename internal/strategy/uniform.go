package strategy

import (
	"github.com/pkg/errors"
)

var ErrEmpty = errors.New("root set is empty")

// Uniform keeps a set of node ids and picks one uniformly at random. The
// slice order only depends on the sequence of Push and Remove calls, so the
// choice is reproducible for a fixed source.
type Uniform struct {
	ids   []uint64
	index map[uint64]int
	src   Source
}

func NewUniform(src Source) *Uniform {
	return &Uniform{
		index: make(map[uint64]int),
		src:   src,
	}
}

func (u *Uniform) Size() int {
	return len(u.ids)
}

func (u *Uniform) HasNext() bool {
	return len(u.ids) > 0
}

func (u *Uniform) Contains(id uint64) bool {
	_, ok := u.index[id]
	return ok
}

func (u *Uniform) Push(ids ...uint64) {
	for _, id := range ids {
		if u.Contains(id) {
			continue
		}
		u.index[id] = len(u.ids)
		u.ids = append(u.ids, id)
	}
}

// Remove 删除id，最后一个元素换到被删除的位置
func (u *Uniform) Remove(id uint64) bool {
	i, ok := u.index[id]
	if !ok {
		return false
	}
	last := len(u.ids) - 1
	if i != last {
		u.ids[i] = u.ids[last]
		u.index[u.ids[i]] = i
	}
	u.ids = u.ids[:last]
	delete(u.index, id)
	return true
}

func (u *Uniform) Pick() (uint64, error) {
	if len(u.ids) == 0 {
		return 0, ErrEmpty
	}
	return u.ids[u.src.Pick(len(u.ids))], nil
}

// Items returns a copy of the current ids.
func (u *Uniform) Items() []uint64 {
	return append([]uint64(nil), u.ids...)
}
