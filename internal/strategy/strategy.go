// Package strategy 实现未满足根节点的选择策略
package strategy

// Source is the seeded randomness a strategy draws from.
type Source interface {
	// Pick returns a value in [0, n).
	Pick(n int) int
}

// Strategy 管理未满足的根节点，Pick随机选出下一个
type Strategy interface {
	Size() int
	HasNext() bool
	Contains(id uint64) bool
	Push(ids ...uint64)
	Remove(id uint64) bool
	Pick() (uint64, error)
	Items() []uint64
}
