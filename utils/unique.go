package utils

// Unique wraps a value with an identity, so two wraps of the same value
// never compare equal.
type Unique[V any] struct {
	val V
	cmp *byte
}

func NewUnique[V any](val V) Unique[V] {
	return Unique[V]{
		val: val,
		// non-zero size: pointers to zero-size allocations may share an address
		cmp: new(byte),
	}
}

func (u Unique[V]) Value() V {
	return u.val
}

func (u Unique[V]) Equals(unique Unique[V]) bool {
	return u.cmp == unique.cmp
}
