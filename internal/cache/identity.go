package cache

import "container/list"

// IdentityMap holds at most one value per key and never evicts.
// Values come back in insertion order; replacing a value keeps its
// position. It is not safe for concurrent use.
type IdentityMap[K comparable, V any] struct {
	items map[K]*list.Element
	order *list.List
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

var _ Cache[string, int] = (*IdentityMap[string, int])(nil)

func NewIdentityMap[K comparable, V any]() *IdentityMap[K, V] {
	return &IdentityMap[K, V]{
		items: make(map[K]*list.Element),
		order: list.New(),
	}
}

func (m *IdentityMap[K, V]) Get(key K) (V, bool) {
	elem, ok := m.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	return elem.Value.(*entry[K, V]).value, true
}

func (m *IdentityMap[K, V]) Set(key K, value V) {
	if elem, ok := m.items[key]; ok {
		elem.Value.(*entry[K, V]).value = value
		return
	}
	m.items[key] = m.order.PushBack(&entry[K, V]{key: key, value: value})
}

func (m *IdentityMap[K, V]) Delete(key K) {
	if elem, ok := m.items[key]; ok {
		m.order.Remove(elem)
		delete(m.items, key)
	}
}

func (m *IdentityMap[K, V]) Has(key K) bool {
	_, ok := m.items[key]
	return ok
}

func (m *IdentityMap[K, V]) Size() int {
	return len(m.items)
}

func (m *IdentityMap[K, V]) Values() []V {
	out := make([]V, 0, len(m.items))
	for elem := m.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(*entry[K, V]).value)
	}
	return out
}
