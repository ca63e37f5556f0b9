package services

// partition holds records of one kind grouped by owner id. Each owner's
// records keep insertion order; owners keep first-seen order so that the
// flattened collection is stable between writes.
type partition[T any] struct {
	owners  []string
	byOwner map[string]*bucket[T]
}

type bucket[T any] struct {
	order []string
	items map[string]T
}

func newPartition[T any]() *partition[T] {
	return &partition[T]{byOwner: make(map[string]*bucket[T])}
}

func (p *partition[T]) has(owner, id string) bool {
	b, ok := p.byOwner[owner]
	if !ok {
		return false
	}
	_, ok = b.items[id]
	return ok
}

func (p *partition[T]) get(owner, id string) (T, bool) {
	var zero T
	b, ok := p.byOwner[owner]
	if !ok {
		return zero, false
	}
	v, ok := b.items[id]
	return v, ok
}

// add inserts item under (owner, id). It returns false and leaves the
// partition untouched when the pair already exists.
func (p *partition[T]) add(owner, id string, item T) bool {
	b, ok := p.byOwner[owner]
	if !ok {
		b = &bucket[T]{items: make(map[string]T)}
		p.byOwner[owner] = b
		p.owners = append(p.owners, owner)
	}
	if _, dup := b.items[id]; dup {
		return false
	}
	b.order = append(b.order, id)
	b.items[id] = item
	return true
}

// replace overwrites an existing record.
func (p *partition[T]) replace(owner, id string, item T) {
	if b, ok := p.byOwner[owner]; ok {
		if _, ok := b.items[id]; ok {
			b.items[id] = item
		}
	}
}

func (p *partition[T]) remove(owner, id string) bool {
	b, ok := p.byOwner[owner]
	if !ok {
		return false
	}
	if _, ok := b.items[id]; !ok {
		return false
	}
	delete(b.items, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	if len(b.order) == 0 {
		p.dropOwner(owner)
	}
	return true
}

// clear removes every record of owner and returns how many there were.
func (p *partition[T]) clear(owner string) int {
	b, ok := p.byOwner[owner]
	if !ok {
		return 0
	}
	n := len(b.order)
	p.dropOwner(owner)
	return n
}

func (p *partition[T]) dropOwner(owner string) {
	delete(p.byOwner, owner)
	for i, o := range p.owners {
		if o == owner {
			p.owners = append(p.owners[:i], p.owners[i+1:]...)
			break
		}
	}
}

// list returns owner's records oldest first. The result is never nil.
func (p *partition[T]) list(owner string) []T {
	b, ok := p.byOwner[owner]
	if !ok {
		return []T{}
	}
	out := make([]T, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.items[id])
	}
	return out
}

// each visits every record of every owner in flattened order.
func (p *partition[T]) each(fn func(owner, id string, item T)) {
	for _, owner := range p.owners {
		b := p.byOwner[owner]
		for _, id := range b.order {
			fn(owner, id, b.items[id])
		}
	}
}

func (p *partition[T]) size() int {
	n := 0
	for _, b := range p.byOwner {
		n += len(b.order)
	}
	return n
}
