package ds

type Set[T comparable] map[T]struct{}

func (s Set[T]) Add(items ...T) {
	for _, item := range items {
		s[item] = struct{}{}
	}
}

func (s Set[T]) Has(item T) bool {
	_, exists := s[item]
	return exists
}
