package diff

// foldWhile threads acc through step for each item in order and stops at the
// first item step rejects. The rejected item does not contribute to the result.
func foldWhile[T, A any](items []T, acc A, step func(A, T) (A, bool)) A {
	for _, item := range items {
		next, ok := step(acc, item)
		if !ok {
			return acc
		}
		acc = next
	}
	return acc
}

// fold threads acc through step for every item in order
func fold[T, A any](items []T, acc A, step func(A, T) A) A {
	return foldWhile(items, acc, func(a A, item T) (A, bool) {
		return step(a, item), true
	})
}
