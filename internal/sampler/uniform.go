package sampler

// Uniform returns one element of items with equal probability. The bool is
// false when items is empty.
func Uniform[T any](rng Rand, items []T) (T, bool) {
	var zero T
	switch len(items) {
	case 0:
		return zero, false
	case 1:
		return items[0], true
	}
	return items[rng.Intn(len(items))], true
}

// Shuffle permutes items in place (Fisher-Yates).
func Shuffle[T any](rng Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
