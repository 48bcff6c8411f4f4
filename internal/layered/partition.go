package layered

// partition is a group of rows sharing one key.
type partition[K comparable, T any] struct {
	key  K
	rows []T
}

// partitionBy groups rows by key. Groups come back in the order their key
// was first seen and rows keep their relative input order.
func partitionBy[K comparable, T any](rows []T, key func(T) K) []partition[K, T] {
	index := make(map[K]int)
	var groups []partition[K, T]

	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, partition[K, T]{key: k})
		}
		groups[i].rows = append(groups[i].rows, row)
	}

	return groups
}
