package records

// Upsert replaces the first element whose natural key equals rec's, keeping
// its position, or appends rec when there is none. carry may copy immutable
// fields (id, created_at) from the replaced element into rec. It returns the
// updated collection, the index rec landed at and whether it replaced.
func Upsert[T any, K comparable](coll []T, naturalKey func(T) K, rec T, carry func(prev T, next *T)) ([]T, int, bool) {
	k := naturalKey(rec)
	for i := range coll {
		if naturalKey(coll[i]) == k {
			if carry != nil {
				carry(coll[i], &rec)
			}
			coll[i] = rec
			return coll, i, true
		}
	}
	return append(coll, rec), len(coll), false
}

// indexOf finds the first element matching pred, or -1.
func indexOf[T any](coll []T, pred func(T) bool) int {
	for i := range coll {
		if pred(coll[i]) {
			return i
		}
	}
	return -1
}
