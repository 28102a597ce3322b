package vector

import "sort"

// TopK returns the k best elements of items under less (best first) in
// expected O(n + k log k): a quickselect partition places the k best at the
// front of a working copy, then only that prefix is sorted. k <= 0 returns
// an empty slice; k >= len(items) sorts and returns everything.
func TopK[T any](items []T, k int, less func(a, b T) bool) []T {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	work := make([]T, len(items))
	copy(work, items)
	if k >= len(work) {
		sort.SliceStable(work, func(i, j int) bool { return less(work[i], work[j]) })
		return work
	}
	quickselect(work, k, less)
	prefix := work[:k]
	sort.SliceStable(prefix, func(i, j int) bool { return less(prefix[i], prefix[j]) })
	return prefix
}

// quickselect partitions work so that the k smallest elements under less
// occupy work[:k], in no particular order.
func quickselect[T any](work []T, k int, less func(a, b T) bool) {
	lo, hi := 0, len(work)-1
	for lo < hi {
		p := partition(work, lo, hi, less)
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition uses the median of the first, middle, and last elements as pivot
// to avoid quadratic behavior on sorted input.
func partition[T any](work []T, lo, hi int, less func(a, b T) bool) int {
	mid := lo + (hi-lo)/2
	if less(work[mid], work[lo]) {
		work[lo], work[mid] = work[mid], work[lo]
	}
	if less(work[hi], work[lo]) {
		work[lo], work[hi] = work[hi], work[lo]
	}
	if less(work[hi], work[mid]) {
		work[mid], work[hi] = work[hi], work[mid]
	}
	work[mid], work[hi] = work[hi], work[mid]
	pivot := work[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if less(work[j], pivot) {
			work[i], work[j] = work[j], work[i]
			i++
		}
	}
	work[i], work[hi] = work[hi], work[i]
	return i
}
