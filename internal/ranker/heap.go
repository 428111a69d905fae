package ranker

import "container/heap"

// hitHeap is a bounded best-of-K min-heap over hit scores. The root is the
// weakest retained hit; among equal scores the lexicographically larger path
// sits nearer the root so it is evicted first, keeping selection
// deterministic.
type hitHeap []ScoredHit

func (h hitHeap) Len() int { return len(h) }

func (h hitHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].Path > h[j].Path
}

func (h hitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) {
	*h = append(*h, x.(ScoredHit))
}

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// offer inserts hit, evicting the current weakest when the heap is full.
func (h *hitHeap) offer(hit ScoredHit, k int) {
	if h.Len() < k {
		heap.Push(h, hit)
		return
	}
	if h.beats(hit.Score, hit.Path) {
		(*h)[0] = hit
		heap.Fix(h, 0)
	}
}

// beats reports whether a hit with the given score and path would displace
// the current weakest entry.
func (h *hitHeap) beats(score float64, path string) bool {
	if h.Len() == 0 {
		return true
	}
	root := (*h)[0]
	if score != root.Score {
		return score > root.Score
	}
	return path < root.Path
}

// drain empties the heap and returns the retained hits in arbitrary order.
func (h *hitHeap) drain() []ScoredHit {
	hits := make([]ScoredHit, len(*h))
	copy(hits, *h)
	*h = (*h)[:0]
	return hits
}
