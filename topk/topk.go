package topk

import (
	"container/heap"
	"sort"
	"sync"

	"github.com/dgryski/go-sip13"
)

// Element is a TopK item. Count may overestimate the true count by at most
// Error.
type Element struct {
	Key   string
	Count int
	Error int
}

type elementsByCountDescending []Element

func (elts elementsByCountDescending) Len() int { return len(elts) }
func (elts elementsByCountDescending) Less(i, j int) bool {
	return (elts[i].Count > elts[j].Count) || (elts[i].Count == elts[j].Count && elts[i].Key < elts[j].Key)
}
func (elts elementsByCountDescending) Swap(i, j int) { elts[i], elts[j] = elts[j], elts[i] }

// keys is a min-heap of monitored elements with an index from key to
// position. It is guarded by Stream.mu.
type keys struct {
	m    map[string]int
	elts []Element
}

// Implement the container/heap interface

func (tk *keys) Len() int { return len(tk.elts) }
func (tk *keys) Less(i, j int) bool {
	return (tk.elts[i].Count < tk.elts[j].Count) || (tk.elts[i].Count == tk.elts[j].Count && tk.elts[i].Error > tk.elts[j].Error)
}
func (tk *keys) Swap(i, j int) {
	tk.elts[i], tk.elts[j] = tk.elts[j], tk.elts[i]
	tk.m[tk.elts[i].Key] = i
	tk.m[tk.elts[j].Key] = j
}

func (tk *keys) Push(x interface{}) {
	e := x.(Element)
	tk.m[e.Key] = len(tk.elts)
	tk.elts = append(tk.elts, e)
}

func (tk *keys) Pop() interface{} {
	var e Element
	e, tk.elts = tk.elts[len(tk.elts)-1], tk.elts[:len(tk.elts)-1]
	delete(tk.m, e.Key)
	return e
}

// Stream estimates the most frequent words across many merged tallies using
// the Space-Saving algorithm. It is safe for concurrent use.
type Stream struct {
	mu sync.Mutex

	n      int
	k      keys
	alphas []int
}

// New returns a Stream estimating the top n most frequent elements
func New(n int) *Stream {
	if n <= 0 {
		n = 1
	}
	return &Stream{
		n: n,
		k: keys{
			m:    make(map[string]int),
			elts: make([]Element, 0, n),
		},
		alphas: make([]int, n*6), // 6 is the multiplicative constant from the paper
	}
}

func reduce(x uint64, n int) uint32 {
	return uint32(uint64(uint32(x)) * uint64(n) >> 32)
}

func (s *Stream) slot(x string) uint32 {
	return reduce(sip13.Sum64Str(0, 0, x), len(s.alphas))
}

// Insert adds count occurrences of x and returns the new estimate for x.
func (s *Stream) Insert(x string, count int) Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	// are we tracking this element?
	if idx, ok := s.k.m[x]; ok {
		s.k.elts[idx].Count += count
		e := s.k.elts[idx]
		heap.Fix(&s.k, idx)
		return e
	}

	// can we track more elements?
	if len(s.k.elts) < s.n {
		e := Element{Key: x, Count: count}
		heap.Push(&s.k, e)
		return e
	}

	xhash := s.slot(x)
	alpha := s.alphas[xhash]
	minElt := s.k.elts[0]

	if alpha+count < minElt.Count {
		s.alphas[xhash] += count
		return Element{Key: x, Error: alpha, Count: alpha + count}
	}

	// replace the current minimum element
	s.alphas[s.slot(minElt.Key)] = minElt.Count

	e := Element{Key: x, Error: alpha, Count: alpha + count}
	delete(s.k.m, minElt.Key)
	s.k.elts[0] = e
	s.k.m[x] = 0
	heap.Fix(&s.k, 0)
	return e
}

// Keys returns the current estimates for the most frequent elements, highest
// count first.
func (s *Stream) Keys() []Element {
	s.mu.Lock()
	elts := append([]Element(nil), s.k.elts...)
	s.mu.Unlock()

	sort.Sort(elementsByCountDescending(elts))
	return elts
}

// Estimate returns an estimate for the item x
func (s *Stream) Estimate(x string) Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.k.m[x]; ok {
		return s.k.elts[idx]
	}
	count := s.alphas[s.slot(x)]
	return Element{Key: x, Error: count, Count: count}
}
