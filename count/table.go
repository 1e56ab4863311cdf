package count

import (
	"sync"
)

// DefaultCapacity is the number of buckets used when none is given.
const DefaultCapacity = 100

// Element is a word and how many times it was recorded.
// The zero Element stands for an empty top-k slot.
type Element struct {
	Key   string
	Count int
}

type entry struct {
	word  string
	count int
	next  *entry
}

// Table counts occurrences of words in a fixed number of chained buckets.
// Words are compared case-sensitively. All methods are safe for concurrent use:
// Record holds only the lock guarding its bucket, readers hold all of them.
type Table struct {
	buckets []*entry
	locks   []sync.Mutex
}

// Option configures a Table.
type Option func(*Table)

// WithLockStripes shards the table lock by bucket index. n <= 1 keeps a
// single table-wide lock.
func WithLockStripes(n int) Option {
	return func(t *Table) {
		if n < 1 {
			n = 1
		}
		if n > len(t.buckets) {
			n = len(t.buckets)
		}
		t.locks = make([]sync.Mutex, n)
	}
}

// New returns a Table with capacity buckets.
func New(capacity int, opts ...Option) *Table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	t := &Table{
		buckets: make([]*entry, capacity),
		locks:   make([]sync.Mutex, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// hash is djb2: h = h*33 + c, seeded with 5381.
func hash(word string, capacity int) int {
	var h uint64 = 5381
	for i := 0; i < len(word); i++ {
		h = h*33 + uint64(word[i])
	}
	return int(h % uint64(capacity))
}

func (t *Table) lockFor(bucket int) *sync.Mutex {
	return &t.locks[bucket%len(t.locks)]
}

func (t *Table) lockAll() {
	for i := range t.locks {
		t.locks[i].Lock()
	}
}

func (t *Table) unlockAll() {
	for i := len(t.locks) - 1; i >= 0; i-- {
		t.locks[i].Unlock()
	}
}

// Record increments the count of word, adding it with count 1 if it is new,
// and returns the new count.
func (t *Table) Record(word string) int {
	idx := hash(word, len(t.buckets))
	mu := t.lockFor(idx)
	mu.Lock()
	defer mu.Unlock()

	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.word == word {
			e.count++
			return e.count
		}
	}
	t.buckets[idx] = &entry{word: word, count: 1, next: t.buckets[idx]}
	return 1
}

// Range calls fn for every word in bucket order, then chain order, until fn
// returns false. fn must not call back into the Table.
func (t *Table) Range(fn func(Element) bool) {
	t.lockAll()
	defer t.unlockAll()

	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if !fn(Element{Key: e.word, Count: e.count}) {
				return
			}
		}
	}
}

// Total returns the sum of all counts.
func (t *Table) Total() int {
	total := 0
	t.Range(func(e Element) bool {
		total += e.Count
		return true
	})
	return total
}

// Len returns the number of distinct words.
func (t *Table) Len() int {
	n := 0
	t.Range(func(Element) bool {
		n++
		return true
	})
	return n
}

// TopK returns the k words with the highest counts in a single pass, keeping
// only k running winners. Equal counts keep the word seen first in Range
// order, which depends on the hash and on insertion order. The result always
// has k slots; missing words are zero Elements.
func (t *Table) TopK(k int) []Element {
	if k <= 0 {
		return nil
	}
	top := make([]Element, k)
	t.Range(func(e Element) bool {
		for j := 0; j < k; j++ {
			if e.Count > top[j].Count {
				copy(top[j+1:], top[j:k-1])
				top[j] = e
				break
			}
		}
		return true
	})
	return top
}

// Destroy drops every entry and the bucket array. The Table must not be used
// afterwards.
func (t *Table) Destroy() {
	t.lockAll()
	defer t.unlockAll()

	for i, head := range t.buckets {
		for e := head; e != nil; {
			next := e.next
			e.next = nil
			e = next
		}
		t.buckets[i] = nil
	}
	t.buckets = nil
}
