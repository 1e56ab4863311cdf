package dictionary

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ngalaiko/spellcheck/token"
)

const alphabetSize = 26

type node struct {
	children  [alphabetSize]*node
	endOfWord bool
}

// Trie is a set of correctly spelled words.
// It is not safe for concurrent mutation; once loaded it may be read from
// many goroutines.
type Trie struct {
	root  *node
	words int
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

// letterIndex maps an ASCII letter to its child slot; ok is false for
// anything else, which is skipped rather than treated as a separator.
func letterIndex(c byte) (int, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	}
	return 0, false
}

// HasLetters reports whether word contains at least one ASCII letter.
func HasLetters(word string) bool {
	for i := 0; i < len(word); i++ {
		if _, ok := letterIndex(word[i]); ok {
			return true
		}
	}
	return false
}

// Insert adds word, ignoring non-letters and case.
// A word with no letters marks the root.
func (t *Trie) Insert(word string) {
	crawl := t.root
	for i := 0; i < len(word); i++ {
		idx, ok := letterIndex(word[i])
		if !ok {
			continue
		}
		if crawl.children[idx] == nil {
			crawl.children[idx] = &node{}
		}
		crawl = crawl.children[idx]
	}
	if !crawl.endOfWord {
		crawl.endOfWord = true
		t.words++
	}
}

// Contains reports whether word was inserted, after the same folding as
// Insert. A word with no letters yields the root's flag.
func (t *Trie) Contains(word string) bool {
	crawl := t.root
	for i := 0; i < len(word); i++ {
		idx, ok := letterIndex(word[i])
		if !ok {
			continue
		}
		crawl = crawl.children[idx]
		if crawl == nil {
			return false
		}
	}
	return crawl.endOfWord
}

// Len returns the number of distinct folded words.
func (t *Trie) Len() int {
	return t.words
}

// Load inserts every whitespace-delimited token read from r. On a read error
// the words inserted so far stay valid.
func (t *Trie) Load(r io.Reader) error {
	scanner := token.NewScanner(r, token.DefaultMaxLen)
	for scanner.Scan() {
		t.Insert(scanner.Text())
	}
	return errors.Wrap(scanner.Err(), "read dictionary")
}

// LoadFile opens path and loads it with Load.
func (t *Trie) LoadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return errors.Wrapf(t.Load(file), "load %s", path)
}

// Destroy releases every node. The Trie is empty afterwards.
func (t *Trie) Destroy() {
	stack := []*node{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, child := range n.children {
			if child != nil {
				stack = append(stack, child)
				n.children[i] = nil
			}
		}
	}
	t.root = &node{}
	t.words = 0
}
