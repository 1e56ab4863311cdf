package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrie_ContainsInserted(t *testing.T) {
	trie := New()
	words := []string{"the", "quick", "brown", "fox", "a", "therefore"}
	for _, w := range words {
		trie.Insert(w)
	}

	for _, w := range words {
		assert.True(t, trie.Contains(w), w)
	}
	for _, w := range []string{"th", "quic", "foxes", "b", "z", "thereforee"} {
		assert.False(t, trie.Contains(w), w)
	}
	assert.Equal(t, len(words), trie.Len())
}

func TestTrie_CaseInsensitive(t *testing.T) {
	trie := New()
	trie.Insert("hello")

	assert.Equal(t, trie.Contains("hello"), trie.Contains("Hello"))
	assert.True(t, trie.Contains("HELLO"))

	trie.Insert("World")
	assert.True(t, trie.Contains("world"))
}

func TestTrie_IgnoresNonLetters(t *testing.T) {
	trie := New()
	trie.Insert("don't")

	assert.True(t, trie.Contains("dont"))
	assert.Equal(t, trie.Contains("dont"), trie.Contains("don't"))
	assert.True(t, trie.Contains("d-o-n-t!"))

	trie.Insert("café")
	assert.True(t, trie.Contains("caf"), "non-ASCII bytes are skipped")
}

func TestTrie_InsertIsIdempotent(t *testing.T) {
	trie := New()
	trie.Insert("fox")
	trie.Insert("FOX")
	trie.Insert("f.o.x")

	assert.Equal(t, 1, trie.Len())
	assert.True(t, trie.Contains("fox"))
}

func TestTrie_LetterlessWord(t *testing.T) {
	trie := New()
	trie.Insert("fox")

	// Zero transitions: the answer is the root's own flag.
	assert.False(t, trie.Contains("..."))
	assert.False(t, trie.Contains(""))
	assert.False(t, HasLetters("1234"))
	assert.True(t, HasLetters("12a4"))

	trie.Insert("42")
	assert.True(t, trie.Contains("!!!"))
	assert.True(t, trie.Contains(""))
}

func TestTrie_Load(t *testing.T) {
	trie := New()
	err := trie.Load(strings.NewReader("the quick\n\tbrown   fox\r\n"))
	require.NoError(t, err)

	assert.Equal(t, 4, trie.Len())
	assert.True(t, trie.Contains("brown"))
	assert.False(t, trie.Contains("quickbrown"))
}

type failingReader struct {
	data string
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errors.New("disk on fire")
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestTrie_LoadKeepsWordsBeforeFailure(t *testing.T) {
	trie := New()
	err := trie.Load(&failingReader{data: "alpha beta "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	assert.True(t, trie.Contains("alpha"))
	assert.True(t, trie.Contains("beta"))
}

func TestTrie_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.txt")
	require.NoError(t, os.WriteFile(path, []byte("apple banana cherry"), 0644))

	trie := New()
	require.NoError(t, trie.LoadFile(path))
	assert.True(t, trie.Contains("Banana"))

	err := New().LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestTrie_Destroy(t *testing.T) {
	trie := New()
	require.NoError(t, trie.Load(strings.NewReader("a ab abc abd b")))
	trie.Destroy()

	assert.Equal(t, 0, trie.Len())
	assert.False(t, trie.Contains("abc"))

	trie.Insert("again")
	assert.True(t, trie.Contains("again"))
}
