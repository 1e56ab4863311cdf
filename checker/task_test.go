package checker

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngalaiko/spellcheck/count"
	"github.com/ngalaiko/spellcheck/report"
)

func writeFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTask_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "dict.txt", "the quick brown fox")
	input := writeFile(t, dir, "input.txt", "the quikc brown fox the quikc")

	shared := count.New(count.DefaultCapacity)
	var out bytes.Buffer
	task := NewTask("t1", dict, input, shared, report.NewWriterSink(&out), Options{}, nil)

	result, err := task.Run()
	require.NoError(t, err)

	assert.Equal(t, input, result.Source)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, []count.Element{{Key: "quikc", Count: 2}, {}, {}}, result.Top)
	assert.Equal(t, []count.Element{{Key: "quikc", Count: 2}}, result.Misses)
	assert.Equal(t, 4, result.DictionaryWords)

	assert.Equal(t, input+" 2 quikc  \n", out.String())
	assert.Equal(t, 2, shared.Total())
}

func TestTask_CaseAndPunctuation(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "dict.txt", "hello world dont")
	input := writeFile(t, dir, "input.txt", "Hello, WORLD! Don't -- 42 ... helo Helo helo")

	shared := count.New(count.DefaultCapacity)
	result, err := NewTask("t1", dict, input, shared, report.NewWriterSink(&bytes.Buffer{}), Options{}, nil).Run()
	require.NoError(t, err)

	// Letterless tokens are skipped; misses keep their case.
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, count.Element{Key: "helo", Count: 2}, result.Top[0])
	assert.Equal(t, count.Element{Key: "Helo", Count: 1}, result.Top[1])
}

func TestTask_RecordsIntoSharedTable(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "dict.txt", "a b c")
	shared := count.New(count.DefaultCapacity)
	shared.Record("zzz")

	input := writeFile(t, dir, "input.txt", "a zzz d zzz")
	_, err := NewTask("t1", dict, input, shared, report.NewWriterSink(&bytes.Buffer{}), Options{}, nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 4, shared.Total())
	assert.Equal(t, count.Element{Key: "zzz", Count: 3}, shared.TopK(1)[0])
}

func TestTask_TruncatesLongTokens(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "dict.txt", "abcde")
	input := writeFile(t, dir, "input.txt", "abcdefgh abcdexyz abc")

	result, err := NewTask("t1", dict, input, count.New(10), report.NewWriterSink(&bytes.Buffer{}), Options{MaxTokenLen: 5}, nil).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, count.Element{Key: "abc", Count: 1}, result.Top[0])
}

func TestTask_MissingInput(t *testing.T) {
	dir := t.TempDir()
	dict := writeFile(t, dir, "dict.txt", "word")
	var out bytes.Buffer

	_, err := NewTask("t1", dict, filepath.Join(dir, "nope.txt"), count.New(10), report.NewWriterSink(&out), Options{}, nil).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, InputSource, srcErr.Kind)
	assert.Empty(t, out.String(), "a failed task writes no report line")
}

func TestTask_MissingDictionary(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.txt", "every word is wrong wrong")
	missing := filepath.Join(dir, "nope.txt")

	t.Run("abort", func(t *testing.T) {
		shared := count.New(10)
		_, err := NewTask("t1", missing, input, shared, report.NewWriterSink(&bytes.Buffer{}), Options{DictionaryPolicy: PolicyAbort}, nil).Run()

		var srcErr *SourceError
		require.ErrorAs(t, err, &srcErr)
		assert.Equal(t, DictionarySource, srcErr.Kind)
		assert.Equal(t, missing, srcErr.Path)
		assert.True(t, strings.HasPrefix(err.Error(), "dictionary "+missing+" unavailable"))
		assert.Zero(t, shared.Total())
	})

	t.Run("empty", func(t *testing.T) {
		shared := count.New(10)
		result, err := NewTask("t1", missing, input, shared, report.NewWriterSink(&bytes.Buffer{}), Options{DictionaryPolicy: PolicyEmpty}, nil).Run()
		require.NoError(t, err)

		assert.Equal(t, 5, result.Total)
		assert.Equal(t, count.Element{Key: "wrong", Count: 2}, result.Top[0])
		assert.Equal(t, 5, shared.Total())
	})
}

func TestSourceKind_String(t *testing.T) {
	assert.Equal(t, "dictionary", DictionarySource.String())
	assert.Equal(t, "input", InputSource.String())
	assert.Equal(t, "unknown", SourceKind(7).String())
}

func BenchmarkTask_Run(b *testing.B) {
	dir := b.TempDir()
	dict := writeFile(b, dir, "dict.txt", "the quick brown fox jumps over lazy dog")

	var text strings.Builder
	for i := 0; i < 10000; i++ {
		text.WriteString("the quikc brown fox jumsp over the lazy dgo\n")
	}
	input := writeFile(b, dir, "input.txt", text.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		task := NewTask("bench", dict, input, count.New(count.DefaultCapacity), report.NewWriterSink(&bytes.Buffer{}), Options{}, nil)
		if _, err := task.Run(); err != nil {
			b.Fatal(err)
		}
	}
}
