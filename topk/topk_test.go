package topk

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_ExactWhileUnderCapacity(t *testing.T) {
	s := New(5)
	s.Insert("teh", 3)
	s.Insert("recieve", 7)
	s.Insert("teh", 2)
	s.Insert("wierd", 1)

	assert.Equal(t, []Element{
		{Key: "recieve", Count: 7},
		{Key: "teh", Count: 5},
		{Key: "wierd", Count: 1},
	}, s.Keys())
	assert.Equal(t, Element{Key: "teh", Count: 5}, s.Estimate("teh"))
}

func TestStream_KeepsHeavyHitters(t *testing.T) {
	s := New(3)
	s.Insert("heavy", 1000)
	s.Insert("medium", 500)
	s.Insert("light", 20)
	for i := 0; i < 200; i++ {
		s.Insert(fmt.Sprintf("noise%d", i), 1)
	}

	keys := s.Keys()
	require.Len(t, keys, 3)
	assert.Equal(t, "heavy", keys[0].Key)
	assert.Equal(t, 1000, keys[0].Count)
	assert.Equal(t, "medium", keys[1].Key)
}

func TestStream_EstimateUntracked(t *testing.T) {
	s := New(1)
	s.Insert("tracked", 10)
	s.Insert("other", 1)

	assert.Equal(t, Element{Key: "tracked", Count: 10}, s.Estimate("tracked"))

	e := s.Estimate("other")
	assert.Equal(t, "other", e.Key)
	assert.Equal(t, 1, e.Count)
	assert.Equal(t, e.Count, e.Error)
}

func TestStream_Concurrent(t *testing.T) {
	s := New(10)
	s.Insert("common", 100)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.Insert("common", 1)
				s.Insert(fmt.Sprintf("rare%d", i%20), 1)
			}
		}()
	}
	wg.Wait()

	top := s.Keys()[0]
	assert.Equal(t, "common", top.Key)
	assert.GreaterOrEqual(t, top.Count, 8100)
}
