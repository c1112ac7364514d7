package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutThenPop(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "ref-1", "+5511999990000"))

	contact, ok, err := m.PopIfPresent(ctx, "ref-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "+5511999990000", contact)

	// Second pop on the same reference reports absence.
	_, ok, err = m.PopIfPresent(ctx, "ref-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPopUnknownReference(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.PopIfPresent(ctx, "never-registered")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutReplacesExistingEntry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "ref-1", "first"))
	require.NoError(t, m.Put(ctx, "ref-1", "second"))

	contact, ok, err := m.PopIfPresent(ctx, "ref-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", contact)
	assert.Equal(t, 0, m.Len())
}

func TestConcurrentPopDeliversOnce(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "ref-1", "contact"))

	const attempts = 32
	var wg sync.WaitGroup
	var hits int64
	var mu sync.Mutex

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := m.PopIfPresent(ctx, "ref-1")
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), hits)
}

func TestConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, m.Put(ctx, string(rune('a'+i%26))+"-ref", "contact"))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 26, m.Len())
}

func TestEvictBefore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Put(ctx, "old", "contact-a"))
	time.Sleep(10 * time.Millisecond)
	cutoff := time.Now()
	require.NoError(t, m.Put(ctx, "fresh", "contact-b"))

	evicted, err := m.EvictBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, ok, _ := m.PopIfPresent(ctx, "old")
	assert.False(t, ok)
	_, ok, _ = m.PopIfPresent(ctx, "fresh")
	assert.True(t, ok)
}
