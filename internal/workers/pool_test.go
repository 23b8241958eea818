package workers

import (
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Submit(t *testing.T) {
	p, err := NewPool(20)
	require.NoError(t, err)
	defer p.Release()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		n  int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			mu.Lock()
			n++
			mu.Unlock()
		}))
	}
	wg.Wait()

	assert.Equal(t, 20, n)
}

func TestPool_FullPoolRejectsInsteadOfBlocking(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	defer p.Release()

	release := make(chan struct{})
	defer close(release)
	require.NoError(t, p.Submit(func() { <-release }))

	start := time.Now()
	err = p.Submit(func() {})
	assert.ErrorIs(t, err, ants.ErrPoolOverload)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPool_PanicDoesNotKillPool(t *testing.T) {
	p, err := NewPool(1)
	require.NoError(t, err)
	defer p.Release()

	require.NoError(t, p.Submit(func() { panic("boom") }))

	done := make(chan struct{})
	require.Eventually(t, func() bool {
		return p.Submit(func() { close(done) }) == nil
	}, time.Second, 5*time.Millisecond)
	<-done
}
