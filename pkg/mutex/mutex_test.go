package mutex

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	var km KeyedMutex
	var wg sync.WaitGroup

	const workers = 16
	const iterations = 100

	// one counter per key, each guarded only by its keyed lock
	var countA, countB int

	for i := 0; i < workers; i++ {
		key := "a"
		counter := &countA
		if i%2 == 1 {
			key = "b"
			counter = &countB
		}

		wg.Add(1)
		go func(key string, counter *int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				km.Lock(key)
				*counter++
				km.Unlock(key)
			}
		}(key, counter)
	}

	wg.Wait()

	assert.Equal(t, workers/2*iterations, countA)
	assert.Equal(t, workers/2*iterations, countB)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	var km KeyedMutex

	km.Lock("a")

	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	// locking "b" must not wait for "a"
	<-done

	km.Unlock("a")
}
