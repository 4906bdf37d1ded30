package mutex

import "sync"

// KeyedMutex serializes work per string key. Mutexes are retained for the
// lifetime of the process so that two goroutines never observe different
// mutexes for the same key.
type KeyedMutex struct {
	muMap sync.Map
}

func (km *KeyedMutex) Lock(key string) {
	mu, _ := km.muMap.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

func (km *KeyedMutex) Unlock(key string) {
	mu, ok := km.muMap.Load(key)
	if ok {
		mu.(*sync.Mutex).Unlock()
	}
}
