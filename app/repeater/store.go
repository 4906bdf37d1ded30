package repeater

import "sync"

// Store owns the per-chat sessions. Sessions are created lazily on first
// access and evicted once the chat has been inactive for longer than
// cacheTimeout seconds. Map access is safe under concurrent create and
// sweep; the sessions themselves are serialized by the coordinator.
type Store struct {
	maxHistory   int
	cacheTimeout int64

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(maxHistory int, cacheTimeout int64) *Store {
	return &Store{
		maxHistory:   maxHistory,
		cacheTimeout: cacheTimeout,
		sessions:     make(map[string]*Session),
	}
}

func (st *Store) GetOrCreate(chatID string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[chatID]
	if !ok {
		session = NewSession(st.maxHistory)
		st.sessions[chatID] = session
	}
	return session
}

func (st *Store) Get(chatID string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[chatID]
	return session, ok
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

// ExpiredChats returns the ids of sessions eligible for eviction at now.
// A session with an empty window is immediately eligible.
func (st *Store) ExpiredChats(now int64) []string {
	st.mu.Lock()
	defer st.mu.Unlock()

	var expired []string
	for chatID, session := range st.sessions {
		if st.isExpired(session, now) {
			expired = append(expired, chatID)
		}
	}
	return expired
}

// DropIfExpired removes the session if it is still expired at now. The
// re-check lets callers hold the chat-level lock while evicting, so a
// session is never dropped under an in-flight append.
func (st *Store) DropIfExpired(chatID string, now int64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	session, ok := st.sessions[chatID]
	if !ok || !st.isExpired(session, now) {
		return false
	}

	delete(st.sessions, chatID)
	return true
}

// Sweep removes every expired session and returns the evicted chat ids.
// It takes no chat-level locks, so callers that append to sessions
// concurrently must not use it; the coordinator runs ExpiredChats and
// DropIfExpired under the per-chat lock instead, so a session is never
// dropped under an in-flight append.
func (st *Store) Sweep(now int64) []string {
	var evicted []string
	for _, chatID := range st.ExpiredChats(now) {
		if st.DropIfExpired(chatID, now) {
			evicted = append(evicted, chatID)
		}
	}
	return evicted
}

func (st *Store) isExpired(session *Session, now int64) bool {
	latest, ok := session.LatestTimestamp()
	if !ok {
		return true
	}
	return now-latest > st.cacheTimeout
}
