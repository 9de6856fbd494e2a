package alerts

import (
	"time"

	"fortis/internal/cache"
)

// SeenTracker remembers, per client session, which alert ids have been shown.
// The state is process-local and expires with the session.
type SeenTracker struct {
	sessions *cache.LRU[map[string]struct{}]
}

func NewSeenTracker(maxSessions int, ttl time.Duration) *SeenTracker {
	return &SeenTracker{sessions: cache.NewLRU[map[string]struct{}](maxSessions, ttl)}
}

// Seen returns a copy of the session's seen set. Unknown sessions yield nil.
func (t *SeenTracker) Seen(session string) map[string]struct{} {
	if session == "" {
		return nil
	}
	set, ok := t.sessions.Get(session)
	if !ok {
		return nil
	}
	return copySet(set)
}

// MarkSeen records ids as seen for the session.
func (t *SeenTracker) MarkSeen(session string, ids ...string) {
	if session == "" || len(ids) == 0 {
		return
	}
	t.sessions.Update(session, func(cur map[string]struct{}, _ bool) map[string]struct{} {
		next := copySet(cur)
		if next == nil {
			next = make(map[string]struct{}, len(ids))
		}
		for _, id := range ids {
			next[id] = struct{}{}
		}
		return next
	})
}

// Forget drops a session.
func (t *SeenTracker) Forget(session string) {
	t.sessions.Delete(session)
}

// Cache exposes the backing cache so a janitor can sweep it.
func (t *SeenTracker) Cache() cache.Cleaner {
	return t.sessions
}

func copySet(in map[string]struct{}) map[string]struct{} {
	if in == nil {
		return nil
	}
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
