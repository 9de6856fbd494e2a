package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeenTracker(t *testing.T) {
	tr := NewSeenTracker(2, time.Hour)

	assert.Nil(t, tr.Seen("s1"))
	tr.MarkSeen("s1", "a", "b")
	assert.Nil(t, tr.Seen("s2"), "sessions do not share seen sets")
	tr.MarkSeen("s1", "c")
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}, "c": {}}, tr.Seen("s1"))

	// The returned set is a copy.
	got := tr.Seen("s1")
	delete(got, "a")
	assert.Len(t, tr.Seen("s1"), 3)

	tr.MarkSeen("", "x")
	assert.Nil(t, tr.Seen(""))

	tr.Forget("s1")
	assert.Nil(t, tr.Seen("s1"))
}

func TestSeenTracker_EvictsOldestSession(t *testing.T) {
	tr := NewSeenTracker(2, time.Hour)
	tr.MarkSeen("s1", "a")
	tr.MarkSeen("s2", "a")
	tr.MarkSeen("s3", "a")

	assert.Nil(t, tr.Seen("s1"))
	assert.NotNil(t, tr.Seen("s3"))
	assert.Equal(t, 0, tr.Cache().CleanExpired())
}
