package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortis/internal/core"
)

func TestMemoryStoreAppend(t *testing.T) {
	s := New()

	ref, err := s.AppendWeeklyReport(context.Background(), "u1", core.WeeklyReport{})
	require.NoError(t, err)
	assert.Equal(t, "mem:1", ref)

	_, err = s.AppendWeeklyReport(context.Background(), " ", core.WeeklyReport{})
	assert.ErrorIs(t, err, core.ErrEmptyID)

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)
}
