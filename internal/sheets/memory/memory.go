package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fortis/internal/core"
	ports "fortis/internal/sheets"
)

// Entry is one appended report.
type Entry struct {
	UserID string
	Report core.WeeklyReport
}

// Store keeps appended reports in memory.
type Store struct {
	mu    sync.Mutex
	items []Entry
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendWeeklyReport stores the report and returns a synthetic row reference.
func (s *Store) AppendWeeklyReport(_ context.Context, userID string, r core.WeeklyReport) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", core.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, Entry{UserID: userID, Report: r})
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Entries returns a copy of everything appended so far.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.items...)
}
