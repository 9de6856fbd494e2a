// Package archive decides which transactions are old enough to be hidden from
// the primary list. Archiving changes visibility only; archived records stay
// in the log.
package archive

import (
	"time"

	"fortis/internal/core"
)

// DefaultAfterDays is the age, in whole days, a transaction must exceed.
const DefaultAfterDays = 90

// Class of a transaction with respect to archiving.
type Class int

const (
	Active Class = iota
	Eligible
)

func (c Class) String() string {
	if c == Eligible {
		return "archive-eligible"
	}
	return "active"
}

// Policy classifies transactions against an age threshold.
type Policy struct {
	AfterDays int
}

// Default returns the 90 day policy.
func Default() Policy {
	return Policy{AfterDays: DefaultAfterDays}
}

// Classify reports whether tx is archive-eligible at now: not yet archived and
// dated, after truncating both to the day, strictly more than AfterDays before
// now. Undated transactions stay active.
func (p Policy) Classify(tx core.Transaction, now time.Time) Class {
	if tx.Archived || tx.Date.IsZero() {
		return Active
	}
	cutoff := truncateDay(now, now.Location()).AddDate(0, 0, -p.AfterDays)
	if truncateDay(tx.Date, now.Location()).Before(cutoff) {
		return Eligible
	}
	return Active
}

// Eligible returns the archive-eligible transactions in input order.
func (p Policy) Eligible(txs []core.Transaction, now time.Time) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if p.Classify(tx, now) == Eligible {
			out = append(out, tx)
		}
	}
	return out
}

// Classify applies the default policy.
func Classify(tx core.Transaction, now time.Time) Class {
	return Default().Classify(tx, now)
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Failure records one id that could not be archived.
type Failure struct {
	ID  string
	Err error
}

// BulkResult reports the outcome of a bulk archive, restore or purge.
// Applied changes are never rolled back, so Applied is accurate even when
// Failed is not empty.
type BulkResult struct {
	Applied []string
	Failed  []Failure
	// Skipped holds ids unknown to the snapshot or already in the target state.
	Skipped []string
}

// Complete reports whether every requested id was applied or skipped.
func (r BulkResult) Complete() bool {
	return len(r.Failed) == 0
}

// Plan splits requested ids into those whose archived flag must change to
// target and those to skip, keeping request order and dropping duplicates.
func Plan(ids []string, txs []core.Transaction, target bool) (apply []string, skipped []string) {
	byID := make(map[string]core.Transaction, len(txs))
	for _, tx := range txs {
		byID[tx.ID] = tx
	}
	done := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := done[id]; dup {
			continue
		}
		done[id] = struct{}{}
		tx, ok := byID[id]
		if !ok || id == "" || tx.Archived == target {
			skipped = append(skipped, id)
			continue
		}
		apply = append(apply, id)
	}
	return apply, skipped
}
