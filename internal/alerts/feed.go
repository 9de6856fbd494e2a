package alerts

import (
	"errors"

	"fortis/internal/core"
)

// ErrNotDismissible is returned when dismissing the synthetic all-clear alert.
var ErrNotDismissible = errors.New("alert cannot be dismissed")

// Feed is the alert list as shown to a user.
type Feed struct {
	// Items is the full history, dismissed alerts included.
	Items []core.AlertItem
	// Unread is the badge count: alerts that are neither dismissed, seen,
	// nor the all-clear placeholder.
	Unread int
}

// BuildFeed computes the badge count for items. seen may be nil.
func BuildFeed(items []core.AlertItem, seen map[string]struct{}) Feed {
	f := Feed{Items: items}
	for _, it := range items {
		if counts(it, seen) {
			f.Unread++
		}
	}
	return f
}

func counts(it core.AlertItem, seen map[string]struct{}) bool {
	if it.Severity == core.Success || it.Dismissed {
		return false
	}
	_, ok := seen[it.ID]
	return !ok
}

// IDs returns the alert ids in feed order.
func (f Feed) IDs() []string {
	ids := make([]string, len(f.Items))
	for i, it := range f.Items {
		ids[i] = it.ID
	}
	return ids
}

// Dismiss returns a copy of settings with id added to the dismissed set.
func Dismiss(settings core.AlertSettings, id string) (core.AlertSettings, error) {
	if id == "" {
		return settings, core.ErrEmptyID
	}
	if id == AllClearID {
		return settings, ErrNotDismissible
	}
	out := settings.Clone()
	out.DismissedAlertIDs[id] = struct{}{}
	return out, nil
}

// DismissAll returns a copy of settings with every dismissible item added to
// the dismissed set.
func DismissAll(settings core.AlertSettings, items []core.AlertItem) core.AlertSettings {
	out := settings.Clone()
	for _, it := range items {
		if it.ID == AllClearID || it.ID == "" {
			continue
		}
		out.DismissedAlertIDs[it.ID] = struct{}{}
	}
	return out
}

// ClearDismissed returns a copy of settings with an empty dismissed set.
// Previously dismissed alerts whose conditions still hold become visible again.
func ClearDismissed(settings core.AlertSettings) core.AlertSettings {
	out := settings
	out.DismissedAlertIDs = map[string]struct{}{}
	return out
}
