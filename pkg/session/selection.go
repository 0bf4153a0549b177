package session

import (
	"slices"
	"sync"

	"github.com/agentstation/rmarecon/pkg/reconcile"
)

// Selection is the set of record ids chosen for export. It is safe for
// concurrent use.
type Selection struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips id and reports whether it is now selected.
func (s *Selection) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Select adds ids.
func (s *Selection) Select(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Deselect removes ids.
func (s *Selection) Deselect(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// ToggleAll selects every record when at least one is unselected and
// deselects them all otherwise. It reports whether the records are now
// selected.
func (s *Selection) ToggleAll(records []*reconcile.MatchedRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := true
	for _, r := range records {
		if _, ok := s.ids[r.ID]; !ok {
			all = false
			break
		}
	}
	for _, r := range records {
		if all {
			delete(s.ids, r.ID)
		} else {
			s.ids[r.ID] = struct{}{}
		}
	}
	return !all
}

// Selected returns the selected records in their original order.
func (s *Selection) Selected(records []*reconcile.MatchedRecord) []*reconcile.MatchedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*reconcile.MatchedRecord, 0, len(s.ids))
	for _, r := range records {
		if _, ok := s.ids[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// IDs returns the selected ids, sorted.
func (s *Selection) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ids)
}
