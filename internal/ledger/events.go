package ledger

import "slices"

// ChangeKind names what a mutation touched
type ChangeKind string

const (
	ChangeActionCreated   ChangeKind = "action.created"
	ChangeActionUpdated   ChangeKind = "action.updated"
	ChangeActionDeleted   ChangeKind = "action.deleted"
	ChangeNotesUpdated    ChangeKind = "notes.updated"
	ChangeSettingsUpdated ChangeKind = "settings.updated"
	ChangeDataImported    ChangeKind = "data.imported"
)

// Change is delivered to subscribers after every mutation, whether or not it was persisted
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Date     string     `json:"date,omitempty"`
	ActionID string     `json:"actionId,omitempty"`
}

type subscriber struct {
	id uint64
	fn func(Change)
}

// Subscribe registers fn to be called synchronously after each mutation, in
// registration order. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func (s *Store) publish(c Change) {
	s.subsMu.RLock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub.fn)
	}
	s.subsMu.RUnlock()

	for _, fn := range subs {
		fn(c)
	}
}

