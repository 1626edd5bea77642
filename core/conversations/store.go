package conversations

import (
	"context"
	"errors"
	"sync"
)

// ErrStoreUnavailable signals that the backing store cannot be reached. The
// engine treats the conversation as stateless for that turn instead of
// failing it.
var ErrStoreUnavailable = errors.New("conversation store unavailable")

// Store persists conversation state and user preferences.
//
// Per-conversation operations are independent across conversation IDs and
// are issued in order by a single live session, so implementations need no
// cross-conversation coordination.
type Store interface {
	// LoadState returns the state document, or nil when the conversation has
	// no document yet (it is created lazily on the first merge).
	LoadState(ctx context.Context, conversationID string) (*State, error)
	// MergeState applies a merge patch, creating the document if absent.
	MergeState(ctx context.Context, conversationID string, patch StatePatch) error

	LoadPreference(ctx context.Context, userID string) (*Preference, error)
	SavePreference(ctx context.Context, pref Preference) error
}

// MemoryStore is the in-process Store used by tests and single-node hosts.
type MemoryStore struct {
	mu          sync.RWMutex
	states      map[string]State
	preferences map[string]Preference
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:      map[string]State{},
		preferences: map[string]Preference{},
	}
}

func (s *MemoryStore) LoadState(_ context.Context, conversationID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[conversationID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *MemoryStore) MergeState(_ context.Context, conversationID string, patch StatePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[conversationID]
	if !ok {
		state = State{ConversationID: conversationID}
	}
	patch.ApplyTo(&state)
	s.states[conversationID] = state
	return nil
}

func (s *MemoryStore) LoadPreference(_ context.Context, userID string) (*Preference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pref, ok := s.preferences[userID]
	if !ok {
		return nil, nil
	}
	return &pref, nil
}

func (s *MemoryStore) SavePreference(_ context.Context, pref Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.preferences[pref.UserID] = pref
	return nil
}
