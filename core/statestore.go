package orchestration

import (
	"context"
	"errors"

	"github.com/voyceradio/voyce-core/core/conversations"
)

// stateStore is the persistence facade. It is nil-safe and degrades a store
// outage to stateless behavior for the turn: outages are logged, never
// surfaced to the caller.
type stateStore struct {
	client conversations.Store
}

func (s *stateStore) set(client conversations.Store) {
	if s == nil {
		return
	}
	s.client = client
}

func (s *stateStore) loadState(ctx context.Context, conversationID string) *conversations.State {
	if s == nil || s.client == nil {
		return nil
	}

	state, err := s.client.LoadState(ctx, conversationID)
	if err != nil {
		s.logOutage("load conversation state", err)
		return nil
	}
	return state
}

func (s *stateStore) mergeState(ctx context.Context, conversationID string, patch conversations.StatePatch) {
	if s == nil || s.client == nil || patch.IsZero() {
		return
	}

	if err := s.client.MergeState(ctx, conversationID, patch); err != nil {
		s.logOutage("merge conversation state", err)
	}
}

func (s *stateStore) loadPreference(ctx context.Context, userID string) conversations.Preference {
	if s == nil || s.client == nil {
		return conversations.DefaultPreference(userID)
	}

	pref, err := s.client.LoadPreference(ctx, userID)
	if err != nil {
		s.logOutage("load user preference", err)
		return conversations.DefaultPreference(userID)
	}
	if pref == nil {
		return conversations.DefaultPreference(userID)
	}
	return *pref
}

func (s *stateStore) savePreference(ctx context.Context, pref conversations.Preference) {
	if s == nil || s.client == nil {
		return
	}

	if err := s.client.SavePreference(ctx, pref); err != nil {
		s.logOutage("save user preference", err)
	}
}

func (s *stateStore) logOutage(operation string, err error) {
	if errors.Is(err, conversations.ErrStoreUnavailable) {
		logger.Warn("State store unavailable, degrading to stateless turn", "operation", operation, "error", err)
		return
	}
	logger.Error("State store operation failed", "operation", operation, "error", err)
}
