// Package postgres persists conversation state and user preferences in
// Postgres. The state document is a jsonb column; merge patches are applied
// with jsonb concatenation so a patch only ever touches the keys it carries.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voyceradio/voyce-core/core/conversations"
)

type Store struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ conversations.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *Store) LoadState(ctx context.Context, conversationID string) (*conversations.State, error) {
	ctx, span := tracer.Start(ctx, "load conversation state")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	query, args, err := s.builder.
		Select("state").
		From("conversation_state").
		Where(sq.Eq{"conversation_id": conversationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build state query: %w", err)
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(ctx, span, fmt.Errorf("query state: %w", err))
	}

	var state conversations.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode state document: %w", err)
	}
	state.ConversationID = conversationID
	return &state, nil
}

func (s *Store) MergeState(ctx context.Context, conversationID string, patch conversations.StatePatch) error {
	ctx, span := tracer.Start(ctx, "merge conversation state")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	if patch.IsZero() {
		return nil
	}

	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode state patch: %w", err)
	}

	// Concatenation keeps untouched keys; keys the patch carries (including
	// explicit nulls) overwrite the stored values.
	_, err = s.db.ExecContext(ctx, `
		insert into conversation_state (conversation_id, state)
		values ($1, $2::jsonb)
		on conflict (conversation_id) do update
			set state = conversation_state.state || $2::jsonb,
			    updated_at = now()
	`, conversationID, patchJSON)
	if err != nil {
		return s.storeError(ctx, span, fmt.Errorf("merge state: %w", err))
	}
	return nil
}

func (s *Store) LoadPreference(ctx context.Context, userID string) (*conversations.Preference, error) {
	ctx, span := tracer.Start(ctx, "load user preference")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	query, args, err := s.builder.
		Select("preferred_mode", "voice_preset", "voice_speed", "auto_listen").
		From("user_settings").
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build preference query: %w", err)
	}

	var (
		mode       string
		preset     string
		speed      float64
		autoListen bool
	)
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&mode, &preset, &speed, &autoListen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(ctx, span, fmt.Errorf("query preference: %w", err))
	}

	return &conversations.Preference{
		UserID:      userID,
		Mode:        conversations.NormalizeMode(mode),
		VoicePreset: conversations.NormalizePreset(preset),
		VoiceSpeed:  conversations.ClampSpeed(speed),
		AutoListen:  autoListen,
	}, nil
}

func (s *Store) SavePreference(ctx context.Context, pref conversations.Preference) error {
	ctx, span := tracer.Start(ctx, "save user preference")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", pref.UserID))

	query, args, err := s.builder.
		Insert("user_settings").
		Columns("user_id", "preferred_mode", "voice_preset", "voice_speed", "auto_listen").
		Values(pref.UserID, string(pref.Mode), string(pref.VoicePreset), conversations.ClampSpeed(pref.VoiceSpeed), pref.AutoListen).
		Suffix(`on conflict (user_id) do update
			set preferred_mode = excluded.preferred_mode,
			    voice_preset = excluded.voice_preset,
			    voice_speed = excluded.voice_speed,
			    auto_listen = excluded.auto_listen,
			    updated_at = now()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build preference upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return s.storeError(ctx, span, fmt.Errorf("upsert preference: %w", err))
	}
	return nil
}

// storeError maps connectivity failures onto ErrStoreUnavailable so callers
// can degrade to stateless behavior instead of failing the turn.
func (s *Store) storeError(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var netErr net.Error
	var pqErr *pq.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(ctx, "conversation store unreachable", "error", err)
		return fmt.Errorf("%w: %w", conversations.ErrStoreUnavailable, err)
	case errors.As(err, &pqErr) && pqErr.Code.Class() == "08": // connection exception
		logger.WarnContext(ctx, "conversation store connection failed", "error", err)
		return fmt.Errorf("%w: %w", conversations.ErrStoreUnavailable, err)
	}
	return err
}
