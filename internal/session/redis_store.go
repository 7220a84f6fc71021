package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTTL is how long an idle session survives in Redis.
const DefaultTTL = 24 * time.Hour

// RedisStore persists session state and transcripts as JSON documents.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

// NewRedisStore wires a Redis-backed session store. A zero ttl falls
// back to DefaultTTL.
func NewRedisStore(client *redis.Client, tracer trace.Tracer, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("homequote.internal.session")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{
		redis:  client,
		tracer: tracer,
		ttl:    ttl,
	}
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal state: %w", err)
	}
	if err := s.redis.Set(ctx, stateKey(state.ID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to persist state: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	data, err := s.redis.Get(ctx, stateKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to decode state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "session.delete")
	defer span.End()

	if err := s.redis.Del(ctx, stateKey(id), transcriptKey(id)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to delete state: %w", err)
	}
	return nil
}

// AppendTranscript adds one message to the conversation log and refreshes
// its expiry alongside the state document.
func (s *RedisStore) AppendTranscript(ctx context.Context, id string, msg Message) error {
	ctx, span := s.tracer.Start(ctx, "session.append_transcript")
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal message: %w", err)
	}
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, transcriptKey(id), data)
	pipe.Expire(ctx, transcriptKey(id), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to append transcript: %w", err)
	}
	return nil
}

func (s *RedisStore) Transcript(ctx context.Context, id string) ([]Message, error) {
	ctx, span := s.tracer.Start(ctx, "session.load_transcript")
	defer span.End()

	raw, err := s.redis.LRange(ctx, transcriptKey(id), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load transcript: %w", err)
	}
	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("session: failed to decode message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func stateKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func transcriptKey(id string) string {
	return fmt.Sprintf("transcript:%s", id)
}
