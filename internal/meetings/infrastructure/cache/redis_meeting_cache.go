package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/quorum/internal/meetings/application/queries"
)

// DefaultTTL bounds how long a view can outlive a missed invalidation.
const DefaultTTL = 5 * time.Minute

// generationTTL outlives any single read; an expired counter restarts at zero.
const generationTTL = 24 * time.Hour

const (
	keyPrefix           = "quorum:meeting:"
	generationKeyPrefix = "quorum:meeting-gen:"
)

// setIfCurrent stores the view only while the generation matches.
// KEYS[1] generation, KEYS[2] view; ARGV[1] generation, ARGV[2] view, ARGV[3] ttl ms.
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisMeetingCache stores meeting views as JSON in Redis, next to a
// per-meeting generation counter that Invalidate bumps.
type RedisMeetingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMeetingCache creates a cache over client. A non-positive ttl uses DefaultTTL.
func NewRedisMeetingCache(client *redis.Client, ttl time.Duration) *RedisMeetingCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisMeetingCache{client: client, ttl: ttl}
}

func meetingKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func generationKey(id uuid.UUID) string {
	return generationKeyPrefix + id.String()
}

// Get returns the cached view (nil on a miss) and the meeting's generation.
func (c *RedisMeetingCache) Get(ctx context.Context, meetingID uuid.UUID) (*queries.MeetingDTO, uint64, error) {
	values, err := c.client.MGet(ctx, meetingKey(meetingID), generationKey(meetingID)).Result()
	if err != nil {
		return nil, 0, err
	}
	generation, err := parseGeneration(values[1])
	if err != nil {
		return nil, 0, err
	}
	raw, ok := values[0].(string)
	if !ok {
		return nil, generation, nil
	}
	view, err := decode([]byte(raw))
	if err != nil {
		return nil, 0, err
	}
	return view, generation, nil
}

// Set stores a view for the configured TTL unless the meeting was
// invalidated after generation was read.
func (c *RedisMeetingCache) Set(ctx context.Context, meeting *queries.MeetingDTO, generation uint64) error {
	raw, err := json.Marshal(meeting)
	if err != nil {
		return fmt.Errorf("encode meeting %s: %w", meeting.ID, err)
	}
	keys := []string{generationKey(meeting.ID), meetingKey(meeting.ID)}
	return setIfCurrent.Run(ctx, c.client, keys,
		strconv.FormatUint(generation, 10), raw, c.ttl.Milliseconds(),
	).Err()
}

// Invalidate bumps the meeting's generation and drops its cached view.
func (c *RedisMeetingCache) Invalidate(ctx context.Context, meetingID uuid.UUID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(meetingID))
		pipe.Expire(ctx, generationKey(meetingID), generationTTL)
		pipe.Del(ctx, meetingKey(meetingID))
		return nil
	})
	return err
}

// Ping checks the connection for health reporting.
func (c *RedisMeetingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func parseGeneration(value any) (uint64, error) {
	if value == nil {
		return 0, nil
	}
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected generation value %T", value)
	}
	generation, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse meeting generation: %w", err)
	}
	return generation, nil
}

func decode(raw []byte) (*queries.MeetingDTO, error) {
	var meeting queries.MeetingDTO
	if err := json.Unmarshal(raw, &meeting); err != nil {
		return nil, fmt.Errorf("decode cached meeting: %w", err)
	}
	return &meeting, nil
}
