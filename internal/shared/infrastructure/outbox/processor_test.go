package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/quorum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/quorum/pkg/clock"
)

var now = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type memoryRepository struct {
	mu           sync.Mutex
	messages     []*outbox.Message
	publishedIDs []int64
	failedIDs    []int64
	deadIDs      []int64
	cutoffs      []time.Time
}

func (r *memoryRepository) SaveBatch(_ context.Context, msgs []*outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		msg.ID = int64(len(r.messages) + 1)
		r.messages = append(r.messages, msg)
	}
	return nil
}

func (r *memoryRepository) GetUnpublished(_ context.Context, at time.Time, limit int) ([]*outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*outbox.Message
	for _, msg := range r.messages {
		if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(at) {
			continue
		}
		result = append(result, msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *memoryRepository) find(id int64) *outbox.Message {
	for _, msg := range r.messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

func (r *memoryRepository) MarkPublished(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publishedIDs = append(r.publishedIDs, id)
	r.find(id).PublishedAt = &at
	return nil
}

func (r *memoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedIDs = append(r.failedIDs, id)
	msg := r.find(id)
	msg.RetryCount++
	msg.LastError = &errMsg
	msg.NextRetryAt = &nextRetryAt
	return nil
}

func (r *memoryRepository) MarkDead(_ context.Context, id int64, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deadIDs = append(r.deadIDs, id)
	msg := r.find(id)
	msg.DeadLetteredAt = &at
	msg.DeadLetterReason = &reason
	return nil
}

func (r *memoryRepository) DeleteOld(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	return 2, nil
}

type recordingPublisher struct {
	mu          sync.Mutex
	routingKeys []string
	failForKeys map[string]bool
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{failForKeys: map[string]bool{}}
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failForKeys[routingKey] {
		return errors.New("broker unavailable")
	}
	p.routingKeys = append(p.routingKeys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.routingKeys)
}

func seed(t *testing.T, repo *memoryRepository, routingKeys ...string) {
	t.Helper()
	msgs := make([]*outbox.Message, 0, len(routingKeys))
	for _, key := range routingKeys {
		msgs = append(msgs, &outbox.Message{
			EventID:       uuid.New(),
			AggregateType: "Meeting",
			AggregateID:   uuid.New(),
			EventType:     key,
			RoutingKey:    key,
			Payload:       []byte(`{}`),
			Metadata:      []byte(`{"correlation_id":"req-9"}`),
			CreatedAt:     now.Add(-time.Minute),
		})
	}
	require.NoError(t, repo.SaveBatch(context.Background(), msgs))
}

func TestProcessor_ProcessOnce(t *testing.T) {
	repo := &memoryRepository{}
	publisher := newRecordingPublisher()
	processor := outbox.NewProcessor(repo, publisher, outbox.DefaultProcessorConfig(), clock.NewFixed(now), nil)

	seed(t, repo, "meeting.created", "timeslot.proposed")

	require.NoError(t, processor.ProcessOnce(context.Background()))

	assert.Equal(t, []string{"meeting.created", "timeslot.proposed"}, publisher.routingKeys)
	assert.Equal(t, []int64{1, 2}, repo.publishedIDs)

	stats := processor.GetStats()
	assert.Equal(t, uint64(2), stats.PublishedCount)
	require.NotNil(t, stats.OldestMessageAt)
	assert.InDelta(t, 60, stats.LagSeconds, 0.001)
}

func TestProcessor_ProcessOnce_SchedulesRetryWithBackoff(t *testing.T) {
	repo := &memoryRepository{}
	publisher := newRecordingPublisher()
	publisher.failForKeys["vote.cast"] = true
	cfg := outbox.DefaultProcessorConfig()
	cfg.RetryBackoffBase = 2 * time.Second
	processor := outbox.NewProcessor(repo, publisher, cfg, clock.NewFixed(now), nil)

	seed(t, repo, "meeting.created", "vote.cast")

	require.NoError(t, processor.ProcessOnce(context.Background()))

	assert.Equal(t, 1, publisher.count())
	assert.Equal(t, []int64{2}, repo.failedIDs)
	failed := repo.messages[1]
	assert.Equal(t, 1, failed.RetryCount)
	require.NotNil(t, failed.NextRetryAt)
	assert.Equal(t, now.Add(2*time.Second), *failed.NextRetryAt)

	// not yet due on the second pass
	require.NoError(t, processor.ProcessOnce(context.Background()))
	assert.Equal(t, []int64{2}, repo.failedIDs)

	stats := processor.GetStats()
	assert.Equal(t, uint64(1), stats.FailedCount)
	assert.Equal(t, "broker unavailable", stats.LastError)
}

func TestProcessor_ProcessOnce_DeadLettersAfterMaxRetries(t *testing.T) {
	repo := &memoryRepository{}
	publisher := newRecordingPublisher()
	publisher.failForKeys["vote.cast"] = true
	cfg := outbox.DefaultProcessorConfig()
	cfg.MaxRetries = 1
	processor := outbox.NewProcessor(repo, publisher, cfg, clock.NewFixed(now), nil)

	seed(t, repo, "vote.cast")

	require.NoError(t, processor.ProcessOnce(context.Background()))

	assert.Empty(t, repo.failedIDs)
	assert.Equal(t, []int64{1}, repo.deadIDs)
	assert.Equal(t, uint64(1), processor.GetStats().DeadCount)
}

func TestProcessor_Cleanup(t *testing.T) {
	repo := &memoryRepository{}
	cfg := outbox.DefaultProcessorConfig()
	cfg.RetentionDays = 3
	processor := outbox.NewProcessor(repo, newRecordingPublisher(), cfg, clock.NewFixed(now), nil)

	deleted, err := processor.Cleanup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, []time.Time{now.AddDate(0, 0, -3)}, repo.cutoffs)
}

func TestProcessor_StartStop(t *testing.T) {
	repo := &memoryRepository{}
	publisher := newRecordingPublisher()
	cfg := outbox.DefaultProcessorConfig()
	cfg.PollInterval = 5 * time.Millisecond
	processor := outbox.NewProcessor(repo, publisher, cfg, nil, nil)

	seed(t, repo, "meeting.created")

	require.NoError(t, processor.Start(context.Background()))
	require.NoError(t, processor.Start(context.Background()))
	assert.True(t, processor.GetStats().IsRunning)

	assert.Eventually(t, func() bool { return publisher.count() == 1 }, time.Second, 5*time.Millisecond)

	processor.Stop()
	processor.Stop()
	assert.False(t, processor.IsRunning())
}
