package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetWriterReturnsSameInstanceForSameTopic(t *testing.T) {
	p := NewPublisher([]string{"127.0.0.1:1"}, "test-client", zap.NewNop())
	a := p.getWriter(TopicScanCompleted)
	b := p.getWriter(TopicScanCompleted)
	assert.Same(t, a, b, "writers must be cached per topic, not recreated on every publish")
}

func TestGetWriterCreatesDistinctWritersPerTopic(t *testing.T) {
	p := NewPublisher([]string{"127.0.0.1:1"}, "test-client", zap.NewNop())
	a := p.getWriter(TopicScanCompleted)
	b := p.getWriter(TopicNewsCollected)
	assert.NotSame(t, a, b)
	assert.Equal(t, TopicScanCompleted, a.Topic)
	assert.Equal(t, TopicNewsCollected, b.Topic)
}

func TestCloseWithNoWritersOpenedReturnsNil(t *testing.T) {
	p := NewPublisher([]string{"127.0.0.1:1"}, "test-client", zap.NewNop())
	assert.NoError(t, p.Close())
}

func TestPublishReturnsErrorWhenBrokerUnreachable(t *testing.T) {
	p := NewPublisher([]string{"127.0.0.1:1"}, "test-client", zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Publish(ctx, TopicCycleFinalized, Event{Key: "cycle-1", Value: map[string]string{"status": "completed"}})
	require.Error(t, err, "publishing against an unreachable broker must surface an error rather than block forever")
}

func TestTopicConstantsAreDistinct(t *testing.T) {
	topics := []string{TopicNewsCollected, TopicScanCompleted, TopicNarrativeDetected, TopicCycleFinalized, TopicOutcomeUpdated}
	seen := make(map[string]bool)
	for _, topic := range topics {
		assert.False(t, seen[topic], "duplicate topic constant: %s", topic)
		seen[topic] = true
	}
}
