package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.Publish(context.Background(), OrderPlaced, "o-1", map[string]int{"total": 2000}))
	require.Equal(t, 1, logs.Len())
	f := logs.All()[0].ContextMap()
	assert.Equal(t, OrderPlaced, f["event_type"])
	assert.Equal(t, "o-1", f["key"])

	assert.Error(t, p.Publish(context.Background(), OrderPlaced, "o-2", make(chan int)), "unencodable payload")
}

func TestKafkaPublisherConfig(t *testing.T) {
	_, err := NewKafkaPublisher(nil, nil)
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"127.0.0.1:9092"}, map[string]string{OrderPlaced: "storefront.orders"})
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, "storefront.orders", p.topicFor(OrderPlaced))
	assert.Equal(t, "user.blocked", p.topicFor("user.blocked"))
}
