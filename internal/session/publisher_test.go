package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gsr_locator/internal/lookup"
	"gsr_locator/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisherSendsStateJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pub := NewRedisPublisher(client, "gsr:session:", logger.Discard())
	id := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sub := client.Subscribe(ctx, pub.Channel(id))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	go func() { _ = pub.Run(ctx) }()

	pub.Publish(id, lookup.UiState{Kind: lookup.KindNoResults, Query: "xyz", Version: 4})

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "gsr:session:"+id.String(), msg.Channel)
		var got lookup.UiState
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, lookup.KindNoResults, got.Kind)
		assert.Equal(t, uint64(4), got.Version)
	case <-time.After(waitFor):
		t.Fatal("no message on redis channel")
	}
}

func TestRedisPublisherDropsWhenQueueFull(t *testing.T) {
	pub := NewRedisPublisher(nil, "gsr:session:", logger.Discard())
	id := uuid.New()

	for i := 0; i < publishQueueSize+5; i++ {
		pub.Publish(id, lookup.UiState{Kind: lookup.KindIdle, Version: uint64(i)})
	}

	assert.Len(t, pub.queue, publishQueueSize)
}
