package session

import (
	"context"
	"encoding/json"

	"gsr_locator/internal/lookup"
	"gsr_locator/platform/logger"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const publishQueueSize = 256

// Publisher is the part of a Redis client the state channel needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

type stateMessage struct {
	sessionID uuid.UUID
	state     lookup.UiState
}

// RedisPublisher mirrors every UiState onto the Redis channel <prefix><sessionID>
// so renderers in other processes can follow a session.
type RedisPublisher struct {
	client Publisher
	prefix string
	queue  chan stateMessage
	log    *logger.Logger
}

// NewRedisPublisher creates a publisher. Nothing is sent until Run is started.
func NewRedisPublisher(client Publisher, prefix string, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		client: client,
		prefix: prefix,
		queue:  make(chan stateMessage, publishQueueSize),
		log:    log,
	}
}

// Channel returns the Redis channel of a session.
func (p *RedisPublisher) Channel(sessionID uuid.UUID) string {
	return p.prefix + sessionID.String()
}

// Publish queues a state. When the queue is full the state is dropped; the
// next one carries a higher version.
func (p *RedisPublisher) Publish(sessionID uuid.UUID, state lookup.UiState) {
	select {
	case p.queue <- stateMessage{sessionID: sessionID, state: state}:
	default:
		p.log.Warn("redis state queue full", "session_id", sessionID, "version", state.Version)
	}
}

// Run drains the queue until ctx is done.
func (p *RedisPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-p.queue:
			p.send(ctx, msg)
		}
	}
}

func (p *RedisPublisher) send(ctx context.Context, msg stateMessage) {
	payload, err := json.Marshal(msg.state)
	if err != nil {
		p.log.Error("marshal ui state", "error", err)
		return
	}
	if err := p.client.Publish(ctx, p.Channel(msg.sessionID), payload).Err(); err != nil {
		p.log.Warn("redis publish failed", "session_id", msg.sessionID, "error", err)
	}
}
