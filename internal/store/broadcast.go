package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broadcaster relays collection changes between fieldops processes over Redis
// pub/sub, for sessions that do not share a filesystem. Each local commit is
// published with its serialized snapshot; received messages are applied by
// full-collection replacement, the same last-writer-wins rule the file
// watcher uses. Redis pub/sub gives at-most-once delivery and per-channel
// ordering, which satisfies the propagation contract.
type Broadcaster struct {
	client  *redis.Client
	channel string
	origin  string
	store   *Store
	logger  *zap.Logger
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

// changeMessage is the wire envelope for one collection change.
type changeMessage struct {
	Origin     string          `json:"origin"`
	Collection Collection      `json:"collection"`
	Data       json.RawMessage `json:"data"`
}

// NewBroadcaster connects to Redis at addr and wires the store's commit hook.
func NewBroadcaster(addr, channel string, s *Store, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Broadcaster{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		channel: channel,
		origin:  uuid.NewString(),
		store:   s,
		logger:  logger,
		doneCh:  make(chan struct{}),
	}
	s.SubscribeCommits(b.publish)
	return b
}

func (b *Broadcaster) publish(c Collection, raw []byte) {
	msg, err := json.Marshal(changeMessage{Origin: b.origin, Collection: c, Data: raw})
	if err != nil {
		b.logger.Warn("encode change failed", zap.String("collection", string(c)), zap.Error(err))
		return
	}
	if err := b.client.Publish(context.Background(), b.channel, msg).Err(); err != nil {
		b.logger.Warn("publish failed", zap.String("collection", string(c)), zap.Error(err))
	}
}

// Start subscribes to the change channel and applies remote messages until
// Stop or ctx cancellation. It returns once the subscription is confirmed.
func (b *Broadcaster) Start(ctx context.Context) error {
	ctx, b.cancel = context.WithCancel(ctx)
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		b.cancel()
		close(b.doneCh)
		return err
	}

	go func() {
		defer close(b.doneCh)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				b.apply([]byte(m.Payload))
			}
		}
	}()
	return nil
}

func (b *Broadcaster) apply(payload []byte) {
	var msg changeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		b.logger.Warn("malformed change message", zap.Error(err))
		return
	}
	if msg.Origin == b.origin {
		return
	}
	if err := b.store.ApplyExternal(msg.Collection, msg.Data); err != nil {
		b.logger.Warn("remote change rejected",
			zap.String("collection", string(msg.Collection)), zap.Error(err))
		return
	}
	b.logger.Debug("remote change applied", zap.String("collection", string(msg.Collection)))
}

// Stop tears down the subscription and the Redis connection.
func (b *Broadcaster) Stop() {
	if b.cancel != nil {
		b.cancel()
		<-b.doneCh
	}
	_ = b.client.Close()
}
