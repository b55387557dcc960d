// Package mq 的 Redis Pub/Sub 后端.不提供持久化，适合开发环境
// 或只需要即发即弃事件通知的部署.
package mq

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/drivevault/pkg/configs"
)

// redisChannelBuffer 订阅通道缓冲区大小.
const redisChannelBuffer = 100

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 创建基于 Redis Pub/Sub 的 Publisher 与 Subscriber.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	pub := &redisPublisher{client: rdb}
	sub := &redisSubscriber{client: rdb, closeCh: make(chan struct{})}

	return pub, sub, nil
}

// redisPublisher 实现 message.Publisher.
type redisPublisher struct {
	client *redis.Client
}

func (p *redisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := p.client.Publish(context.Background(), topic, []byte(msg.Payload)).Err(); err != nil {
			return err
		}

		msg.Ack()
	}

	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

// redisSubscriber 实现 message.Subscriber.
type redisSubscriber struct {
	client  *redis.Client
	pubsub  *redis.PubSub
	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
}

func (s *redisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil
	}

	s.pubsub = s.client.Subscribe(ctx, topic)
	ch := make(chan *message.Message, redisChannelBuffer)

	go func() {
		defer close(ch)

		for {
			select {
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			default:
			}

			msg, err := s.pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			wm := message.NewMessage(watermill.NewUUID(), []byte(msg.Payload))

			select {
			case ch <- wm:
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (s *redisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.closeCh)

	if s.pubsub != nil {
		_ = s.pubsub.Close()
	}

	return s.client.Close()
}
