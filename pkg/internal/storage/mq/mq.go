// Package mq 封装 watermill 的 Publisher/Subscriber，承载资源生命周期
// 事件（dv.resource.*、dv.share.*）的发布与订阅.后端通过工厂注册，
// 当前支持 NATS（含 JetStream）与 Redis Pub/Sub.
package mq

import (
	"context"
	"fmt"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/drivevault/pkg/configs"
	nlog "github.com/yeisme/drivevault/pkg/log"
)

// Factory 创建某一后端的 Publisher 与 Subscriber.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册后端工厂，各后端文件在 init 中调用.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的后端类型.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	return types
}

// Client 持有一个后端的 Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
	closeFunc  func() // 关闭 metrics 服务器
}

// Publisher 暴露底层 Publisher，queue 包的类型化发布助手使用它.
func (c *Client) Publisher() message.Publisher {
	if c == nil {
		return nil
	}

	return c.publisher
}

// Publish 发布一批消息到指定主题.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	for _, m := range msgs {
		if err := c.publisher.Publish(topic, m); err != nil {
			return err
		}
	}

	return nil
}

// Subscribe 订阅主题，返回消息通道.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 依次关闭 publisher、subscriber、router 与 metrics 服务，返回最后一个错误.
func (c *Client) Close() error {
	var err error

	if c.publisher != nil {
		if e := c.publisher.Close(); e != nil {
			err = e
		}
	}

	if c.subscriber != nil {
		if e := c.subscriber.Close(); e != nil {
			err = e
		}
	}

	if c.router != nil {
		if e := c.router.Close(); e != nil {
			err = e
		}
	}

	if c.closeFunc != nil {
		c.closeFunc()
	}

	return err
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 初始化消息队列客户端（进程级单例）.
// 配置启用 metrics 时，publisher/subscriber 会被 watermill 的
// prometheus 装饰器包一层，并拉起独立的 metrics 端点.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		cfg := configs.GetConfig().MQ

		factory, ok := factories[cfg.Type]
		if !ok {
			mqErr = fmt.Errorf("unsupported mq type: %s", cfg.Type)
			return
		}

		logger := &zerologAdapter{l: nlog.Logger()}

		pub, sub, err := factory(ctx, &cfg, logger)
		if err != nil {
			mqErr = fmt.Errorf("init mq (%s): %w", cfg.Type, err)
			return
		}

		client := &Client{publisher: pub, subscriber: sub}

		if configs.GetConfig().Metrics.Enabled {
			if mqErr = decorateWithMetrics(ctx, client, logger); mqErr != nil {
				return
			}
		}

		mqInst = client

		nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 客户端已初始化")
	})

	return mqInst, mqErr
}

// decorateWithMetrics 为 client 套上 prometheus 指标装饰器并启动 metrics 端点.
func decorateWithMetrics(ctx context.Context, client *Client, logger watermill.LoggerAdapter) error {
	metricsCfg := configs.GetConfig().Metrics

	registry, closeMetricsServer := wmetrics.CreateRegistryAndServeHTTP(metricsCfg.Endpoint)
	client.closeFunc = closeMetricsServer

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	client.router = router

	go func() {
		if runErr := router.Run(ctx); runErr != nil {
			nlog.Logger().Error().Err(runErr).Msg("mq router run error")
		}
	}()

	builder := wmetrics.NewPrometheusMetricsBuilder(registry, "", "")
	builder.AddPrometheusRouterMetrics(router)

	client.publisher, err = builder.DecoratePublisher(client.publisher)
	if err != nil {
		return fmt.Errorf("decorate publisher with metrics: %w", err)
	}

	client.subscriber, err = builder.DecorateSubscriber(client.subscriber)
	if err != nil {
		return fmt.Errorf("decorate subscriber with metrics: %w", err)
	}

	nlog.Logger().Info().Str("endpoint", metricsCfg.Endpoint).Msg("MQ metrics enabled")

	return nil
}
