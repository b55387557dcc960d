// Package mq 的 NATS 后端，负责创建带可选 JetStream 支持的
// Publisher 与 Subscriber.生命周期事件（回收站、分享变更）默认走这里.
package mq

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/drivevault/pkg/configs"
)

const (
	natsDrainTimeout   = 30 * time.Second
	natsFlusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// natsFactory 创建 NATS Publisher 与 Subscriber.
func natsFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	opts := natsConnOptions(cfg)
	jsCfg := jetStreamConfig(cfg, logger)
	marshaler := &nats.JSONMarshaler{}
	url := natsURL(cfg)

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Unmarshaler: marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	return pub, sub, nil
}

// natsConnOptions 由通用 MQ 配置构建连接选项，认证按 JWT > NKey > 用户名口令 取第一个可用项.
func natsConnOptions(cfg *configs.MQConfig) []nc.Option {
	common := cfg.Common

	opts := []nc.Option{
		nc.Name(common.ClientID),
		nc.MaxReconnects(common.MaxReconnects),
		nc.ReconnectWait(time.Duration(common.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(common.PingInterval) * time.Second),
		nc.ReconnectBufSize(common.BufferSize),
		nc.DrainTimeout(natsDrainTimeout),
		nc.FlusherTimeout(natsFlusherTimeout),
		nc.RetryOnFailedConnect(!common.StrictConnect),
	}

	natsCfg := cfg.NATS

	switch {
	case natsCfg.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(natsCfg.JWT, natsCfg.NKey))
	case natsCfg.NKey != "":
		opts = append(opts, nc.Nkey(natsCfg.NKey, nil))
	case common.User != "":
		opts = append(opts, nc.UserInfo(common.User, common.Password))
	}

	return opts
}

// jetStreamConfig 构建 JetStream 配置；未启用时只返回 Disabled.
func jetStreamConfig(cfg *configs.MQConfig, logger watermill.LoggerAdapter) nats.JetStreamConfig {
	natsCfg := cfg.NATS

	jsCfg := nats.JetStreamConfig{
		Disabled: !natsCfg.JetStreamEnabled,
	}
	if jsCfg.Disabled {
		return jsCfg
	}

	jsCfg.AutoProvision = natsCfg.JetStreamAutoProvision
	jsCfg.TrackMsgId = natsCfg.JetStreamTrackMsgID
	jsCfg.AckAsync = natsCfg.JetStreamAckAsync
	jsCfg.DurablePrefix = natsCfg.JetStreamDurablePrefix

	logger.Info("JetStream enabled", watermill.LogFields{
		"stream":         natsCfg.StreamName,
		"subject_prefix": natsCfg.SubjectPrefix,
		"auto_provision": natsCfg.JetStreamAutoProvision,
		"durable_prefix": natsCfg.JetStreamDurablePrefix,
	})

	return jsCfg
}

// natsURL 集群地址优先，其次单节点 URL.
func natsURL(cfg *configs.MQConfig) string {
	if urls := cfg.NATS.ClusterURLs; len(urls) > 0 {
		return strings.Join(urls, ",")
	}

	return cfg.Common.URL
}
