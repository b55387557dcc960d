// Package queue 发布资源生命周期事件，供审计、索引清理与下游同步消费.
//
// 消息统一封装为 Message[Payload] = Header + Payload，JSON 编码（sonic）.
// 主题常量在 topics.go，负载结构在 payloads.go.信封示例：
//
//	{
//	  "header": {
//	    "topic": "dv.resource.trashed",
//	    "trace_id": "optional-trace-id",
//	    "producer": "drivevault",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 按主题而定 ... }
//	}
//
// 约定：
//   - occurred_at 为 UTC RFC3339；version 供后向兼容，消费者应忽略未知字段
//   - 事件不携带分享令牌等机密，只描述授权形态的变化
//   - Header.topic 与中间件 subject 重复，便于离线追踪
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 string = "v1"
)

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// Encode 将消息封装为 JSON 字节切片.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 字节解码为消息.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage 构造 watermill 消息，事件头同时写进消息元数据，
// 消费端不解包也能按 trace_id 或 topic 过滤.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)

	meta := map[string]string{
		"topic":       topic,
		"trace_id":    header.TraceID,
		"producer":    header.Producer,
		"occurred_at": header.OccurredAt.Format(time.RFC3339Nano),
		"version":     header.Version,
	}
	for k, v := range meta {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
