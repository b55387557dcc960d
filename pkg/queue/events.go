package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// publish 统一的发布入口：构造 watermill 消息并发布到指定主题.
func publish[T any](pub message.Publisher, topic string, payload T, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// PublishResourceCreated 发布 dv.resource.created 事件。
func PublishResourceCreated(pub message.Publisher, payload ResourceCreatedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicResourceCreated, payload, opts...)
}

// PublishResourceMoved 发布 dv.resource.moved 事件。
func PublishResourceMoved(pub message.Publisher, payload ResourceMovedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicResourceMoved, payload, opts...)
}

// PublishResourceTrashed 发布 dv.resource.trashed 事件。
// 在软删除（含级联）提交到数据库之后调用，通知审计与下游索引清理。
func PublishResourceTrashed(pub message.Publisher, payload ResourceTrashedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicResourceTrashed, payload, opts...)
}

// PublishResourceRestored 发布 dv.resource.restored 事件。
func PublishResourceRestored(pub message.Publisher, payload ResourceRestoredPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicResourceRestored, payload, opts...)
}

// PublishResourcePurged 发布 dv.resource.purged 事件。
// 部分失败时 payload.Failed 列出未完成子项，事件仍然发布（审计需要知道差异）。
func PublishResourcePurged(pub message.Publisher, payload ResourcePurgedPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicResourcePurged, payload, opts...)
}

// PublishLinkRotated 发布 dv.sharing.link.rotated 事件。
func PublishLinkRotated(pub message.Publisher, payload LinkEventPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicLinkRotated, payload, opts...)
}

// PublishLinkRevoked 发布 dv.sharing.link.revoked 事件。
func PublishLinkRevoked(pub message.Publisher, payload LinkEventPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicLinkRevoked, payload, opts...)
}

// PublishGrantUpsert 发布 dv.sharing.grant.upserted 事件。
func PublishGrantUpsert(pub message.Publisher, payload GrantEventPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicGrantUpsert, payload, opts...)
}

// PublishGrantRevoked 发布 dv.sharing.grant.revoked 事件。
func PublishGrantRevoked(pub message.Publisher, payload GrantEventPayload, opts ...func(*EventHeader)) error {
	return publish(pub, TopicGrantRevoked, payload, opts...)
}

// ParseResourceTrashed 将 Watermill 消息解析为强类型 Envelope（ResourceTrashedPayload）。
func ParseResourceTrashed(msg *message.Message) (Message[ResourceTrashedPayload], error) {
	return ParseWatermillMessage[ResourceTrashedPayload](msg)
}

// ParseResourcePurged 将 Watermill 消息解析为强类型 Envelope（ResourcePurgedPayload）。
func ParseResourcePurged(msg *message.Message) (Message[ResourcePurgedPayload], error) {
	return ParseWatermillMessage[ResourcePurgedPayload](msg)
}
