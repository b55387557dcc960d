package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 资源生命周期领域 --------------------------

// ResourceRef 标识一个受生命周期管理的资源.
type ResourceRef struct {
	Type string `json:"type"` // file | folder
	ID   string `json:"id"`
}

// ResourceCreatedPayload 文件/文件夹元数据创建完成.
type ResourceCreatedPayload struct {
	Resource ResourceRef `json:"resource"`
	OwnerID  string      `json:"owner_id"`
	ParentID string      `json:"parent_id,omitempty"`
	Name     string      `json:"name,omitempty"`
}

// ResourceMovedPayload 资源移动或重命名.
type ResourceMovedPayload struct {
	Resource  ResourceRef `json:"resource"`
	OwnerID   string      `json:"owner_id"`
	OldParent string      `json:"old_parent,omitempty"`
	NewParent string      `json:"new_parent,omitempty"`
	NewName   string      `json:"new_name,omitempty"`
}

// ResourceTrashedPayload 资源进入回收站.
// Cascaded 列出随本次操作一并转移状态的子项（按级联策略）.
type ResourceTrashedPayload struct {
	Resource  ResourceRef   `json:"resource"`
	Actor     string        `json:"actor"` // 触发操作的 principal id
	TrashedAt time.Time     `json:"trashed_at"`
	Cascaded  []ResourceRef `json:"cascaded,omitempty"`
}

// ResourceRestoredPayload 资源从回收站恢复.
type ResourceRestoredPayload struct {
	Resource ResourceRef   `json:"resource"`
	Actor    string        `json:"actor"`
	Cascaded []ResourceRef `json:"cascaded,omitempty"`
}

// ResourcePurgedPayload 资源被彻底删除.
// Failed 列出未能完成的子项（部分失败时供重试与审计）.
type ResourcePurgedPayload struct {
	Resource ResourceRef   `json:"resource"`
	Actor    string        `json:"actor"`
	Purged   []ResourceRef `json:"purged,omitempty"`
	Failed   []string      `json:"failed,omitempty"`
}

// -------------------------- 分享与授权领域 --------------------------

// LinkEventPayload 链接创建/轮换/撤销.
// 不携带令牌本身：令牌是机密，事件只记录授权形态的变化.
type LinkEventPayload struct {
	Resource  ResourceRef `json:"resource"`
	Actor     string      `json:"actor"`
	Role      string      `json:"role,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

// GrantEventPayload 按邮箱授权创建/替换/撤销.
type GrantEventPayload struct {
	Resource ResourceRef `json:"resource"`
	Actor    string      `json:"actor"`
	Email    string      `json:"email"`
	Role     string      `json:"role,omitempty"`
}
