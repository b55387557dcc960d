// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：dv.<域>.<动作>，尽量稳定且向后兼容.
// 域：resource(资源树生命周期)、sharing(链接与按邮箱授权)
// 动作：created/moved/trashed/restored/purged、link.rotated/link.revoked/grant.upserted/grant.revoked

const (
	// 资源生命周期领域.
	TopicResourceCreated  = "dv.resource.created"  // 文件/文件夹元数据创建完成
	TopicResourceMoved    = "dv.resource.moved"    // 资源移动或重命名
	TopicResourceTrashed  = "dv.resource.trashed"  // 资源进入回收站（含级联到的子项）
	TopicResourceRestored = "dv.resource.restored" // 资源从回收站恢复（含级联到的子项）
	TopicResourcePurged   = "dv.resource.purged"   // 资源被彻底删除（元数据与底层对象）

	// 分享与授权领域.
	TopicLinkRotated  = "dv.sharing.link.rotated"   // 链接创建或轮换（旧令牌即刻失效）
	TopicLinkRevoked  = "dv.sharing.link.revoked"   // 链接撤销
	TopicGrantUpsert  = "dv.sharing.grant.upserted" // 按邮箱授权创建或角色替换
	TopicGrantRevoked = "dv.sharing.grant.revoked"  // 按邮箱授权撤销
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 资源生命周期相关主题集合.
	ResourceTopics = []string{
		TopicResourceCreated, TopicResourceMoved, TopicResourceTrashed,
		TopicResourceRestored, TopicResourcePurged,
	}

	// 分享与授权相关主题集合.
	SharingTopics = []string{
		TopicLinkRotated, TopicLinkRevoked,
		TopicGrantUpsert, TopicGrantRevoked,
	}
)
