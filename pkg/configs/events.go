package configs

import "github.com/spf13/viper"

// EventsConfig 控制生命周期事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool                 `mapstructure:"enabled"` // 总开关
	Resource ResourceEventsConfig `mapstructure:"resource"`
	Sharing  SharingEventsConfig  `mapstructure:"sharing"`
}

// ResourceEventsConfig 资源生命周期相关的事件开关。
type ResourceEventsConfig struct {
	Created  bool `mapstructure:"created"`
	Moved    bool `mapstructure:"moved"`
	Trashed  bool `mapstructure:"trashed"`
	Restored bool `mapstructure:"restored"`
	Purged   bool `mapstructure:"purged"`
}

// SharingEventsConfig 分享与授权相关的事件开关。
type SharingEventsConfig struct {
	LinkRotated  bool `mapstructure:"link_rotated"`
	LinkRevoked  bool `mapstructure:"link_revoked"`
	GrantUpsert  bool `mapstructure:"grant_upsert"`
	GrantRevoked bool `mapstructure:"grant_revoked"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 生命周期事件：默认开启删除相关事件，便于审计回收站行为
	v.SetDefault("events.resource.created", true)
	v.SetDefault("events.resource.trashed", true)
	v.SetDefault("events.resource.restored", true)
	v.SetDefault("events.resource.purged", true)

	// 移动事件量可能较大，默认关闭
	v.SetDefault("events.resource.moved", false)

	// 授权变化事件：默认全部开启，授权审计依赖它们
	v.SetDefault("events.sharing.link_rotated", true)
	v.SetDefault("events.sharing.link_revoked", true)
	v.SetDefault("events.sharing.grant_upsert", true)
	v.SetDefault("events.sharing.grant_revoked", true)
}
