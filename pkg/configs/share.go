package configs

import "github.com/spf13/viper"

const (
	DefaultSharePublicOrigin = "http://localhost:8080" // 渲染分享链接使用的外部可达地址
	DefaultShareTokenBytes   = 32                      // 链接令牌的随机字节数
	DefaultShareMaxTTLDays   = 365                     // 单个链接允许的最长有效期
)

// ShareConfig 分享链接配置.
type ShareConfig struct {
	// PublicOrigin 用于拼接对外分享 URL（形如 <origin>/share/<type>/<id>?t=<token>）.
	PublicOrigin string `mapstructure:"public_origin" rule:"url"`
	TokenBytes   int    `mapstructure:"token_bytes"   rule:"min=16,max=64"`
	MaxTTLDays   int    `mapstructure:"max_ttl_days"  rule:"min=1"`
}

func (c *ShareConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("share.public_origin", DefaultSharePublicOrigin)
	v.SetDefault("share.token_bytes", DefaultShareTokenBytes)
	v.SetDefault("share.max_ttl_days", DefaultShareMaxTTLDays)
}
