package configs

import "github.com/spf13/viper"

// AuthConfig 身份认证配置.认证本身由前置的 oauth2-proxy 完成，
// 应用只校验它注入的邮箱请求头存在.
type AuthConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	SkipPaths     []string `mapstructure:"skip_paths"`      // 放行的路径前缀
	DevAllowQuery bool     `mapstructure:"dev_allow_query"` // 本地调试允许 ?user= 兜底
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.dev_allow_query", true)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}
