package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置.
// endpoint 是独立的 metrics 监听地址，pprof 打开后挂在同一端口.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	Endpoint       string `mapstructure:"endpoint"`
	Pprof          bool   `mapstructure:"pprof"`
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "drivevault")
	v.SetDefault("metrics.service_version", AppVersion)
	v.SetDefault("metrics.endpoint", ":9090")
	v.SetDefault("metrics.pprof", false)
}
