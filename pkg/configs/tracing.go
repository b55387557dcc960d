package configs

import (
	"github.com/spf13/viper"
)

// TracingConfig OpenTelemetry 追踪配置.
// exporter_type 支持 otlp-http、otlp-grpc、zipkin.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	ExporterType   string  `mapstructure:"exporter_type"`
	Endpoint       string  `mapstructure:"endpoint"`
	SampleRate     float64 `mapstructure:"sample_rate"` // 0.0-1.0
}

func (c *TracingConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "drivevault")
	v.SetDefault("tracing.service_version", AppVersion)
	v.SetDefault("tracing.exporter_type", "otlp-http")
	v.SetDefault("tracing.endpoint", "http://localhost:4318")
	v.SetDefault("tracing.sample_rate", 1.0)
}
