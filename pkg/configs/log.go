package configs

import (
	"github.com/spf13/viper"
)

// DefaultLogLevel 默认日志级别.
const DefaultLogLevel = "info"

// LogConfig 日志配置，文件输出由 lumberjack 轮转.
type LogConfig struct {
	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Level      string `mapstructure:"level"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.enable_file", true)
	v.SetDefault("log.file_path", "logs/drivevault.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.level", DefaultLogLevel)
}
