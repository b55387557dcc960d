package configs

import (
	"strings"

	"github.com/spf13/viper"
)

// CascadeMode 回收站级联策略.
type CascadeMode string

const (
	// CascadeImmediate 仅级联到文件夹直接包含的文件（沿用原系统的单层行为）.
	CascadeImmediate CascadeMode = "immediate"
	// CascadeSubtree 递归级联整个子树（含嵌套文件夹及其文件）.
	CascadeSubtree CascadeMode = "subtree"
)

const (
	DefaultTrashCascade       = CascadeImmediate
	DefaultTrashAutoClean     = false
	DefaultTrashRetentionDays = 30 // 自动清理前的保留天数
)

// TrashConfig 回收站生命周期配置.
type TrashConfig struct {
	// Cascade 控制软删除/恢复/彻底删除从文件夹向内容的传播深度.
	Cascade CascadeMode `mapstructure:"cascade" rule:"oneof=immediate subtree"`
	// AutoClean 开启后由调度器定期清理超过保留期的回收站记录.
	AutoClean     bool `mapstructure:"auto_clean"`
	RetentionDays int  `mapstructure:"retention_days" rule:"min=1,max=3650"`
}

// GetCascade 返回级联策略，未知值回退为 immediate（保守行为）.
func (c *TrashConfig) GetCascade() CascadeMode {
	switch CascadeMode(strings.ToLower(string(c.Cascade))) {
	case CascadeSubtree:
		return CascadeSubtree
	default:
		return CascadeImmediate
	}
}

func (c *TrashConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("trash.cascade", string(DefaultTrashCascade))
	v.SetDefault("trash.auto_clean", DefaultTrashAutoClean)
	v.SetDefault("trash.retention_days", DefaultTrashRetentionDays)
}
