package model

import "time"

// ShareLink 链接分享：每个 (resource_type, resource_id) 至多一条，
// 轮换通过 upsert 原地替换令牌与角色，绝不产生第二条记录。
// 过期链接在授权解析中等同不存在。
type ShareLink struct {
	ID           uint   `gorm:"primaryKey"                                json:"-"`
	ResourceType string `gorm:"size:16;uniqueIndex:idx_share_link_key"   json:"resource_type"`
	ResourceID   string `gorm:"size:64;uniqueIndex:idx_share_link_key"   json:"resource_id"`
	// Token 不可猜测的随机令牌，轮换即换新
	Token string `gorm:"size:128;uniqueIndex" json:"-"`
	// Role 仅 viewer/editor，owner 不可经链接授予
	Role string `gorm:"size:16" json:"role"`
	// ExpiresAt null 表示永不过期
	ExpiresAt *time.Time `gorm:"index"              json:"expires_at,omitempty"`
	CreatedBy string     `gorm:"size:255;index"     json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Expired 报告链接在 now 时刻是否已过期.
func (s *ShareLink) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}
