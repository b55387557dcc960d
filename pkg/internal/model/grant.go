package model

import "time"

// Grant 按邮箱授权：每个 (resource_type, resource_id, email) 至多一条，
// 重复授权通过 upsert 替换角色。Email 入库前统一小写。
// 与链接不同，授权不设过期时间，只能显式撤销。
type Grant struct {
	ID           uint   `gorm:"primaryKey"                           json:"-"`
	ResourceType string `gorm:"size:16;uniqueIndex:idx_grant_key"    json:"resource_type"`
	ResourceID   string `gorm:"size:64;uniqueIndex:idx_grant_key"    json:"resource_id"`
	Email        string `gorm:"size:255;uniqueIndex:idx_grant_key"   json:"email"`
	// Role 仅 viewer/editor
	Role      string    `gorm:"size:16"        json:"role"`
	CreatedBy string    `gorm:"size:255;index" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
