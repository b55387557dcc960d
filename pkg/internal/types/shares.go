package types

import "time"

// UpsertLinkRequest 创建或轮换分享链接请求.
// 同一资源最多一条链接；重复调用会替换令牌，旧链接即刻失效.
type UpsertLinkRequest struct {
	Role       string `json:"role" rule:"required,oneof=viewer editor"` // 链接授予的角色
	ExpireDays int    `json:"expire_days,omitempty" rule:"gte=0"`       // 有效天数，0 表示不过期
}

// ShareLinkInfo 分享链接公开信息，URL 中已嵌入令牌.
type ShareLinkInfo struct {
	URL       string     `json:"url"`
	Role      string     `json:"role"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedBy string     `json:"created_by"`
	CreatedAt string     `json:"created_at"` // RFC3339
}

// UpsertLinkResponse 创建/轮换链接响应.
type UpsertLinkResponse struct {
	Link    ShareLinkInfo `json:"link"`
	Rotated bool          `json:"rotated"` // true 表示替换了已有链接的令牌
}

// UpsertGrantRequest 创建或替换按邮箱授权请求.
// 同一 (资源, 邮箱) 最多一条授权，重复调用覆盖角色.
type UpsertGrantRequest struct {
	Email string `json:"email" rule:"required,email"`
	Role  string `json:"role" rule:"required,oneof=viewer editor"`
}

// GrantInfo 按邮箱授权公开信息.
type GrantInfo struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedBy string `json:"created_by"`
	UpdatedAt string `json:"updated_at"` // RFC3339
}

// ListGrantsResponse 资源的授权列表响应.
type ListGrantsResponse struct {
	Grants []GrantInfo `json:"grants"`
	Total  int         `json:"total"`
}
