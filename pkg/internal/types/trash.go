package types

import "time"

// TrashedItem 回收站条目.
type TrashedItem struct {
	Type      string `json:"type"` // file | folder
	ID        string `json:"id"`
	Name      string `json:"name"`
	TrashedAt string `json:"trashed_at"` // RFC3339
}

// TrashListResponse 回收站列表响应.
type TrashListResponse struct {
	Total int           `json:"total"`
	Items []TrashedItem `json:"items"`
}

// TrashActionResponse 软删除/恢复的通用响应，Cascaded 列出随之转移状态的子项.
type TrashActionResponse struct {
	Type     string        `json:"type"`
	ID       string        `json:"id"`
	Cascaded []TrashedItem `json:"cascaded,omitempty"`
	Affected int           `json:"affected"`
}

// PurgeResponse 彻底删除响应.
// Complete 为 false 表示部分子项未能完成，Failed 列出明细供重试.
type PurgeResponse struct {
	Type     string   `json:"type"`
	ID       string   `json:"id"`
	Purged   int      `json:"purged"`
	Failed   []string `json:"failed,omitempty"`
	Complete bool     `json:"complete"`
}

// TrashAutoCleanRequest 自动清理请求.
// 可指定 before（RFC3339）或 days（整数，表示清理 N 天前删除的）.
type TrashAutoCleanRequest struct {
	Before string `json:"before,omitempty"`
	Days   int    `json:"days,omitempty"`
}

// ParseBefore 返回解析后的时间与是否提供.
// 未来的时间界限会截断到当前时刻，清理永不触及尚在保留期内的条目.
func (r *TrashAutoCleanRequest) ParseBefore() (time.Time, bool) {
	now := time.Now().UTC()

	if r.Before != "" {
		if t, err := time.Parse(time.RFC3339, r.Before); err == nil {
			if t.After(now) {
				t = now
			}

			return t, true
		}
	}

	if r.Days > 0 {
		return now.Add(-time.Duration(r.Days) * 24 * time.Hour), true
	}

	return time.Time{}, false
}
