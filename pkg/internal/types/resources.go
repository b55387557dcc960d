// Package types 定义对外 API 的请求/响应结构体（DTO），与存储模型解耦.
package types

// CreateFolderRequest 创建文件夹请求.
type CreateFolderRequest struct {
	Name     string `json:"name" rule:"required,max=255"` // 文件夹名称
	ParentID string `json:"parent_id,omitempty"`          // 父文件夹 ID，为空表示根目录
}

// FolderInfo 文件夹公开信息.
type FolderInfo struct {
	FolderID  string `json:"folder_id"`
	Name      string `json:"name"`
	ParentID  string `json:"parent_id,omitempty"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"` // RFC3339
	UpdatedAt string `json:"updated_at"` // RFC3339
}

// RegisterFileRequest 登记文件元数据并申请预签名上传地址.
type RegisterFileRequest struct {
	Name        string `json:"name" rule:"required,max=255"` // 文件名
	ParentID    string `json:"parent_id,omitempty"`          // 所属文件夹 ID，为空表示根目录
	Size        int64  `json:"size" rule:"gte=0"`            // 文件大小（字节）
	ContentType string `json:"content_type,omitempty"`       // MIME 类型
}

// RegisterFileResponse 文件登记响应，客户端用 PutURL 直传对象存储.
type RegisterFileResponse struct {
	File      FileInfo `json:"file"`
	PutURL    string   `json:"put_url"`
	ExpiresIn int      `json:"expires_in"` // 预签名有效期（秒）
}

// FileInfo 文件公开信息.
type FileInfo struct {
	FileID      string `json:"file_id"`
	Name        string `json:"name"`
	ParentID    string `json:"parent_id,omitempty"`
	OwnerID     string `json:"owner_id"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	CreatedAt   string `json:"created_at"` // RFC3339
	UpdatedAt   string `json:"updated_at"` // RFC3339
}

// DownloadFileResponse 预签名下载结果.
type DownloadFileResponse struct {
	FileID    string `json:"file_id"`
	GetURL    string `json:"get_url"`
	ExpiresIn int    `json:"expires_in"` // 预签名有效期（秒）
}

// MoveResourceRequest 移动或重命名资源请求，两个字段至少提供一个.
type MoveResourceRequest struct {
	NewParentID *string `json:"new_parent_id,omitempty"` // 目标父文件夹 ID，空字符串表示移到根目录
	NewName     string  `json:"new_name,omitempty"`      // 新名称，缺省保持原名
}

// ListChildrenResponse 列出文件夹直接子项.
type ListChildrenResponse struct {
	Folders []FolderInfo `json:"folders"`
	Files   []FileInfo   `json:"files"`
	Total   int          `json:"total"`
}
