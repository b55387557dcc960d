// Package model 定义数据库模型：资源树（文件/文件夹）、分享链接与按邮箱授权.
// DeletedAt 是回收站标记，由生命周期服务显式读写，不使用 gorm 的软删除魔法：
// 恢复与回收站列表都需要对该列做直接控制.
package model

import (
	"time"

	"gorm.io/gorm"
)

// Folder 文件夹模型.
type Folder struct {
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// OwnerID 所有者标识；非根资源的父级必须属于同一所有者
	OwnerID string `gorm:"size:255;index;index:idx_folder_owner_parent" json:"owner_id"`
	// ParentID 父文件夹，null 表示根目录
	ParentID *string `gorm:"size:64;index:idx_folder_owner_parent" json:"parent_id,omitempty"`
	Name     string  `gorm:"size:512"                              json:"name"`
	// DeletedAt 非空表示位于回收站
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// File 文件模型.
type File struct {
	ID      string `gorm:"primaryKey;size:64" json:"id"`
	OwnerID string `gorm:"size:255;index;index:idx_file_owner_folder" json:"owner_id"`
	// FolderID 所在文件夹，null 表示根目录
	FolderID    *string `gorm:"size:64;index:idx_file_owner_folder" json:"folder_id,omitempty"`
	Name        string  `gorm:"size:512;index"                      json:"name"`
	Size        int64   `json:"size"`
	ContentType string  `gorm:"size:255" json:"content_type"`
	// 对象存储定位符
	Bucket    string `gorm:"size:255"        json:"bucket"`
	ObjectKey string `gorm:"size:1024;index" json:"object_key"`
	// DeletedAt 非空表示位于回收站
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsTrashed 报告文件夹是否位于回收站.
func (f *Folder) IsTrashed() bool { return f.DeletedAt != nil }

// IsTrashed 报告文件是否位于回收站.
func (f *File) IsTrashed() bool { return f.DeletedAt != nil }

// AutoMigrate 建表/迁移全部模型.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Folder{}, &File{}, &ShareLink{}, &Grant{})
}
