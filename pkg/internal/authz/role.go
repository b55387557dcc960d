// Package authz 实现资源级授权核心：角色模型、权限表、角色解析与统一授权闸口.
// 所有读取、变更、删除资源的操作必须先经过 Guard，不允许绕过直接查库.
package authz

import "strings"

// Role 表示调用方对某个资源的能力级别（数值越大权限越高）。
type Role int

const (
	// RoleNone 无任何授权（匿名且无有效令牌，或既非所有者也无授权记录）.
	RoleNone Role = iota
	RoleViewer
	RoleEditor
	// RoleOwner 仅来自资源所有权，不可通过链接或按邮箱授权获得.
	RoleOwner
)

// String 返回角色的字符串表示。
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleEditor:
		return "editor"
	case RoleViewer:
		return "viewer"
	case RoleNone:
		fallthrough
	default:
		return "none"
	}
}

// ParseAssignableRole 解析可授予的角色（viewer/editor）。
// owner 不可被授予，解析失败返回 false。
func ParseAssignableRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "viewer":
		return RoleViewer, true
	case "editor":
		return RoleEditor, true
	default:
		return RoleNone, false
	}
}

// Action 表示需要授权的操作类别。
type Action int

const (
	// ActionRead 读取资源元数据或内容.
	ActionRead Action = iota + 1
	// ActionWrite 重命名、移动、软删除与恢复.
	ActionWrite
	// ActionHardDelete 彻底删除（含底层对象）.
	ActionHardDelete
	// ActionShare 创建/轮换/撤销链接与按邮箱授权.
	ActionShare
)

// String 返回操作的字符串表示。
func (a Action) String() string {
	switch a {
	case ActionRead:
		return "read"
	case ActionWrite:
		return "write"
	case ActionHardDelete:
		return "hard-delete"
	case ActionShare:
		return "share"
	default:
		return "unknown"
	}
}

// ResourceType 资源类型（文件或文件夹）。
type ResourceType string

const (
	ResourceFile   ResourceType = "file"
	ResourceFolder ResourceType = "folder"
)

// ParseResourceType 解析资源类型，未知值返回 false。
func ParseResourceType(s string) (ResourceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return ResourceFile, true
	case "folder":
		return ResourceFolder, true
	default:
		return "", false
	}
}

// ResourceRef 资源引用，核心各组件之间传递的最小标识。
type ResourceRef struct {
	Type ResourceType
	ID   string
}

// Principal 已认证调用方（由外部认证层产出，核心不做凭证校验）。
// 零值表示匿名调用方。
type Principal struct {
	ID    string
	Email string
}

// IsAnonymous 报告是否为匿名调用方。
func (p Principal) IsAnonymous() bool { return p.ID == "" }
