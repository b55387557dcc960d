package authz

// rolePolicy 固定的角色-操作权限表，不做按资源覆盖。
// 未知角色/操作一律视为不允许（宁可拒绝，不可放行）。
var rolePolicy = map[Role]map[Action]bool{
	RoleViewer: {
		ActionRead: true,
	},
	RoleEditor: {
		ActionRead:  true,
		ActionWrite: true,
	},
	RoleOwner: {
		ActionRead:       true,
		ActionWrite:      true,
		ActionHardDelete: true,
		ActionShare:      true,
	},
}

// Allows 报告角色是否允许执行操作。纯函数，无副作用，不会失败。
func Allows(role Role, action Action) bool {
	perms, ok := rolePolicy[role]
	if !ok {
		return false
	}

	return perms[action]
}
