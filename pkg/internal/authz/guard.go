package authz

import (
	"context"

	"github.com/yeisme/drivevault/pkg/internal/fault"
)

// Guard 组合 Resolver 与权限表，是所有资源操作前的唯一授权闸口。
type Guard struct {
	resolver *Resolver
}

// NewGuard 创建授权闸口。
func NewGuard(r *Resolver) *Guard {
	return &Guard{resolver: r}
}

// Resolver 返回底层解析器（供只需角色、不做动作判定的调用方使用）。
func (g *Guard) Resolver() *Resolver { return g.resolver }

// Authorize 解析角色并按权限表判定操作，成功返回生效角色。
//
// 拒绝时的呈现有意不对称：
//   - 解析结果为 RoleNone 时统一返回 KindNotFound，使"资源不存在"与
//     "存在但对你不可见"不可区分，避免探测资源是否存在；
//   - 角色已解析但权限不足时返回 KindForbidden，给持有部分权限的
//     调用方（如误操作的 editor）更明确的信号。
//
// 资源缺失与存储故障由 Resolve 原样传出（KindNotFound / KindTransient）。
func (g *Guard) Authorize(ctx context.Context, p Principal, ref ResourceRef, action Action, shareToken string) (Role, error) {
	role, err := g.resolver.Resolve(ctx, p, ref, shareToken)
	if err != nil {
		return RoleNone, err
	}

	if role == RoleNone {
		return RoleNone, fault.NotFound("%s not found", ref.Type)
	}

	if !Allows(role, action) {
		return RoleNone, fault.Forbidden("role %s cannot %s", role, action)
	}

	return role, nil
}
