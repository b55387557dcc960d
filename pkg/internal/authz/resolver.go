package authz

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"
)

// ResourceStore 解析所需的资源元数据读取契约（由存储层实现）。
// 资源不存在时返回 fault.KindNotFound；存储不可用返回 fault.KindTransient。
type ResourceStore interface {
	// GetOwner 返回资源的所有者标识。对已移入回收站的资源同样有效：
	// 授权解析不关心回收站状态。
	GetOwner(ctx context.Context, ref ResourceRef) (string, error)
}

// GrantStore 按邮箱授权的读取契约。
type GrantStore interface {
	// GetGrant 查找 (资源, 小写邮箱) 的授权角色，未命中返回 ok=false。
	GetGrant(ctx context.Context, ref ResourceRef, email string) (Role, bool, error)
}

// LinkInfo 链接分享的解析视图（每个资源至多一条）。
type LinkInfo struct {
	Token     string
	Role      Role
	ExpiresAt *time.Time
}

// LinkStore 链接分享的读取契约。
type LinkStore interface {
	// GetLink 返回资源当前的分享链接，未创建返回 ok=false。
	GetLink(ctx context.Context, ref ResourceRef) (LinkInfo, bool, error)
}

// Resolver 将所有权、按邮箱授权、链接分享三个独立来源归并为单一生效角色。
// 解析顺序固定：所有权 > 按邮箱授权 > 链接分享，第一个命中的策略即为结果。
// 所有权最先且无条件检查，所有者绝不会被较窄的授权或过期链接降级；
// 按邮箱授权绑定身份、可按人撤销，因此排在随手可封禁的匿名链接之前。
type Resolver struct {
	resources ResourceStore
	grants    GrantStore
	links     LinkStore
	now       func() time.Time
}

// NewResolver 创建角色解析器。
func NewResolver(resources ResourceStore, grants GrantStore, links LinkStore) *Resolver {
	return &Resolver{
		resources: resources,
		grants:    grants,
		links:     links,
		now:       time.Now,
	}
}

// WithClock 替换时钟，仅用于过期判定的测试。
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// resolveInput 单次解析的输入，串联各策略。
type resolveInput struct {
	principal Principal
	ref       ResourceRef
	token     string
	ownerID   string
}

// strategy 单个解析策略：返回 RoleNone 表示未命中，交给下一个策略。
type strategy func(ctx context.Context, in *resolveInput) (Role, error)

// Resolve 解析调用方对资源的生效角色。
// 资源不存在返回 KindNotFound；存储失败返回 KindTransient，绝不静默降级为 RoleNone。
// 无任何授权来源命中时返回 RoleNone（错误为 nil，由 Guard 决定如何呈现）。
func (r *Resolver) Resolve(ctx context.Context, p Principal, ref ResourceRef, shareToken string) (Role, error) {
	ownerID, err := r.resources.GetOwner(ctx, ref)
	if err != nil {
		return RoleNone, err
	}

	in := &resolveInput{
		principal: p,
		ref:       ref,
		token:     shareToken,
		ownerID:   ownerID,
	}

	for _, s := range []strategy{r.byOwnership, r.byGrant, r.byLink} {
		role, err := s(ctx, in)
		if err != nil {
			return RoleNone, err
		}

		if role != RoleNone {
			return role, nil
		}
	}

	return RoleNone, nil
}

// byOwnership 所有权策略：principal 即资源所有者时返回 owner。
func (r *Resolver) byOwnership(_ context.Context, in *resolveInput) (Role, error) {
	if !in.principal.IsAnonymous() && in.principal.ID == in.ownerID {
		return RoleOwner, nil
	}

	return RoleNone, nil
}

// byGrant 按邮箱授权策略。未携带已验证邮箱时不发起任何查询。
func (r *Resolver) byGrant(ctx context.Context, in *resolveInput) (Role, error) {
	if in.principal.IsAnonymous() || in.principal.Email == "" {
		return RoleNone, nil
	}

	role, ok, err := r.grants.GetGrant(ctx, in.ref, strings.ToLower(in.principal.Email))
	if err != nil {
		return RoleNone, err
	}

	if !ok {
		return RoleNone, nil
	}

	return role, nil
}

// byLink 链接分享策略：令牌不匹配或链接已过期一律视为未命中，
// 绝不退化为任何默认角色。
func (r *Resolver) byLink(ctx context.Context, in *resolveInput) (Role, error) {
	if in.token == "" {
		return RoleNone, nil
	}

	link, ok, err := r.links.GetLink(ctx, in.ref)
	if err != nil {
		return RoleNone, err
	}

	if !ok {
		return RoleNone, nil
	}

	if link.ExpiresAt != nil && !link.ExpiresAt.After(r.now()) {
		return RoleNone, nil
	}

	if subtle.ConstantTimeCompare([]byte(link.Token), []byte(in.token)) != 1 {
		return RoleNone, nil
	}

	return link.Role, nil
}
