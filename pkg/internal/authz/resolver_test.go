package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
)

// mockStores 模拟解析器依赖的三类存储，用于在内存中验证解析语义.
type mockStores struct {
	owners map[authz.ResourceRef]string
	grants map[string]authz.Role
	links  map[authz.ResourceRef]authz.LinkInfo

	grantQueries int
	resourceErr  error
}

func newMockStores() *mockStores {
	return &mockStores{
		owners: make(map[authz.ResourceRef]string),
		grants: make(map[string]authz.Role),
		links:  make(map[authz.ResourceRef]authz.LinkInfo),
	}
}

func (m *mockStores) GetOwner(_ context.Context, ref authz.ResourceRef) (string, error) {
	if m.resourceErr != nil {
		return "", m.resourceErr
	}

	owner, ok := m.owners[ref]
	if !ok {
		return "", fault.NotFound("%s not found", ref.Type)
	}

	return owner, nil
}

func (m *mockStores) GetGrant(_ context.Context, ref authz.ResourceRef, email string) (authz.Role, bool, error) {
	m.grantQueries++

	role, ok := m.grants[string(ref.Type)+"/"+ref.ID+"/"+email]

	return role, ok, nil
}

func (m *mockStores) GetLink(_ context.Context, ref authz.ResourceRef) (authz.LinkInfo, bool, error) {
	link, ok := m.links[ref]
	return link, ok, nil
}

func (m *mockStores) putGrant(ref authz.ResourceRef, email string, role authz.Role) {
	m.grants[string(ref.Type)+"/"+ref.ID+"/"+email] = role
}

var (
	fileRef = authz.ResourceRef{Type: authz.ResourceFile, ID: "01F0001"}
	owner   = authz.Principal{ID: "u-owner", Email: "owner@example.com"}
	alice   = authz.Principal{ID: "u-alice", Email: "Alice@Example.COM"}
	anon    = authz.Principal{}
)

func newResolver(m *mockStores) *authz.Resolver {
	return authz.NewResolver(m, m, m)
}

// TestResolveOwnership 所有者解析为 owner，任何并存的授权或链接都不能降级.
func TestResolveOwnership(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.putGrant(fileRef, "owner@example.com", authz.RoleViewer)
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleViewer}

	role, err := newResolver(m).Resolve(context.Background(), owner, fileRef, "tok-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if role != authz.RoleOwner {
		t.Errorf("owner resolved to %s, want owner", role)
	}
}

// TestResolveGrant 按邮箱授权命中时返回其角色，邮箱匹配不区分大小写.
func TestResolveGrant(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.putGrant(fileRef, "alice@example.com", authz.RoleEditor)

	role, err := newResolver(m).Resolve(context.Background(), alice, fileRef, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if role != authz.RoleEditor {
		t.Errorf("grantee resolved to %s, want editor", role)
	}
}

// TestResolvePrecedenceGrantOverLink 同时存在 Grant(viewer) 与有效链接(editor) 时，
// 身份绑定的授权优先于匿名链接，即使调用方也带了有效令牌.
func TestResolvePrecedenceGrantOverLink(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.putGrant(fileRef, "alice@example.com", authz.RoleViewer)
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleEditor}

	role, err := newResolver(m).Resolve(context.Background(), alice, fileRef, "tok-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if role != authz.RoleViewer {
		t.Errorf("resolved to %s, want viewer (grant outranks link)", role)
	}
}

// TestResolveLink 匿名调用方凭有效令牌获得链接角色.
func TestResolveLink(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleViewer}

	role, err := newResolver(m).Resolve(context.Background(), anon, fileRef, "tok-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if role != authz.RoleViewer {
		t.Errorf("token holder resolved to %s, want viewer", role)
	}
}

// TestResolveExpiredLink 过期链接完全失效，绝不返回其名义角色.
func TestResolveExpiredLink(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID

	expired := time.Now().Add(-time.Hour)
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleEditor, ExpiresAt: &expired}

	role, err := newResolver(m).Resolve(context.Background(), anon, fileRef, "tok-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if role != authz.RoleNone {
		t.Errorf("expired link resolved to %s, want none", role)
	}
}

// TestResolveLinkExpiryClock 过期判定基于解析时刻：创建时 1 天有效期，
// 拨快 2 天后令牌必须失效.
func TestResolveLinkExpiryClock(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID

	expires := time.Now().Add(24 * time.Hour)
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleViewer, ExpiresAt: &expires}

	r := newResolver(m).WithClock(func() time.Time { return time.Now().Add(48 * time.Hour) })

	role, err := r.Resolve(context.Background(), anon, fileRef, "tok-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if role != authz.RoleNone {
		t.Errorf("link resolved to %s two days later, want none", role)
	}
}

// TestResolveRotatedToken 轮换后旧令牌立即失效.
func TestResolveRotatedToken(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.links[fileRef] = authz.LinkInfo{Token: "tok-2", Role: authz.RoleViewer}

	role, err := newResolver(m).Resolve(context.Background(), anon, fileRef, "tok-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if role != authz.RoleNone {
		t.Errorf("stale token resolved to %s, want none", role)
	}
}

// TestResolveNoEmailSkipsGrantQuery 无邮箱时不得向授权存储发起查询.
func TestResolveNoEmailSkipsGrantQuery(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleViewer}

	if _, err := newResolver(m).Resolve(context.Background(), anon, fileRef, "tok-1"); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if m.grantQueries != 0 {
		t.Errorf("grant store queried %d times for anonymous caller, want 0", m.grantQueries)
	}
}

// TestResolveMissingResource 资源不存在返回 KindNotFound.
func TestResolveMissingResource(t *testing.T) {
	m := newMockStores()

	_, err := newResolver(m).Resolve(context.Background(), owner, fileRef, "")
	if !fault.Is(err, fault.KindNotFound) {
		t.Errorf("missing resource error = %v, want KindNotFound", err)
	}
}

// TestResolveStoreFailure 存储故障必须作为硬错误传出，不得静默解析为 none.
func TestResolveStoreFailure(t *testing.T) {
	m := newMockStores()
	m.resourceErr = fault.Transient(errors.New("connection refused"), "resource lookup")

	_, err := newResolver(m).Resolve(context.Background(), owner, fileRef, "")
	if !fault.Is(err, fault.KindTransient) {
		t.Errorf("store failure error = %v, want KindTransient", err)
	}

	if !fault.Retryable(err) {
		t.Error("transient failure should be retryable")
	}
}
