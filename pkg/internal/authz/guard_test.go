package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
)

func newGuard(m *mockStores) *authz.Guard {
	return authz.NewGuard(newResolver(m))
}

// TestAuthorizeOwner 所有者可以执行全部操作.
func TestAuthorizeOwner(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID

	g := newGuard(m)

	for _, action := range []authz.Action{authz.ActionRead, authz.ActionWrite, authz.ActionHardDelete, authz.ActionShare} {
		role, err := g.Authorize(context.Background(), owner, fileRef, action, "")
		if err != nil {
			t.Errorf("owner denied %s: %v", action, err)
		}

		if role != authz.RoleOwner {
			t.Errorf("Authorize returned %s, want owner", role)
		}
	}
}

// TestAuthorizeInsufficientRole 角色已解析但权限不足时返回 Forbidden，
// 给持有部分权限的调用方明确信号.
func TestAuthorizeInsufficientRole(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.putGrant(fileRef, "alice@example.com", authz.RoleEditor)

	_, err := newGuard(m).Authorize(context.Background(), alice, fileRef, authz.ActionHardDelete, "")
	if !fault.Is(err, fault.KindForbidden) {
		t.Errorf("editor hard-delete error = %v, want KindForbidden", err)
	}
}

// TestAuthorizeNoRoleShapedAsNotFound 无任何授权时以 NotFound 形态拒绝，
// 不向未授权探测泄露资源是否存在.
func TestAuthorizeNoRoleShapedAsNotFound(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID

	_, err := newGuard(m).Authorize(context.Background(), alice, fileRef, authz.ActionRead, "")
	if !fault.Is(err, fault.KindNotFound) {
		t.Errorf("unauthorized read error = %v, want KindNotFound", err)
	}

	// 与真正不存在的资源形态一致
	missing := authz.ResourceRef{Type: authz.ResourceFile, ID: "no-such"}

	_, err2 := newGuard(m).Authorize(context.Background(), alice, missing, authz.ActionRead, "")
	if fault.KindOf(err) != fault.KindOf(err2) {
		t.Errorf("denial shapes differ: %v vs %v", err, err2)
	}
}

// TestAuthorizeExpiredLinkDenied 过期链接持有者得到 NotFound 形态的拒绝.
func TestAuthorizeExpiredLinkDenied(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID

	expired := time.Now().Add(-time.Minute)
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleViewer, ExpiresAt: &expired}

	_, err := newGuard(m).Authorize(context.Background(), anon, fileRef, authz.ActionRead, "tok-1")
	if !fault.Is(err, fault.KindNotFound) {
		t.Errorf("expired link read error = %v, want KindNotFound", err)
	}
}

// TestAuthorizeViewerViaLink 有效链接授予的 viewer 可读不可写.
func TestAuthorizeViewerViaLink(t *testing.T) {
	m := newMockStores()
	m.owners[fileRef] = owner.ID
	m.links[fileRef] = authz.LinkInfo{Token: "tok-1", Role: authz.RoleViewer}

	g := newGuard(m)

	role, err := g.Authorize(context.Background(), anon, fileRef, authz.ActionRead, "tok-1")
	if err != nil || role != authz.RoleViewer {
		t.Errorf("link viewer read = (%s, %v), want (viewer, nil)", role, err)
	}

	if _, err := g.Authorize(context.Background(), anon, fileRef, authz.ActionWrite, "tok-1"); !fault.Is(err, fault.KindForbidden) {
		t.Errorf("link viewer write error = %v, want KindForbidden", err)
	}
}
