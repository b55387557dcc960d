package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

var shareOwner = authz.Principal{ID: "u-owner", Email: "owner@example.com"}

func setShareOrigin(t *testing.T) {
	t.Helper()

	old := configs.GetConfig().Share.PublicOrigin
	configs.GetConfig().Share.PublicOrigin = "https://dv.example.com"
	t.Cleanup(func() { configs.GetConfig().Share.PublicOrigin = old })
}

func linkRow(t *testing.T, svc *Service, ref authz.ResourceRef) *model.ShareLink {
	t.Helper()

	var l model.ShareLink
	if err := svc.dbc.GetDB().
		Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Take(&l).Error; err != nil {
		t.Fatalf("load link: %v", err)
	}

	return &l
}

func linkRowExists(t *testing.T, svc *Service, ref authz.ResourceRef) bool {
	t.Helper()

	var n int64
	if err := svc.dbc.GetDB().Model(&model.ShareLink{}).
		Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Count(&n).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}

	return n > 0
}

// TestUpsertLinkCreatesThenRotates 重复 upsert 原地轮换令牌，绝不产生第二条记录.
func TestUpsertLinkCreatesThenRotates(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"}

	setShareOrigin(t)
	seedFile(t, svc, "doc.txt", shareOwner.ID, nil)

	resp, err := ss.UpsertLink(ctx, shareOwner, ref, &types.UpsertLinkRequest{Role: "viewer"}, "")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if resp.Rotated {
		t.Fatal("first upsert should not report rotation")
	}

	if !strings.HasPrefix(resp.Link.URL, "https://dv.example.com/share/file/doc.txt?t=") {
		t.Fatalf("url = %s", resp.Link.URL)
	}

	first := linkRow(t, svc, ref)

	resp2, err := ss.UpsertLink(ctx, shareOwner, ref, &types.UpsertLinkRequest{Role: "editor"}, "")
	if err != nil {
		t.Fatalf("rotate link: %v", err)
	}

	if !resp2.Rotated {
		t.Fatal("second upsert should report rotation")
	}

	second := linkRow(t, svc, ref)
	if second.Token == first.Token {
		t.Fatal("rotation must replace the token")
	}

	if second.Role != "editor" {
		t.Fatalf("role = %s, want editor", second.Role)
	}

	var n int64
	if err := svc.dbc.GetDB().Model(&model.ShareLink{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("link rows = %d err=%v, want exactly 1", n, err)
	}

	// 旧令牌立即失效：匿名访问者持旧令牌解析为无授权
	anon := authz.Principal{}

	role, err := ss.guard.Resolver().Resolve(ctx, anon, ref, first.Token)
	if err != nil || role != authz.RoleNone {
		t.Fatalf("stale token resolved to %v err=%v", role, err)
	}

	role, err = ss.guard.Resolver().Resolve(ctx, anon, ref, second.Token)
	if err != nil || role != authz.RoleEditor {
		t.Fatalf("new token resolved to %v err=%v, want editor", role, err)
	}
}

// TestUpsertLinkRejectsOwnerRole owner 不可经链接授予.
func TestUpsertLinkRejectsOwnerRole(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"}

	seedFile(t, svc, "doc.txt", shareOwner.ID, nil)

	_, err := ss.UpsertLink(context.Background(), shareOwner, ref, &types.UpsertLinkRequest{Role: "owner"}, "")
	if !fault.Is(err, fault.KindConflict) {
		t.Fatalf("kind = %v, want conflict", fault.KindOf(err))
	}
}

// TestRevokeLinkIdempotent 撤销不存在的链接幂等成功.
func TestRevokeLinkIdempotent(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"}

	seedFile(t, svc, "doc.txt", shareOwner.ID, nil)

	if err := ss.RevokeLink(ctx, shareOwner, ref, ""); err != nil {
		t.Fatalf("revoke absent link: %v", err)
	}

	if _, err := ss.UpsertLink(ctx, shareOwner, ref, &types.UpsertLinkRequest{Role: "viewer"}, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := ss.RevokeLink(ctx, shareOwner, ref, ""); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if err := ss.RevokeLink(ctx, shareOwner, ref, ""); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

// TestDescribeLinkRendersURLAndRequiresSharePermission describe 渲染完整 URL，且只有可分享者可见.
func TestDescribeLinkRendersURLAndRequiresSharePermission(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFolder, ID: "photos"}

	setShareOrigin(t)
	seedFolder(t, svc, "photos", shareOwner.ID, nil)

	created, err := ss.UpsertLink(ctx, shareOwner, ref, &types.UpsertLinkRequest{Role: "viewer", ExpireDays: 7}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	info, err := ss.DescribeLink(ctx, shareOwner, ref, "")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}

	if info.URL != created.Link.URL {
		t.Fatalf("describe url %s != created %s", info.URL, created.Link.URL)
	}

	u, err := url.Parse(info.URL)
	if err != nil || u.Query().Get("t") == "" {
		t.Fatalf("url %s should embed token", info.URL)
	}

	if info.ExpiresAt == nil {
		t.Fatal("expires_at should be set")
	}

	// viewer（经授权）不能 describe：URL 含机密令牌
	if _, err := ss.UpsertGrant(ctx, shareOwner, ref, &types.UpsertGrantRequest{Email: "viewer@example.com", Role: "viewer"}, ""); err != nil {
		t.Fatalf("grant: %v", err)
	}

	viewer := authz.Principal{ID: "u-viewer", Email: "viewer@example.com"}
	if _, err := ss.DescribeLink(ctx, viewer, ref, ""); !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("viewer describe kind = %v, want forbidden", fault.KindOf(err))
	}

	// 陌生人得到与资源不存在相同的形状
	stranger := authz.Principal{ID: "u-stranger", Email: "s@example.com"}
	if _, err := ss.DescribeLink(ctx, stranger, ref, ""); !fault.Is(err, fault.KindNotFound) {
		t.Fatalf("stranger describe kind = %v, want not_found", fault.KindOf(err))
	}
}

// TestUpsertGrantLowercasesAndReplaces 邮箱小写归一，重复授权覆盖角色.
func TestUpsertGrantLowercasesAndReplaces(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"}

	seedFile(t, svc, "doc.txt", shareOwner.ID, nil)

	g, err := ss.UpsertGrant(ctx, shareOwner, ref, &types.UpsertGrantRequest{Email: "Alice@Example.COM", Role: "viewer"}, "")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	if g.Email != "alice@example.com" {
		t.Fatalf("email = %s, want lowercase", g.Email)
	}

	if _, err := ss.UpsertGrant(ctx, shareOwner, ref, &types.UpsertGrantRequest{Email: "alice@example.com", Role: "editor"}, ""); err != nil {
		t.Fatalf("replace grant: %v", err)
	}

	list, err := ss.ListGrants(ctx, shareOwner, ref, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if list.Total != 1 || list.Grants[0].Role != "editor" {
		t.Fatalf("grants = %+v, want single editor", list.Grants)
	}

	// 解析端同样大小写不敏感
	alice := authz.Principal{ID: "u-alice", Email: "ALICE@example.com"}

	role, err := ss.guard.Resolver().Resolve(ctx, alice, ref, "")
	if err != nil || role != authz.RoleEditor {
		t.Fatalf("resolved %v err=%v, want editor", role, err)
	}
}

// TestRevokeGrantIdempotent 撤销不存在的授权幂等成功.
func TestRevokeGrantIdempotent(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"}

	seedFile(t, svc, "doc.txt", shareOwner.ID, nil)

	if err := ss.RevokeGrant(ctx, shareOwner, ref, "ghost@example.com", ""); err != nil {
		t.Fatalf("revoke absent grant: %v", err)
	}

	if _, err := ss.UpsertGrant(ctx, shareOwner, ref, &types.UpsertGrantRequest{Email: "bob@example.com", Role: "viewer"}, ""); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := ss.RevokeGrant(ctx, shareOwner, ref, "Bob@Example.com", ""); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	list, err := ss.ListGrants(ctx, shareOwner, ref, "")
	if err != nil || list.Total != 0 {
		t.Fatalf("grants after revoke = %+v err=%v", list, err)
	}
}

// TestShareOperationsRequireSharePermission editor 不持有 share 权限.
func TestShareOperationsRequireSharePermission(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"}

	seedFile(t, svc, "doc.txt", shareOwner.ID, nil)

	if _, err := ss.UpsertGrant(ctx, shareOwner, ref, &types.UpsertGrantRequest{Email: "ed@example.com", Role: "editor"}, ""); err != nil {
		t.Fatalf("grant: %v", err)
	}

	editor := authz.Principal{ID: "u-ed", Email: "ed@example.com"}

	_, err := ss.UpsertLink(ctx, editor, ref, &types.UpsertLinkRequest{Role: "viewer"}, "")
	if !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("editor upsert link kind = %v, want forbidden", fault.KindOf(err))
	}
}

// TestUpsertLinkRejectsTTLOverLimit 超出上限的有效期请求被拒绝，而不是被悄悄缩短.
func TestUpsertLinkRejectsTTLOverLimit(t *testing.T) {
	svc := newTestService(t)
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"}

	old := configs.GetConfig().Share.MaxTTLDays
	configs.GetConfig().Share.MaxTTLDays = 30
	t.Cleanup(func() { configs.GetConfig().Share.MaxTTLDays = old })

	seedFile(t, svc, "doc.txt", shareOwner.ID, nil)

	_, err := ss.UpsertLink(ctx, shareOwner, ref, &types.UpsertLinkRequest{Role: "viewer", ExpireDays: 31}, "")
	if !fault.Is(err, fault.KindConflict) {
		t.Fatalf("over-limit ttl kind = %v, want conflict", fault.KindOf(err))
	}

	if linkRowExists(t, svc, ref) {
		t.Fatal("no link row may be written on a rejected upsert")
	}

	resp, err := ss.UpsertLink(ctx, shareOwner, ref, &types.UpsertLinkRequest{Role: "viewer", ExpireDays: 30}, "")
	if err != nil {
		t.Fatalf("at-limit ttl: %v", err)
	}

	want := time.Now().UTC().Add(30 * 24 * time.Hour)
	if resp.Link.ExpiresAt == nil || resp.Link.ExpiresAt.Sub(want).Abs() > time.Minute {
		t.Fatalf("expires_at = %v, want about %v", resp.Link.ExpiresAt, want)
	}
}
