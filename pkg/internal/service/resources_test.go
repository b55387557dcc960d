package service

import (
	"context"
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

var resOwner = authz.Principal{ID: "u-owner", Email: "owner@example.com"}

// TestCreateFolderAtRoot 根目录创建要求已认证，归属调用方.
func TestCreateFolderAtRoot(t *testing.T) {
	svc := newTestService(t)
	rs := &ResourceService{svc}
	ctx := context.Background()

	info, err := rs.CreateFolder(ctx, resOwner, &types.CreateFolderRequest{Name: "docs"}, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if info.OwnerID != resOwner.ID || info.ParentID != "" {
		t.Fatalf("info = %+v", info)
	}

	if _, err := rs.CreateFolder(ctx, authz.Principal{}, &types.CreateFolderRequest{Name: "x"}, ""); !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("anonymous create kind = %v, want forbidden", fault.KindOf(err))
	}
}

// TestCreateInFolderInheritsOwner 受授权的 editor 在他人文件夹里创建，所有权仍归文件夹所有者.
func TestCreateInFolderInheritsOwner(t *testing.T) {
	svc := newTestService(t)
	rs := &ResourceService{svc}
	ss := &ShareService{svc}
	ctx := context.Background()

	seedFolder(t, svc, "shared", resOwner.ID, nil)

	ref := authz.ResourceRef{Type: authz.ResourceFolder, ID: "shared"}
	if _, err := ss.UpsertGrant(ctx, resOwner, ref, &types.UpsertGrantRequest{Email: "ed@example.com", Role: "editor"}, ""); err != nil {
		t.Fatalf("grant: %v", err)
	}

	editor := authz.Principal{ID: "u-ed", Email: "ed@example.com"}

	info, err := rs.CreateFolder(ctx, editor, &types.CreateFolderRequest{Name: "sub", ParentID: "shared"}, "")
	if err != nil {
		t.Fatalf("editor create: %v", err)
	}

	if info.OwnerID != resOwner.ID {
		t.Fatalf("owner = %s, want folder owner %s", info.OwnerID, resOwner.ID)
	}

	// viewer 没有写权限
	if _, err := ss.UpsertGrant(ctx, resOwner, ref, &types.UpsertGrantRequest{Email: "v@example.com", Role: "viewer"}, ""); err != nil {
		t.Fatalf("grant viewer: %v", err)
	}

	viewer := authz.Principal{ID: "u-v", Email: "v@example.com"}
	if _, err := rs.CreateFolder(ctx, viewer, &types.CreateFolderRequest{Name: "nope", ParentID: "shared"}, ""); !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("viewer create kind = %v, want forbidden", fault.KindOf(err))
	}
}

// TestMoveFolderIntoOwnSubtreeConflicts 把文件夹移进自己的子树是状态冲突.
func TestMoveFolderIntoOwnSubtreeConflicts(t *testing.T) {
	svc := newTestService(t)
	rs := &ResourceService{svc}
	ctx := context.Background()

	seedFolder(t, svc, "a", resOwner.ID, nil)
	seedFolder(t, svc, "b", resOwner.ID, strPtr("a"))
	seedFolder(t, svc, "c", resOwner.ID, strPtr("b"))

	err := rs.Move(ctx, resOwner, authz.ResourceRef{Type: authz.ResourceFolder, ID: "a"},
		&types.MoveResourceRequest{NewParentID: strPtr("c")}, "")
	if !fault.Is(err, fault.KindConflict) {
		t.Fatalf("kind = %v, want conflict", fault.KindOf(err))
	}

	// 自身也是自己的子树
	err = rs.Move(ctx, resOwner, authz.ResourceRef{Type: authz.ResourceFolder, ID: "a"},
		&types.MoveResourceRequest{NewParentID: strPtr("a")}, "")
	if !fault.Is(err, fault.KindConflict) {
		t.Fatalf("self move kind = %v, want conflict", fault.KindOf(err))
	}

	// 合法移动：c 提到根
	if err := rs.Move(ctx, resOwner, authz.ResourceRef{Type: authz.ResourceFolder, ID: "c"},
		&types.MoveResourceRequest{NewParentID: strPtr("")}, ""); err != nil {
		t.Fatalf("move to root: %v", err)
	}

	if loadFolderRow(t, svc, "c").ParentID != nil {
		t.Fatal("c should be at root")
	}
}

// TestMoveAcrossOwnersConflicts 跨所有者移动是冲突.
func TestMoveAcrossOwnersConflicts(t *testing.T) {
	svc := newTestService(t)
	rs := &ResourceService{svc}
	ctx := context.Background()

	seedFile(t, svc, "doc.txt", resOwner.ID, nil)
	seedFolder(t, svc, "theirs", "u-other", nil)

	err := rs.Move(ctx, resOwner, authz.ResourceRef{Type: authz.ResourceFile, ID: "doc.txt"},
		&types.MoveResourceRequest{NewParentID: strPtr("theirs")}, "")
	if !fault.Is(err, fault.KindConflict) {
		t.Fatalf("kind = %v, want conflict", fault.KindOf(err))
	}
}

// TestListChildrenHidesTrashed 列表不含回收站中的子项.
func TestListChildrenHidesTrashed(t *testing.T) {
	svc := newTestService(t)
	rs := &ResourceService{svc}
	ts := &TrashService{rs}
	ctx := context.Background()

	seedFolder(t, svc, "docs", resOwner.ID, nil)
	seedFile(t, svc, "a.txt", resOwner.ID, strPtr("docs"))
	seedFile(t, svc, "b.txt", resOwner.ID, strPtr("docs"))

	if _, err := ts.SoftDelete(ctx, resOwner, authz.ResourceRef{Type: authz.ResourceFile, ID: "a.txt"}, ""); err != nil {
		t.Fatalf("trash: %v", err)
	}

	resp, err := rs.ListChildren(ctx, resOwner, "docs", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if resp.Total != 1 || resp.Files[0].FileID != "b.txt" {
		t.Fatalf("children = %+v", resp)
	}
}

// TestAnonymousReadViaLinkToken 匿名访问者凭有效链接令牌可读，无令牌得到 not_found.
func TestAnonymousReadViaLinkToken(t *testing.T) {
	svc := newTestService(t)
	rs := &ResourceService{svc}
	ss := &ShareService{svc}
	ctx := context.Background()
	ref := authz.ResourceRef{Type: authz.ResourceFolder, ID: "pub"}

	seedFolder(t, svc, "pub", resOwner.ID, nil)
	seedFile(t, svc, "pic.jpg", resOwner.ID, strPtr("pub"))

	if _, err := ss.UpsertLink(ctx, resOwner, ref, &types.UpsertLinkRequest{Role: "viewer"}, ""); err != nil {
		t.Fatalf("link: %v", err)
	}

	var link model.ShareLink
	if err := svc.dbc.GetDB().Where("resource_id = ?", "pub").Take(&link).Error; err != nil {
		t.Fatalf("load link: %v", err)
	}

	anon := authz.Principal{}

	resp, err := rs.ListChildren(ctx, anon, "pub", link.Token)
	if err != nil {
		t.Fatalf("anon list: %v", err)
	}

	if resp.Total != 1 {
		t.Fatalf("children = %+v", resp)
	}

	// 无令牌：与资源不存在同形状
	if _, err := rs.ListChildren(ctx, anon, "pub", ""); !fault.Is(err, fault.KindNotFound) {
		t.Fatalf("kind = %v, want not_found", fault.KindOf(err))
	}

	// viewer 令牌没有写权限
	err = rs.Move(ctx, anon, ref, &types.MoveResourceRequest{NewName: "hijacked"}, link.Token)
	if !fault.Is(err, fault.KindForbidden) {
		t.Fatalf("anon move kind = %v, want forbidden", fault.KindOf(err))
	}
}

// TestStatMissingResourceNotFound 资源不存在与无权限同形状.
func TestStatMissingResourceNotFound(t *testing.T) {
	svc := newTestService(t)
	rs := &ResourceService{svc}
	ctx := context.Background()

	_, errMissing := rs.StatFolder(ctx, resOwner, "ghost", "")
	if !fault.Is(errMissing, fault.KindNotFound) {
		t.Fatalf("missing kind = %v", fault.KindOf(errMissing))
	}

	seedFolder(t, svc, "private", "u-other", nil)

	_, errDenied := rs.StatFolder(ctx, resOwner, "private", "")
	if !fault.Is(errDenied, fault.KindNotFound) {
		t.Fatalf("denied kind = %v", fault.KindOf(errDenied))
	}
}
