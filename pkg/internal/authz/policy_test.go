package authz_test

import (
	"testing"

	"github.com/yeisme/drivevault/pkg/internal/authz"
)

// TestAllows 逐项校验固定权限表.
func TestAllows(t *testing.T) {
	cases := []struct {
		role   authz.Role
		action authz.Action
		want   bool
	}{
		{authz.RoleViewer, authz.ActionRead, true},
		{authz.RoleViewer, authz.ActionWrite, false},
		{authz.RoleViewer, authz.ActionHardDelete, false},
		{authz.RoleViewer, authz.ActionShare, false},
		{authz.RoleEditor, authz.ActionRead, true},
		{authz.RoleEditor, authz.ActionWrite, true},
		{authz.RoleEditor, authz.ActionHardDelete, false},
		{authz.RoleEditor, authz.ActionShare, false},
		{authz.RoleOwner, authz.ActionRead, true},
		{authz.RoleOwner, authz.ActionWrite, true},
		{authz.RoleOwner, authz.ActionHardDelete, true},
		{authz.RoleOwner, authz.ActionShare, true},
	}

	for _, c := range cases {
		if got := authz.Allows(c.role, c.action); got != c.want {
			t.Errorf("Allows(%s, %s) = %v, want %v", c.role, c.action, got, c.want)
		}
	}
}

// TestAllowsFailClosed 未知角色或操作必须拒绝而不是放行.
func TestAllowsFailClosed(t *testing.T) {
	if authz.Allows(authz.RoleNone, authz.ActionRead) {
		t.Error("RoleNone should never be allowed anything")
	}

	if authz.Allows(authz.Role(99), authz.ActionRead) {
		t.Error("unknown role should be denied")
	}

	if authz.Allows(authz.RoleOwner, authz.Action(99)) {
		t.Error("unknown action should be denied")
	}
}

// TestParseAssignableRole owner 不可被授予.
func TestParseAssignableRole(t *testing.T) {
	if r, ok := authz.ParseAssignableRole("Editor"); !ok || r != authz.RoleEditor {
		t.Errorf("ParseAssignableRole(Editor) = %v, %v", r, ok)
	}

	if r, ok := authz.ParseAssignableRole(" viewer "); !ok || r != authz.RoleViewer {
		t.Errorf("ParseAssignableRole(viewer) = %v, %v", r, ok)
	}

	if _, ok := authz.ParseAssignableRole("owner"); ok {
		t.Error("owner must not be assignable")
	}

	if _, ok := authz.ParseAssignableRole(""); ok {
		t.Error("empty role must not parse")
	}
}
