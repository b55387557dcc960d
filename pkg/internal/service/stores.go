package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
)

// dbStores 基于 gorm 实现授权解析所需的三个读取契约.
// 错误翻译规则固定：记录不存在是 KindNotFound（仅对资源本体），
// 其他数据库错误一律 KindTransient，解析层绝不把故障当成"无授权".
type dbStores struct {
	dbc *db.Client
}

func newDBStores(dbc *db.Client) *dbStores { return &dbStores{dbc: dbc} }

func (s *dbStores) db(ctx context.Context) (*gorm.DB, error) {
	if s.dbc == nil || s.dbc.GetDB() == nil {
		return nil, fault.Transient(nil, "database not initialized")
	}

	return s.dbc.GetDB().WithContext(ctx), nil
}

// GetOwner 查询资源所有者.回收站中的资源同样可见：授权解析不关心回收站状态.
func (s *dbStores) GetOwner(ctx context.Context, ref authz.ResourceRef) (string, error) {
	dbx, err := s.db(ctx)
	if err != nil {
		return "", err
	}

	var row struct{ OwnerID string }

	q := dbx.Where("id = ?", ref.ID).Select("owner_id")

	switch ref.Type {
	case authz.ResourceFolder:
		err = q.Model(&model.Folder{}).Take(&row).Error
	case authz.ResourceFile:
		err = q.Model(&model.File{}).Take(&row).Error
	default:
		return "", fault.NotFound("unknown resource type %q", ref.Type)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fault.NotFound("%s not found", ref.Type)
	}

	if err != nil {
		return "", fault.Transient(err, "load %s owner", ref.Type)
	}

	return row.OwnerID, nil
}

// GetGrant 查询 (资源, 邮箱) 的授权角色，未命中返回 ok=false.
func (s *dbStores) GetGrant(ctx context.Context, ref authz.ResourceRef, email string) (authz.Role, bool, error) {
	dbx, err := s.db(ctx)
	if err != nil {
		return authz.RoleNone, false, err
	}

	var g model.Grant

	err = dbx.
		Where("resource_type = ? AND resource_id = ? AND email = ?", string(ref.Type), ref.ID, strings.ToLower(email)).
		Take(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authz.RoleNone, false, nil
	}

	if err != nil {
		return authz.RoleNone, false, fault.Transient(err, "load grant")
	}

	role, ok := authz.ParseAssignableRole(g.Role)
	if !ok {
		// 脏数据按无授权处理，宁缺毋滥
		return authz.RoleNone, false, nil
	}

	return role, true, nil
}

// GetLink 查询资源当前的分享链接，未创建返回 ok=false.
// 过期判定留给解析层，这里只负责取数.
func (s *dbStores) GetLink(ctx context.Context, ref authz.ResourceRef) (authz.LinkInfo, bool, error) {
	dbx, err := s.db(ctx)
	if err != nil {
		return authz.LinkInfo{}, false, err
	}

	var l model.ShareLink

	err = dbx.
		Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Take(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return authz.LinkInfo{}, false, nil
	}

	if err != nil {
		return authz.LinkInfo{}, false, fault.Transient(err, "load share link")
	}

	role, ok := authz.ParseAssignableRole(l.Role)
	if !ok {
		return authz.LinkInfo{}, false, nil
	}

	return authz.LinkInfo{Token: l.Token, Role: role, ExpiresAt: l.ExpiresAt}, true, nil
}
