package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
)

// newTestService 构建基于内存 sqlite 的服务底座，每个测试独立建库.
func newTestService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := &Service{dbc: &db.Client{DB: gdb}}

	stores := newDBStores(svc.dbc)
	svc.guard = authz.NewGuard(authz.NewResolver(stores, stores, stores))

	return svc
}

// seedFolder 直接写入一个文件夹行.
func seedFolder(t *testing.T, svc *Service, id, owner string, parent *string) *model.Folder {
	t.Helper()

	now := time.Now().UTC()
	f := &model.Folder{ID: id, OwnerID: owner, ParentID: parent, Name: id, CreatedAt: now, UpdatedAt: now}

	if err := svc.dbc.GetDB().Create(f).Error; err != nil {
		t.Fatalf("seed folder %s: %v", id, err)
	}

	return f
}

// seedFile 直接写入一个文件行.
func seedFile(t *testing.T, svc *Service, id, owner string, folder *string) *model.File {
	t.Helper()

	now := time.Now().UTC()
	f := &model.File{
		ID: id, OwnerID: owner, FolderID: folder, Name: id,
		Bucket: "dv-test", ObjectKey: "obj/" + id,
		CreatedAt: now, UpdatedAt: now,
	}

	if err := svc.dbc.GetDB().Create(f).Error; err != nil {
		t.Fatalf("seed file %s: %v", id, err)
	}

	return f
}

func strPtr(s string) *string { return &s }

// loadFolderRow 读回文件夹行，含回收站中的.
func loadFolderRow(t *testing.T, svc *Service, id string) *model.Folder {
	t.Helper()

	var f model.Folder
	if err := svc.dbc.GetDB().Where("id = ?", id).Take(&f).Error; err != nil {
		t.Fatalf("load folder %s: %v", id, err)
	}

	return &f
}

func loadFileRow(t *testing.T, svc *Service, id string) *model.File {
	t.Helper()

	var f model.File
	if err := svc.dbc.GetDB().Where("id = ?", id).Take(&f).Error; err != nil {
		t.Fatalf("load file %s: %v", id, err)
	}

	return &f
}

func fileRowExists(t *testing.T, svc *Service, id string) bool {
	t.Helper()

	var n int64
	if err := svc.dbc.GetDB().Model(&model.File{}).Where("id = ?", id).Count(&n).Error; err != nil {
		t.Fatalf("count file %s: %v", id, err)
	}

	return n > 0
}

func folderRowExists(t *testing.T, svc *Service, id string) bool {
	t.Helper()

	var n int64
	if err := svc.dbc.GetDB().Model(&model.Folder{}).Where("id = ?", id).Count(&n).Error; err != nil {
		t.Fatalf("count folder %s: %v", id, err)
	}

	return n > 0
}

// fakeBlobStore 可编程失败的对象存储替身.
type fakeBlobStore struct {
	failKeys map[string]bool
	removed  []string
}

func (f *fakeBlobStore) Remove(_ context.Context, _ string, objectKey string) error {
	if f.failKeys[objectKey] {
		return context.DeadlineExceeded
	}

	f.removed = append(f.removed, objectKey)

	return nil
}
