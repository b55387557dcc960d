package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/queue"
)

// ResourceService 负责资源树的创建、查询、移动与下载.
type ResourceService struct{ *Service }

// NewResourceService 创建资源服务.
func NewResourceService(c context.Context) *ResourceService {
	return &ResourceService{newService(c)}
}

// CreateFolder 创建文件夹.
// 根目录下创建只要求已认证；在某文件夹下创建要求对父文件夹的写权限，
// 新文件夹归属父文件夹的所有者（资源树内所有权一致）.
func (r *ResourceService) CreateFolder(ctx context.Context, p authz.Principal, req *types.CreateFolderRequest, shareToken string) (*types.FolderInfo, error) {
	ownerID, parentID, err := r.resolvePlacement(ctx, p, req.ParentID, shareToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	folder := &model.Folder{
		ID:        newResourceID(now),
		OwnerID:   ownerID,
		ParentID:  parentID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	dbx, err := r.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	if err := dbx.Create(folder).Error; err != nil {
		return nil, fault.Transient(err, "create folder")
	}

	ref := authz.ResourceRef{Type: authz.ResourceFolder, ID: folder.ID}
	r.publishCreated(ref, folder.OwnerID, req.ParentID, folder.Name)

	return folderInfo(folder), nil
}

// RegisterFile 登记文件元数据并返回预签名上传地址，客户端据此直传对象存储.
func (r *ResourceService) RegisterFile(ctx context.Context, p authz.Principal, req *types.RegisterFileRequest, shareToken string) (*types.RegisterFileResponse, error) {
	ownerID, parentID, err := r.resolvePlacement(ctx, p, req.ParentID, shareToken)
	if err != nil {
		return nil, err
	}

	if r.s3c == nil {
		return nil, fault.Transient(nil, "object storage not initialized")
	}

	now := time.Now().UTC()
	id := newResourceID(now)
	bucket := r.s3c.GetConfig().BucketName
	objectKey := fmt.Sprintf("%s/%s/%s_%s", ownerID, now.Format("2006/01"), id, req.Name)

	file := &model.File{
		ID:          id,
		OwnerID:     ownerID,
		FolderID:    parentID,
		Name:        req.Name,
		Size:        req.Size,
		ContentType: req.ContentType,
		Bucket:      bucket,
		ObjectKey:   objectKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	dbx, err := r.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	if err := dbx.Create(file).Error; err != nil {
		return nil, fault.Transient(err, "create file")
	}

	putURL, err := r.s3c.PresignedPutObject(ctx, bucket, objectKey, DefaultPresignedOpTimeout)
	if err != nil {
		return nil, fault.Transient(err, "presign put for %s", objectKey)
	}

	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: file.ID}
	r.publishCreated(ref, file.OwnerID, req.ParentID, file.Name)

	return &types.RegisterFileResponse{
		File:      fileInfo(file),
		PutURL:    putURL.String(),
		ExpiresIn: int(DefaultPresignedOpTimeout.Seconds()),
	}, nil
}

// Download 为文件生成预签名下载地址.持有有效链接令牌的匿名访问者同样可用.
func (r *ResourceService) Download(ctx context.Context, p authz.Principal, fileID, shareToken string) (*types.DownloadFileResponse, error) {
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: fileID}
	if _, err := r.guard.Authorize(ctx, p, ref, authz.ActionRead, shareToken); err != nil {
		return nil, err
	}

	file, err := r.loadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if file.IsTrashed() {
		return nil, fault.Conflict("file is in trash")
	}

	if r.s3c == nil {
		return nil, fault.Transient(nil, "object storage not initialized")
	}

	u, err := r.s3c.PresignedGetObject(ctx, file.Bucket, file.ObjectKey, DefaultPresignedOpTimeout, nil)
	if err != nil {
		return nil, fault.Transient(err, "presign get for %s", file.ObjectKey)
	}

	return &types.DownloadFileResponse{
		FileID:    fileID,
		GetURL:    u.String(),
		ExpiresIn: int(DefaultPresignedOpTimeout.Seconds()),
	}, nil
}

// StatFolder 查询文件夹信息.
func (r *ResourceService) StatFolder(ctx context.Context, p authz.Principal, folderID, shareToken string) (*types.FolderInfo, error) {
	ref := authz.ResourceRef{Type: authz.ResourceFolder, ID: folderID}
	if _, err := r.guard.Authorize(ctx, p, ref, authz.ActionRead, shareToken); err != nil {
		return nil, err
	}

	folder, err := r.loadFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	return folderInfo(folder), nil
}

// StatFile 查询文件信息.
func (r *ResourceService) StatFile(ctx context.Context, p authz.Principal, fileID, shareToken string) (*types.FileInfo, error) {
	ref := authz.ResourceRef{Type: authz.ResourceFile, ID: fileID}
	if _, err := r.guard.Authorize(ctx, p, ref, authz.ActionRead, shareToken); err != nil {
		return nil, err
	}

	file, err := r.loadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	info := fileInfo(file)

	return &info, nil
}

// Move 移动或重命名资源.
// 目标父文件夹必须属于同一所有者且不在回收站；把文件夹移入自己的子树是冲突.
func (r *ResourceService) Move(ctx context.Context, p authz.Principal, ref authz.ResourceRef, req *types.MoveResourceRequest, shareToken string) error {
	if req.NewParentID == nil && req.NewName == "" {
		return fault.Conflict("nothing to change")
	}

	if _, err := r.guard.Authorize(ctx, p, ref, authz.ActionWrite, shareToken); err != nil {
		return err
	}

	dbx, err := r.gormDB(ctx)
	if err != nil {
		return err
	}

	switch ref.Type {
	case authz.ResourceFolder:
		return r.moveFolder(ctx, dbx, ref, req)
	case authz.ResourceFile:
		return r.moveFile(ctx, dbx, ref, req)
	default:
		return fault.NotFound("unknown resource type %q", ref.Type)
	}
}

func (r *ResourceService) moveFolder(ctx context.Context, dbx *gorm.DB, ref authz.ResourceRef, req *types.MoveResourceRequest) error {
	folder, err := r.loadFolder(ctx, ref.ID)
	if err != nil {
		return err
	}

	if folder.IsTrashed() {
		return fault.Conflict("folder is in trash")
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	oldParent := derefOr(folder.ParentID, "")
	newParent := oldParent

	if req.NewParentID != nil {
		target := *req.NewParentID
		if err := r.checkMoveTarget(ctx, folder.OwnerID, ref, target); err != nil {
			return err
		}

		newParent = target
		updates["parent_id"] = nullableID(target)
	}

	if req.NewName != "" {
		updates["name"] = req.NewName
	}

	if err := dbx.Model(&model.Folder{}).Where("id = ?", folder.ID).Updates(updates).Error; err != nil {
		return fault.Transient(err, "move folder")
	}

	r.publishMoved(ref, folder.OwnerID, oldParent, newParent, req.NewName)

	return nil
}

func (r *ResourceService) moveFile(ctx context.Context, dbx *gorm.DB, ref authz.ResourceRef, req *types.MoveResourceRequest) error {
	file, err := r.loadFile(ctx, ref.ID)
	if err != nil {
		return err
	}

	if file.IsTrashed() {
		return fault.Conflict("file is in trash")
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	oldParent := derefOr(file.FolderID, "")
	newParent := oldParent

	if req.NewParentID != nil {
		target := *req.NewParentID
		if err := r.checkMoveTarget(ctx, file.OwnerID, ref, target); err != nil {
			return err
		}

		newParent = target
		updates["folder_id"] = nullableID(target)
	}

	if req.NewName != "" {
		updates["name"] = req.NewName
	}

	if err := dbx.Model(&model.File{}).Where("id = ?", file.ID).Updates(updates).Error; err != nil {
		return fault.Transient(err, "move file")
	}

	r.publishMoved(ref, file.OwnerID, oldParent, newParent, req.NewName)

	return nil
}

// checkMoveTarget 校验移动目标：必须是同所有者、不在回收站的文件夹，
// 且（对文件夹移动）不能落在被移动文件夹自己的子树里.
func (r *ResourceService) checkMoveTarget(ctx context.Context, ownerID string, moving authz.ResourceRef, targetID string) error {
	if targetID == "" {
		// 移到根目录总是合法
		return nil
	}

	target, err := r.loadFolder(ctx, targetID)
	if err != nil {
		if fault.Is(err, fault.KindNotFound) {
			return fault.Conflict("target folder %s not found", targetID)
		}

		return err
	}

	if target.OwnerID != ownerID {
		return fault.Conflict("cannot move across owners")
	}

	if target.IsTrashed() {
		return fault.Conflict("target folder is in trash")
	}

	if moving.Type != authz.ResourceFolder {
		return nil
	}

	// 沿目标的祖先链向上走，遇到被移动的文件夹即成环
	const maxDepth = 1024

	cur := target
	for range maxDepth {
		if cur.ID == moving.ID {
			return fault.Conflict("cannot move folder into its own subtree")
		}

		if cur.ParentID == nil {
			return nil
		}

		cur, err = r.loadFolder(ctx, *cur.ParentID)
		if err != nil {
			return err
		}
	}

	return fault.Conflict("folder tree too deep")
}

// ListChildren 列出文件夹的直接子项，不含回收站中的资源.
// folderID 为空表示列出调用方自己的根目录（仅限已认证用户）.
func (r *ResourceService) ListChildren(ctx context.Context, p authz.Principal, folderID, shareToken string) (*types.ListChildrenResponse, error) {
	var ownerID string

	if folderID == "" {
		if p.IsAnonymous() {
			return nil, fault.Forbidden("authentication required to list root")
		}

		ownerID = p.ID
	} else {
		ref := authz.ResourceRef{Type: authz.ResourceFolder, ID: folderID}
		if _, err := r.guard.Authorize(ctx, p, ref, authz.ActionRead, shareToken); err != nil {
			return nil, err
		}

		folder, err := r.loadFolder(ctx, folderID)
		if err != nil {
			return nil, err
		}

		ownerID = folder.OwnerID
	}

	dbx, err := r.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	parentCond := func(q *gorm.DB, col string) *gorm.DB {
		if folderID == "" {
			return q.Where(col+" IS NULL AND owner_id = ?", ownerID)
		}

		return q.Where(col+" = ?", folderID)
	}

	var folders []model.Folder
	if err := parentCond(dbx.Model(&model.Folder{}), "parent_id").
		Where("deleted_at IS NULL").Order("name").Find(&folders).Error; err != nil {
		return nil, fault.Transient(err, "list folders")
	}

	var files []model.File
	if err := parentCond(dbx.Model(&model.File{}), "folder_id").
		Where("deleted_at IS NULL").Order("name").Find(&files).Error; err != nil {
		return nil, fault.Transient(err, "list files")
	}

	resp := &types.ListChildrenResponse{
		Folders: make([]types.FolderInfo, 0, len(folders)),
		Files:   make([]types.FileInfo, 0, len(files)),
	}
	for i := range folders {
		resp.Folders = append(resp.Folders, *folderInfo(&folders[i]))
	}

	for i := range files {
		resp.Files = append(resp.Files, fileInfo(&files[i]))
	}

	resp.Total = len(resp.Folders) + len(resp.Files)

	return resp, nil
}

// ---- 内部辅助 ----

// resolvePlacement 校验创建位置并确定新资源的所有者.
func (r *ResourceService) resolvePlacement(ctx context.Context, p authz.Principal, parentID, shareToken string) (ownerID string, parent *string, err error) {
	if parentID == "" {
		if p.IsAnonymous() {
			return "", nil, fault.Forbidden("authentication required to create at root")
		}

		return p.ID, nil, nil
	}

	ref := authz.ResourceRef{Type: authz.ResourceFolder, ID: parentID}
	if _, err := r.guard.Authorize(ctx, p, ref, authz.ActionWrite, shareToken); err != nil {
		return "", nil, err
	}

	folder, err := r.loadFolder(ctx, parentID)
	if err != nil {
		return "", nil, err
	}

	if folder.IsTrashed() {
		return "", nil, fault.Conflict("parent folder is in trash")
	}

	return folder.OwnerID, nullableID(parentID), nil
}

func (r *ResourceService) gormDB(ctx context.Context) (*gorm.DB, error) {
	if r.dbc == nil || r.dbc.GetDB() == nil {
		return nil, fault.Transient(nil, "database not initialized")
	}

	return r.dbc.GetDB().WithContext(ctx), nil
}

func (r *ResourceService) loadFolder(ctx context.Context, id string) (*model.Folder, error) {
	dbx, err := r.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	var folder model.Folder
	if err := dbx.Where("id = ?", id).Take(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("folder not found")
		}

		return nil, fault.Transient(err, "load folder")
	}

	return &folder, nil
}

func (r *ResourceService) loadFile(ctx context.Context, id string) (*model.File, error) {
	dbx, err := r.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	var file model.File
	if err := dbx.Where("id = ?", id).Take(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("file not found")
		}

		return nil, fault.Transient(err, "load file")
	}

	return &file, nil
}

func (r *ResourceService) publishCreated(ref authz.ResourceRef, ownerID, parentID, name string) {
	r.publishEvent(configs.GetConfig().Events.Resource.Created, queue.TopicResourceCreated, func(pub message.Publisher) error {
		return queue.PublishResourceCreated(pub, queue.ResourceCreatedPayload{
			Resource: eventRef(ref),
			OwnerID:  ownerID,
			ParentID: parentID,
			Name:     name,
		}, queue.WithProducer(producerName))
	})
}

func (r *ResourceService) publishMoved(ref authz.ResourceRef, ownerID, oldParent, newParent, newName string) {
	r.publishEvent(configs.GetConfig().Events.Resource.Moved, queue.TopicResourceMoved, func(pub message.Publisher) error {
		return queue.PublishResourceMoved(pub, queue.ResourceMovedPayload{
			Resource:  eventRef(ref),
			OwnerID:   ownerID,
			OldParent: oldParent,
			NewParent: newParent,
			NewName:   newName,
		}, queue.WithProducer(producerName))
	})
}

// folderInfo 转换为对外 DTO.
func folderInfo(f *model.Folder) *types.FolderInfo {
	return &types.FolderInfo{
		FolderID:  f.ID,
		Name:      f.Name,
		ParentID:  derefOr(f.ParentID, ""),
		OwnerID:   f.OwnerID,
		CreatedAt: f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// fileInfo 转换为对外 DTO.
func fileInfo(f *model.File) types.FileInfo {
	return types.FileInfo{
		FileID:      f.ID,
		Name:        f.Name,
		ParentID:    derefOr(f.FolderID, ""),
		OwnerID:     f.OwnerID,
		Size:        f.Size,
		ContentType: f.ContentType,
		CreatedAt:   f.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// nullableID 空字符串映射为 NULL（根目录）.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}

	return &id
}

func derefOr(p *string, def string) string {
	if p == nil {
		return def
	}

	return *p
}
