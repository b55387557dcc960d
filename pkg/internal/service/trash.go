package service

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/queue"
)

// TrashService 实现回收站生命周期：软删除、恢复、彻底删除与自动清理.
// 状态机固定为 Active -> Trashed -> Active 或 Trashed -> Purged，
// 文件夹操作按配置的级联策略向内容传播.
type TrashService struct{ *ResourceService }

// NewTrashService 创建回收站服务.
func NewTrashService(c context.Context) *TrashService {
	return &TrashService{NewResourceService(c)}
}

// cascadeScope 计算文件夹级联作用域内的子项.
// immediate 只含直接子文件；subtree 递归包含全部后代文件夹与文件.
// cond 追加到每个查询上（如 deleted_at IS NULL 或按时间戳过滤）.
func (t *TrashService) cascadeScope(dbx *gorm.DB, folderID string, cond string, args ...any) (folders []model.Folder, files []model.File, err error) {
	mode := configs.GetConfig().Trash.GetCascade()

	frontier := []string{folderID}
	for len(frontier) > 0 {
		var batch []model.File
		if err := dbx.Where("folder_id IN ?", frontier).Where(cond, args...).Find(&batch).Error; err != nil {
			return nil, nil, fault.Transient(err, "list child files")
		}

		files = append(files, batch...)

		if mode != configs.CascadeSubtree {
			break
		}

		var subs []model.Folder
		if err := dbx.Where("parent_id IN ?", frontier).Where(cond, args...).Find(&subs).Error; err != nil {
			return nil, nil, fault.Transient(err, "list child folders")
		}

		if len(subs) == 0 {
			break
		}

		folders = append(folders, subs...)

		frontier = frontier[:0]
		for i := range subs {
			frontier = append(frontier, subs[i].ID)
		}
	}

	return folders, files, nil
}

// SoftDelete 将资源移入回收站.已在回收站中是幂等的无操作.
// 文件夹按级联策略带动其内容，所有受影响的行共享同一删除时间戳，
// 恢复时以该时间戳区分"随文件夹删除的"与"此前已单独删除的".
func (t *TrashService) SoftDelete(ctx context.Context, p authz.Principal, ref authz.ResourceRef, shareToken string) (*types.TrashActionResponse, error) {
	if _, err := t.guard.Authorize(ctx, p, ref, authz.ActionWrite, shareToken); err != nil {
		return nil, err
	}

	dbx, err := t.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resp := &types.TrashActionResponse{Type: string(ref.Type), ID: ref.ID}

	switch ref.Type {
	case authz.ResourceFile:
		file, err := t.loadFile(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		if file.IsTrashed() {
			return resp, nil
		}

		if err := dbx.Model(&model.File{}).Where("id = ?", ref.ID).
			Updates(map[string]any{"deleted_at": now, "updated_at": now}).Error; err != nil {
			return nil, fault.Transient(err, "trash file")
		}

		resp.Affected = 1

	case authz.ResourceFolder:
		folder, err := t.loadFolder(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		if folder.IsTrashed() {
			return resp, nil
		}

		subFolders, subFiles, err := t.cascadeScope(dbx, ref.ID, "deleted_at IS NULL")
		if err != nil {
			return nil, err
		}

		err = dbx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&model.Folder{}).Where("id = ?", ref.ID).
				Updates(map[string]any{"deleted_at": now, "updated_at": now}).Error; err != nil {
				return err
			}

			if len(subFolders) > 0 {
				ids := folderIDs(subFolders)
				if err := tx.Model(&model.Folder{}).Where("id IN ?", ids).
					Updates(map[string]any{"deleted_at": now, "updated_at": now}).Error; err != nil {
					return err
				}
			}

			if len(subFiles) > 0 {
				ids := fileIDs(subFiles)
				if err := tx.Model(&model.File{}).Where("id IN ?", ids).
					Updates(map[string]any{"deleted_at": now, "updated_at": now}).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return nil, fault.Transient(err, "trash folder")
		}

		resp.Affected = 1 + len(subFolders) + len(subFiles)
		resp.Cascaded = cascadedItems(subFolders, subFiles, now)

	default:
		return nil, fault.NotFound("unknown resource type %q", ref.Type)
	}

	t.publishTrashed(ref, p.ID, now, resp.Cascaded)

	return resp, nil
}

// Restore 将资源移出回收站.未在回收站中是幂等的无操作.
// 级联只带回与本次删除共享时间戳的子项；若原父文件夹仍在回收站
// 或已被彻底删除，资源会被挂回根目录，避免恢复出不可见的孤儿.
func (t *TrashService) Restore(ctx context.Context, p authz.Principal, ref authz.ResourceRef, shareToken string) (*types.TrashActionResponse, error) {
	if _, err := t.guard.Authorize(ctx, p, ref, authz.ActionWrite, shareToken); err != nil {
		return nil, err
	}

	dbx, err := t.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resp := &types.TrashActionResponse{Type: string(ref.Type), ID: ref.ID}

	switch ref.Type {
	case authz.ResourceFile:
		file, err := t.loadFile(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		if !file.IsTrashed() {
			return resp, nil
		}

		updates := map[string]any{"deleted_at": nil, "updated_at": now}
		if file.FolderID != nil && !t.parentUsable(ctx, *file.FolderID) {
			updates["folder_id"] = nil
		}

		if err := dbx.Model(&model.File{}).Where("id = ?", ref.ID).Updates(updates).Error; err != nil {
			return nil, fault.Transient(err, "restore file")
		}

		resp.Affected = 1

	case authz.ResourceFolder:
		folder, err := t.loadFolder(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		if !folder.IsTrashed() {
			return resp, nil
		}

		ts := *folder.DeletedAt

		subFolders, subFiles, err := t.cascadeScope(dbx, ref.ID, "deleted_at = ?", ts)
		if err != nil {
			return nil, err
		}

		updates := map[string]any{"deleted_at": nil, "updated_at": now}
		if folder.ParentID != nil && !t.parentUsable(ctx, *folder.ParentID) {
			updates["parent_id"] = nil
		}

		err = dbx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&model.Folder{}).Where("id = ?", ref.ID).Updates(updates).Error; err != nil {
				return err
			}

			if len(subFolders) > 0 {
				if err := tx.Model(&model.Folder{}).Where("id IN ?", folderIDs(subFolders)).
					Updates(map[string]any{"deleted_at": nil, "updated_at": now}).Error; err != nil {
					return err
				}
			}

			if len(subFiles) > 0 {
				if err := tx.Model(&model.File{}).Where("id IN ?", fileIDs(subFiles)).
					Updates(map[string]any{"deleted_at": nil, "updated_at": now}).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return nil, fault.Transient(err, "restore folder")
		}

		resp.Affected = 1 + len(subFolders) + len(subFiles)
		resp.Cascaded = cascadedItems(subFolders, subFiles, ts)

	default:
		return nil, fault.NotFound("unknown resource type %q", ref.Type)
	}

	t.publishRestored(ref, p.ID, resp.Cascaded)

	return resp, nil
}

// Purge 彻底删除回收站中的资源：先回收底层对象，再删除元数据行.
//
// 单文件：对象删除尽力而为，失败记日志但元数据照删（对象存储的
// 生命周期策略会兜底回收孤儿对象）.
// 文件夹：任一子文件的对象删除失败则保留该子文件行与文件夹行，
// 返回 KindPartial 并列出未完成子项，重试同一调用可收敛.
func (t *TrashService) Purge(ctx context.Context, p authz.Principal, ref authz.ResourceRef, shareToken string) (*types.PurgeResponse, error) {
	if _, err := t.guard.Authorize(ctx, p, ref, authz.ActionHardDelete, shareToken); err != nil {
		return nil, err
	}

	dbx, err := t.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	resp := &types.PurgeResponse{Type: string(ref.Type), ID: ref.ID}

	switch ref.Type {
	case authz.ResourceFile:
		file, err := t.loadFile(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		if !file.IsTrashed() {
			return nil, fault.Conflict("file is not in trash")
		}

		t.removeBlob(ctx, file)

		if err := dbx.Where("id = ?", file.ID).Delete(&model.File{}).Error; err != nil {
			return nil, fault.Transient(err, "purge file")
		}

		t.dropSharing(ctx, dbx, ref)

		resp.Purged = 1
		resp.Complete = true
		metrics.TrashPurged.WithLabelValues("file").Inc()
		t.publishPurged(ref, p.ID, []queue.ResourceRef{eventRef(ref)}, nil)

		return resp, nil

	case authz.ResourceFolder:
		folder, err := t.loadFolder(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

		if !folder.IsTrashed() {
			return nil, fault.Conflict("folder is not in trash")
		}

		return t.purgeFolder(ctx, dbx, p, ref)

	default:
		return nil, fault.NotFound("unknown resource type %q", ref.Type)
	}
}

// purgeFolder 级联彻底删除文件夹.文件夹行的删除以全部子项成功为前提.
func (t *TrashService) purgeFolder(ctx context.Context, dbx *gorm.DB, p authz.Principal, ref authz.ResourceRef) (*types.PurgeResponse, error) {
	subFolders, subFiles, err := t.cascadeScope(dbx, ref.ID, "deleted_at IS NOT NULL")
	if err != nil {
		return nil, err
	}

	resp := &types.PurgeResponse{Type: string(ref.Type), ID: ref.ID}

	var (
		purged []queue.ResourceRef
		failed []string
	)

	for i := range subFiles {
		f := &subFiles[i]
		if !t.removeBlob(ctx, f) {
			failed = append(failed, "file/"+f.ID)
			continue
		}

		if err := dbx.Where("id = ?", f.ID).Delete(&model.File{}).Error; err != nil {
			failed = append(failed, "file/"+f.ID)
			continue
		}

		t.dropSharing(ctx, dbx, authz.ResourceRef{Type: authz.ResourceFile, ID: f.ID})
		purged = append(purged, queue.ResourceRef{Type: "file", ID: f.ID})
	}

	// 子文件夹行只有在其下没有任何残留子项时才可删
	if len(failed) == 0 {
		for i := len(subFolders) - 1; i >= 0; i-- {
			sf := &subFolders[i]
			if err := dbx.Where("id = ?", sf.ID).Delete(&model.Folder{}).Error; err != nil {
				failed = append(failed, "folder/"+sf.ID)
				continue
			}

			t.dropSharing(ctx, dbx, authz.ResourceRef{Type: authz.ResourceFolder, ID: sf.ID})
			purged = append(purged, queue.ResourceRef{Type: "folder", ID: sf.ID})
		}
	}

	resp.Purged = len(purged)
	resp.Failed = failed

	for _, pr := range purged {
		metrics.TrashPurged.WithLabelValues(pr.Type).Inc()
	}

	if len(failed) > 0 {
		// 保留文件夹行，重试同一 purge 可从断点收敛
		t.publishPurged(ref, p.ID, purged, failed)

		return resp, fault.Partial(failed, "purge of folder %s incomplete", ref.ID)
	}

	if err := dbx.Where("id = ?", ref.ID).Delete(&model.Folder{}).Error; err != nil {
		return nil, fault.Transient(err, "purge folder")
	}

	t.dropSharing(ctx, dbx, ref)

	resp.Purged++
	resp.Complete = true
	metrics.TrashPurged.WithLabelValues("folder").Inc()

	purged = append(purged, eventRef(ref))
	t.publishPurged(ref, p.ID, purged, nil)

	return resp, nil
}

// List 列出调用方自己的回收站内容，按删除时间倒序.
func (t *TrashService) List(ctx context.Context, p authz.Principal) (*types.TrashListResponse, error) {
	if p.IsAnonymous() {
		return nil, fault.Forbidden("authentication required")
	}

	dbx, err := t.gormDB(ctx)
	if err != nil {
		return nil, err
	}

	var folders []model.Folder
	if err := dbx.Where("owner_id = ? AND deleted_at IS NOT NULL", p.ID).
		Order("deleted_at DESC").Find(&folders).Error; err != nil {
		return nil, fault.Transient(err, "list trashed folders")
	}

	var files []model.File
	if err := dbx.Where("owner_id = ? AND deleted_at IS NOT NULL", p.ID).
		Order("deleted_at DESC").Find(&files).Error; err != nil {
		return nil, fault.Transient(err, "list trashed files")
	}

	items := make([]types.TrashedItem, 0, len(folders)+len(files))
	for i := range folders {
		items = append(items, types.TrashedItem{
			Type: "folder", ID: folders[i].ID, Name: folders[i].Name,
			TrashedAt: folders[i].DeletedAt.UTC().Format(time.RFC3339),
		})
	}

	for i := range files {
		items = append(items, types.TrashedItem{
			Type: "file", ID: files[i].ID, Name: files[i].Name,
			TrashedAt: files[i].DeletedAt.UTC().Format(time.RFC3339),
		})
	}

	return &types.TrashListResponse{Total: len(items), Items: items}, nil
}

// AutoClean 彻底删除早于 before 进入回收站的记录，由调度器周期触发.
// 对象删除失败的文件行保留，下一轮清理重试.
func (t *TrashService) AutoClean(ctx context.Context, before time.Time) (int, error) {
	return t.cleanExpired(ctx, before, "")
}

// CleanOwn 清理调用方自己的过期回收站记录.
// 与 AutoClean 共用实现，但作用域限定在 owner 本人的行，
// 手动触发的清理绝不触碰他人资源.
func (t *TrashService) CleanOwn(ctx context.Context, p authz.Principal, before time.Time) (int, error) {
	if p.IsAnonymous() {
		return 0, fault.Forbidden("authentication required")
	}

	return t.cleanExpired(ctx, before, p.ID)
}

// cleanExpired ownerID 为空表示全库（调度任务），否则只清该所有者的行.
func (t *TrashService) cleanExpired(ctx context.Context, before time.Time, ownerID string) (int, error) {
	if before.IsZero() {
		return 0, fault.Conflict("before required")
	}

	dbx, err := t.gormDB(ctx)
	if err != nil {
		return 0, err
	}

	expired := func(q *gorm.DB) *gorm.DB {
		q = q.Where("deleted_at IS NOT NULL AND deleted_at < ?", before)
		if ownerID != "" {
			q = q.Where("owner_id = ?", ownerID)
		}

		return q
	}

	var files []model.File
	if err := expired(dbx.Model(&model.File{})).Find(&files).Error; err != nil {
		return 0, fault.Transient(err, "list expired files")
	}

	cleaned := 0

	for i := range files {
		f := &files[i]
		if !t.removeBlob(ctx, f) {
			continue
		}

		if err := dbx.Where("id = ?", f.ID).Delete(&model.File{}).Error; err != nil {
			continue
		}

		t.dropSharing(ctx, dbx, authz.ResourceRef{Type: authz.ResourceFile, ID: f.ID})
		metrics.TrashPurged.WithLabelValues("file").Inc()
		cleaned++
	}

	// 过期文件夹：其中仍有残留文件的留给下一轮
	var folders []model.Folder
	if err := expired(dbx.Model(&model.Folder{})).Find(&folders).Error; err != nil {
		return cleaned, fault.Transient(err, "list expired folders")
	}

	for i := range folders {
		fo := &folders[i]

		var remaining int64
		if err := dbx.Model(&model.File{}).Where("folder_id = ?", fo.ID).Count(&remaining).Error; err != nil || remaining > 0 {
			continue
		}

		if err := dbx.Where("id = ?", fo.ID).Delete(&model.Folder{}).Error; err != nil {
			continue
		}

		t.dropSharing(ctx, dbx, authz.ResourceRef{Type: authz.ResourceFolder, ID: fo.ID})
		metrics.TrashPurged.WithLabelValues("folder").Inc()
		cleaned++
	}

	if cleaned > 0 {
		nlog.Logger().Info().Int("cleaned", cleaned).Time("before", before).Msg("trash auto clean finished")
	}

	return cleaned, nil
}

// ---- 内部辅助 ----

// removeBlob 删除文件的底层对象，返回是否成功.对象本就不存在视为成功.
func (t *TrashService) removeBlob(ctx context.Context, f *model.File) bool {
	if t.blobs == nil || f.ObjectKey == "" {
		return true
	}

	if err := t.blobs.Remove(ctx, f.Bucket, f.ObjectKey); err != nil {
		nlog.Logger().Warn().Err(err).Str("object", f.ObjectKey).Msg("remove blob failed")

		return false
	}

	return true
}

// dropSharing 资源彻底删除后清掉它的链接与授权记录，失败仅记日志.
func (t *TrashService) dropSharing(ctx context.Context, dbx *gorm.DB, ref authz.ResourceRef) {
	if err := dbx.Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Delete(&model.ShareLink{}).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("resource", ref.ID).Msg("drop share link failed")
	}

	if err := dbx.Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Delete(&model.Grant{}).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("resource", ref.ID).Msg("drop grants failed")
	}
}

func (t *TrashService) publishTrashed(ref authz.ResourceRef, actor string, at time.Time, cascaded []types.TrashedItem) {
	t.publishEvent(configs.GetConfig().Events.Resource.Trashed, queue.TopicResourceTrashed, func(pub message.Publisher) error {
		return queue.PublishResourceTrashed(pub, queue.ResourceTrashedPayload{
			Resource:  eventRef(ref),
			Actor:     actor,
			TrashedAt: at,
			Cascaded:  itemRefs(cascaded),
		}, queue.WithProducer(producerName))
	})
}

func (t *TrashService) publishRestored(ref authz.ResourceRef, actor string, cascaded []types.TrashedItem) {
	t.publishEvent(configs.GetConfig().Events.Resource.Restored, queue.TopicResourceRestored, func(pub message.Publisher) error {
		return queue.PublishResourceRestored(pub, queue.ResourceRestoredPayload{
			Resource: eventRef(ref),
			Actor:    actor,
			Cascaded: itemRefs(cascaded),
		}, queue.WithProducer(producerName))
	})
}

func (t *TrashService) publishPurged(ref authz.ResourceRef, actor string, purged []queue.ResourceRef, failed []string) {
	t.publishEvent(configs.GetConfig().Events.Resource.Purged, queue.TopicResourcePurged, func(pub message.Publisher) error {
		return queue.PublishResourcePurged(pub, queue.ResourcePurgedPayload{
			Resource: eventRef(ref),
			Actor:    actor,
			Purged:   purged,
			Failed:   failed,
		}, queue.WithProducer(producerName))
	})
}

// parentUsable 报告父文件夹是否存在且不在回收站.
func (t *TrashService) parentUsable(ctx context.Context, parentID string) bool {
	folder, err := t.loadFolder(ctx, parentID)
	if err != nil {
		return false
	}

	return !folder.IsTrashed()
}

func folderIDs(fs []model.Folder) []string {
	ids := make([]string, 0, len(fs))
	for i := range fs {
		ids = append(ids, fs[i].ID)
	}

	return ids
}

func fileIDs(fs []model.File) []string {
	ids := make([]string, 0, len(fs))
	for i := range fs {
		ids = append(ids, fs[i].ID)
	}

	return ids
}

func cascadedItems(folders []model.Folder, files []model.File, ts time.Time) []types.TrashedItem {
	items := make([]types.TrashedItem, 0, len(folders)+len(files))
	for i := range folders {
		items = append(items, types.TrashedItem{
			Type: "folder", ID: folders[i].ID, Name: folders[i].Name,
			TrashedAt: ts.UTC().Format(time.RFC3339),
		})
	}

	for i := range files {
		items = append(items, types.TrashedItem{
			Type: "file", ID: files[i].ID, Name: files[i].Name,
			TrashedAt: ts.UTC().Format(time.RFC3339),
		})
	}

	return items
}

func itemRefs(items []types.TrashedItem) []queue.ResourceRef {
	refs := make([]queue.ResourceRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, queue.ResourceRef{Type: it.Type, ID: it.ID})
	}

	return refs
}
