package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// ListTrash 获取回收站列表.
//
//	@Summary	回收站列表
//	@Tags		回收站
//	@Produce	json
//	@Success	200	{object}	types.TrashListResponse
//	@Failure	403	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/v1/trash [get]
func ListTrash(c *gin.Context) {
	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.List(c.Request.Context(), principal(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// TrashResource 将资源移入回收站（文件夹按级联策略带动内容）.
//
//	@Summary	软删除资源
//	@Tags		回收站
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Param		t		query		string	false	"链接令牌"
//	@Success	200		{object}	types.TrashActionResponse
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id} [delete]
func TrashResource(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.SoftDelete(c.Request.Context(), principal(c), ref, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RestoreResource 从回收站恢复资源.
//
//	@Summary	恢复资源
//	@Tags		回收站
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Success	200		{object}	types.TrashActionResponse
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/trash/{type}/{id}/restore [post]
func RestoreResource(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.Restore(c.Request.Context(), principal(c), ref, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PurgeResource 彻底删除回收站中的资源.
// 级联部分失败时返回 207，failed 列出未完成子项，重试同一请求可收敛.
//
//	@Summary	彻底删除资源
//	@Tags		回收站
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Success	200		{object}	types.PurgeResponse
//	@Failure	207		{object}	map[string]any
//	@Failure	404		{object}	map[string]string
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/trash/{type}/{id} [delete]
func PurgeResource(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	svc := service.NewTrashService(c.Request.Context())

	resp, err := svc.Purge(c.Request.Context(), principal(c), ref, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AutoCleanTrash 按时间界限清理调用方自己的过期回收站记录.
// 全库清理只由调度任务执行，不经此路由.
//
//	@Summary	清理自己的过期回收站记录
//	@Tags		回收站
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.TrashAutoCleanRequest	false	"清理条件"
//	@Success	200		{object}	map[string]int
//	@Failure	400		{object}	map[string]string
//	@Failure	403		{object}	map[string]string
//	@Router		/api/v1/trash/auto-clean [post]
func AutoCleanTrash(c *gin.Context) {
	var req types.TrashAutoCleanRequest

	_ = c.ShouldBindJSON(&req)

	before, ok := req.ParseBefore()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "before/days required"})
		return
	}

	svc := service.NewTrashService(c.Request.Context())

	n, err := svc.CleanOwn(c.Request.Context(), principal(c), before)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleaned": n})
}
