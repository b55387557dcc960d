package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/rule"
)

// CreateFolder 创建文件夹.
//
//	@Summary	创建文件夹
//	@Tags		资源
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.CreateFolderRequest	true	"文件夹参数"
//	@Param		t		query		string						false	"链接令牌"
//	@Success	201		{object}	types.FolderInfo
//	@Failure	400		{object}	map[string]string
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/folders [post]
func CreateFolder(c *gin.Context) {
	var req types.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	info, err := svc.CreateFolder(c.Request.Context(), principal(c), &req, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, info)
}

// RegisterFile 登记文件并获取预签名上传地址.
//
//	@Summary	登记文件（预签名直传）
//	@Tags		资源
//	@Accept		json
//	@Produce	json
//	@Param		body	body		types.RegisterFileRequest	true	"文件参数"
//	@Param		t		query		string						false	"链接令牌"
//	@Success	201		{object}	types.RegisterFileResponse
//	@Failure	400		{object}	map[string]string
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/files [post]
func RegisterFile(c *gin.Context) {
	var req types.RegisterFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	resp, err := svc.RegisterFile(c.Request.Context(), principal(c), &req, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// DownloadFile 获取文件的预签名下载地址.
//
//	@Summary	下载文件（预签名）
//	@Tags		资源
//	@Produce	json
//	@Param		id	path		string	true	"文件 ID"
//	@Param		t	query		string	false	"链接令牌"
//	@Success	200	{object}	types.DownloadFileResponse
//	@Failure	404	{object}	map[string]string
//	@Failure	409	{object}	map[string]string
//	@Router		/api/v1/files/{id}/download [get]
func DownloadFile(c *gin.Context) {
	svc := service.NewResourceService(c.Request.Context())

	resp, err := svc.Download(c.Request.Context(), principal(c), c.Param("id"), shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StatResource 查询资源信息.
//
//	@Summary	资源详情
//	@Tags		资源
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Param		t		query		string	false	"链接令牌"
//	@Success	200		{object}	types.FileInfo
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id} [get]
func StatResource(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	if ref.Type == authz.ResourceFolder {
		info, err := svc.StatFolder(c.Request.Context(), principal(c), ref.ID, shareToken(c))
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, info)

		return
	}

	info, err := svc.StatFile(c.Request.Context(), principal(c), ref.ID, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// MoveResource 移动或重命名资源.
//
//	@Summary	移动/重命名资源
//	@Tags		资源
//	@Accept		json
//	@Produce	json
//	@Param		type	path		string						true	"file 或 folder"
//	@Param		id		path		string						true	"资源 ID"
//	@Param		body	body		types.MoveResourceRequest	true	"移动参数"
//	@Param		t		query		string						false	"链接令牌"
//	@Success	200		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Failure	409		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id} [patch]
func MoveResource(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	var req types.MoveResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	if err := svc.Move(c.Request.Context(), principal(c), ref, &req, shareToken(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "moved"})
}

// ListChildren 列出文件夹的直接子项.
//
//	@Summary	文件夹内容
//	@Tags		资源
//	@Produce	json
//	@Param		id	path		string	true	"文件夹 ID，root 表示自己的根目录"
//	@Param		t	query		string	false	"链接令牌"
//	@Success	200	{object}	types.ListChildrenResponse
//	@Failure	404	{object}	map[string]string
//	@Router		/api/v1/folders/{id}/children [get]
func ListChildren(c *gin.Context) {
	folderID := c.Param("id")
	if folderID == "root" {
		folderID = ""
	}

	svc := service.NewResourceService(c.Request.Context())

	resp, err := svc.ListChildren(c.Request.Context(), principal(c), folderID, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
