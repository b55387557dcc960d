package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/rule"
)

// UpsertLink 创建或轮换资源的分享链接.
// 再次调用会生成新令牌并使旧令牌失效.
//
//	@Summary	创建/轮换分享链接
//	@Tags		分享
//	@Accept		json
//	@Produce	json
//	@Param		type	path		string					true	"file 或 folder"
//	@Param		id		path		string					true	"资源 ID"
//	@Param		body	body		types.UpsertLinkRequest	true	"链接参数"
//	@Success	200		{object}	types.UpsertLinkResponse
//	@Failure	400		{object}	map[string]string
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id}/link [put]
func UpsertLink(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	var req types.UpsertLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewShareService(c.Request.Context())

	resp, err := svc.UpsertLink(c.Request.Context(), principal(c), ref, &req, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DescribeLink 查看资源当前的分享链接.
//
//	@Summary	查看分享链接
//	@Tags		分享
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Success	200		{object}	types.ShareLinkInfo
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id}/link [get]
func DescribeLink(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	info, err := svc.DescribeLink(c.Request.Context(), principal(c), ref, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// RevokeLink 撤销资源的分享链接（幂等）.
//
//	@Summary	撤销分享链接
//	@Tags		分享
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Success	200		{object}	map[string]string
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id}/link [delete]
func RevokeLink(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	if err := svc.RevokeLink(c.Request.Context(), principal(c), ref, shareToken(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "revoked"})
}

// UpsertGrant 为指定邮箱授予或更新资源角色.
//
//	@Summary	授予/更新邮箱授权
//	@Tags		分享
//	@Accept		json
//	@Produce	json
//	@Param		type	path		string						true	"file 或 folder"
//	@Param		id		path		string						true	"资源 ID"
//	@Param		body	body		types.UpsertGrantRequest	true	"授权参数"
//	@Success	200		{object}	types.GrantInfo
//	@Failure	400		{object}	map[string]string
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id}/grants [put]
func UpsertGrant(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	var req types.UpsertGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := service.NewShareService(c.Request.Context())

	info, err := svc.UpsertGrant(c.Request.Context(), principal(c), ref, &req, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// ListGrants 列出资源的全部邮箱授权.
//
//	@Summary	授权列表
//	@Tags		分享
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Success	200		{object}	types.ListGrantsResponse
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id}/grants [get]
func ListGrants(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	svc := service.NewShareService(c.Request.Context())

	resp, err := svc.ListGrants(c.Request.Context(), principal(c), ref, shareToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RevokeGrant 撤销指定邮箱的授权（幂等）.
//
//	@Summary	撤销邮箱授权
//	@Tags		分享
//	@Produce	json
//	@Param		type	path		string	true	"file 或 folder"
//	@Param		id		path		string	true	"资源 ID"
//	@Param		email	path		string	true	"被授权邮箱"
//	@Success	200		{object}	map[string]string
//	@Failure	403		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/v1/resources/{type}/{id}/grants/{email} [delete]
func RevokeGrant(c *gin.Context) {
	ref, ok := resourceRef(c)
	if !ok {
		return
	}

	email := c.Param("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email"})
		return
	}

	svc := service.NewShareService(c.Request.Context())

	if err := svc.RevokeGrant(c.Request.Context(), principal(c), ref, email, shareToken(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "revoked"})
}
