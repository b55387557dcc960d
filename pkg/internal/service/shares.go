package service

import (
	"context"
	crand "crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/drivevault/pkg/cache"
	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/fault"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/queue"
)

// ShareService 负责链接分享与按邮箱授权.
// 两者都是 upsert 语义：同一资源至多一条链接，同一 (资源, 邮箱) 至多一条授权.
type ShareService struct{ *Service }

// NewShareService 创建分享服务.
func NewShareService(c context.Context) *ShareService {
	return &ShareService{newService(c)}
}

// 链接描述缓存：授权解析路径永远直查数据库，缓存只服务于 describe 展示.
const (
	linkCacheKeyPrefix = "share:link:v1:"
	linkCacheMaxTTL    = 10 * time.Minute
)

// UpsertLink 创建或轮换资源的分享链接.
// 已有链接时原地替换令牌与角色，旧令牌即刻失效；绝不产生第二条链接.
func (s *ShareService) UpsertLink(ctx context.Context, p authz.Principal, ref authz.ResourceRef, req *types.UpsertLinkRequest, shareToken string) (*types.UpsertLinkResponse, error) {
	if _, err := s.guard.Authorize(ctx, p, ref, authz.ActionShare, shareToken); err != nil {
		return nil, err
	}

	role, ok := authz.ParseAssignableRole(req.Role)
	if !ok {
		return nil, fault.Conflict("role %q cannot be granted via link", req.Role)
	}

	cfg := configs.GetConfig().Share
	now := time.Now().UTC()

	var expires *time.Time

	if req.ExpireDays > 0 {
		if cfg.MaxTTLDays > 0 && req.ExpireDays > cfg.MaxTTLDays {
			return nil, fault.Conflict("link ttl %d days exceeds the configured maximum of %d", req.ExpireDays, cfg.MaxTTLDays)
		}

		e := now.Add(time.Duration(req.ExpireDays) * 24 * time.Hour)
		expires = &e
	}

	token, err := newLinkToken(cfg.TokenBytes)
	if err != nil {
		return nil, fault.Transient(err, "generate link token")
	}

	dbx, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	rotated, err := s.linkExists(dbx, ref)
	if err != nil {
		return nil, err
	}

	link := &model.ShareLink{
		ResourceType: string(ref.Type),
		ResourceID:   ref.ID,
		Token:        token,
		Role:         role.String(),
		ExpiresAt:    expires,
		CreatedBy:    p.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = dbx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "resource_type"}, {Name: "resource_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"token", "role", "expires_at", "created_by", "updated_at",
		}),
	}).Create(link).Error
	if err != nil {
		return nil, fault.Transient(err, "upsert share link")
	}

	s.invalidateLinkCache(ctx, ref)
	s.publishLinkEvent(configs.GetConfig().Events.Sharing.LinkRotated, queue.TopicLinkRotated, ref, p.ID, role.String(), expires)

	return &types.UpsertLinkResponse{
		Link: types.ShareLinkInfo{
			URL:       renderShareURL(cfg.PublicOrigin, ref, token),
			Role:      role.String(),
			ExpiresAt: expires,
			CreatedBy: p.ID,
			CreatedAt: now.Format(time.RFC3339),
		},
		Rotated: rotated,
	}, nil
}

// RevokeLink 撤销资源的分享链接.不存在时幂等成功.
func (s *ShareService) RevokeLink(ctx context.Context, p authz.Principal, ref authz.ResourceRef, shareToken string) error {
	if _, err := s.guard.Authorize(ctx, p, ref, authz.ActionShare, shareToken); err != nil {
		return err
	}

	dbx, err := s.db(ctx)
	if err != nil {
		return err
	}

	tx := dbx.Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Delete(&model.ShareLink{})
	if tx.Error != nil {
		return fault.Transient(tx.Error, "revoke share link")
	}

	s.invalidateLinkCache(ctx, ref)

	if tx.RowsAffected > 0 {
		s.publishLinkEvent(configs.GetConfig().Events.Sharing.LinkRevoked, queue.TopicLinkRevoked, ref, p.ID, "", nil)
	}

	return nil
}

// DescribeLink 返回资源当前链接的完整描述，含嵌入令牌的 URL.
// URL 里带着机密令牌，因此 describe 与创建/撤销一样要求 share 权限.
func (s *ShareService) DescribeLink(ctx context.Context, p authz.Principal, ref authz.ResourceRef, shareToken string) (*types.ShareLinkInfo, error) {
	if _, err := s.guard.Authorize(ctx, p, ref, authz.ActionShare, shareToken); err != nil {
		return nil, err
	}

	if info, ok := s.linkCacheGet(ctx, ref); ok {
		return info, nil
	}

	dbx, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	var link model.ShareLink

	err = dbx.Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Take(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fault.NotFound("no share link for this %s", ref.Type)
	}

	if err != nil {
		return nil, fault.Transient(err, "load share link")
	}

	if link.Expired(time.Now().UTC()) {
		return nil, fault.NotFound("no share link for this %s", ref.Type)
	}

	info := &types.ShareLinkInfo{
		URL:       renderShareURL(configs.GetConfig().Share.PublicOrigin, ref, link.Token),
		Role:      link.Role,
		ExpiresAt: link.ExpiresAt,
		CreatedBy: link.CreatedBy,
		CreatedAt: link.CreatedAt.UTC().Format(time.RFC3339),
	}

	s.linkCacheSet(ctx, ref, info)

	return info, nil
}

// UpsertGrant 创建或替换按邮箱授权.邮箱统一小写后入库，同邮箱重复授权覆盖角色.
func (s *ShareService) UpsertGrant(ctx context.Context, p authz.Principal, ref authz.ResourceRef, req *types.UpsertGrantRequest, shareToken string) (*types.GrantInfo, error) {
	if _, err := s.guard.Authorize(ctx, p, ref, authz.ActionShare, shareToken); err != nil {
		return nil, err
	}

	role, ok := authz.ParseAssignableRole(req.Role)
	if !ok {
		return nil, fault.Conflict("role %q cannot be granted", req.Role)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	now := time.Now().UTC()

	dbx, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	grant := &model.Grant{
		ResourceType: string(ref.Type),
		ResourceID:   ref.ID,
		Email:        email,
		Role:         role.String(),
		CreatedBy:    p.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = dbx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "resource_type"}, {Name: "resource_id"}, {Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"role", "created_by", "updated_at",
		}),
	}).Create(grant).Error
	if err != nil {
		return nil, fault.Transient(err, "upsert grant")
	}

	s.publishGrantEvent(configs.GetConfig().Events.Sharing.GrantUpsert, queue.TopicGrantUpsert, ref, p.ID, email, role.String())

	return &types.GrantInfo{
		Email:     email,
		Role:      role.String(),
		CreatedBy: p.ID,
		UpdatedAt: now.Format(time.RFC3339),
	}, nil
}

// RevokeGrant 撤销指定邮箱的授权.不存在时幂等成功.
func (s *ShareService) RevokeGrant(ctx context.Context, p authz.Principal, ref authz.ResourceRef, email, shareToken string) error {
	if _, err := s.guard.Authorize(ctx, p, ref, authz.ActionShare, shareToken); err != nil {
		return err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fault.Conflict("email required")
	}

	dbx, err := s.db(ctx)
	if err != nil {
		return err
	}

	tx := dbx.Where("resource_type = ? AND resource_id = ? AND email = ?", string(ref.Type), ref.ID, email).
		Delete(&model.Grant{})
	if tx.Error != nil {
		return fault.Transient(tx.Error, "revoke grant")
	}

	if tx.RowsAffected > 0 {
		s.publishGrantEvent(configs.GetConfig().Events.Sharing.GrantRevoked, queue.TopicGrantRevoked, ref, p.ID, email, "")
	}

	return nil
}

// ListGrants 列出资源的全部按邮箱授权.
func (s *ShareService) ListGrants(ctx context.Context, p authz.Principal, ref authz.ResourceRef, shareToken string) (*types.ListGrantsResponse, error) {
	if _, err := s.guard.Authorize(ctx, p, ref, authz.ActionShare, shareToken); err != nil {
		return nil, err
	}

	dbx, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Grant
	if err := dbx.Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Order("email").Find(&rows).Error; err != nil {
		return nil, fault.Transient(err, "list grants")
	}

	grants := make([]types.GrantInfo, 0, len(rows))
	for _, g := range rows {
		grants = append(grants, types.GrantInfo{
			Email:     g.Email,
			Role:      g.Role,
			CreatedBy: g.CreatedBy,
			UpdatedAt: g.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}

	return &types.ListGrantsResponse{Grants: grants, Total: len(grants)}, nil
}

// ---- 内部辅助 ----

func (s *ShareService) db(ctx context.Context) (*gorm.DB, error) {
	if s.dbc == nil || s.dbc.GetDB() == nil {
		return nil, fault.Transient(nil, "database not initialized")
	}

	return s.dbc.GetDB().WithContext(ctx), nil
}

func (s *ShareService) linkExists(dbx *gorm.DB, ref authz.ResourceRef) (bool, error) {
	var n int64
	if err := dbx.Model(&model.ShareLink{}).
		Where("resource_type = ? AND resource_id = ?", string(ref.Type), ref.ID).
		Count(&n).Error; err != nil {
		return false, fault.Transient(err, "check share link")
	}

	return n > 0, nil
}

// newLinkToken 生成 URL 安全的随机令牌.
func newLinkToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = configs.DefaultShareTokenBytes
	}

	buf := make([]byte, nBytes)
	if _, err := crand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// renderShareURL 拼接对外分享 URL：<origin>/share/<type>/<id>?t=<token>.
func renderShareURL(origin string, ref authz.ResourceRef, token string) string {
	return fmt.Sprintf("%s/share/%s/%s?t=%s", strings.TrimRight(origin, "/"), ref.Type, ref.ID, token)
}

func linkCacheKey(ref authz.ResourceRef) string {
	return linkCacheKeyPrefix + string(ref.Type) + ":" + ref.ID
}

func (s *ShareService) linkCache() *cache.Cache {
	if s.kvc == nil {
		return nil
	}

	return cache.NewCache(s.kvc)
}

func (s *ShareService) linkCacheGet(ctx context.Context, ref authz.ResourceRef) (*types.ShareLinkInfo, bool) {
	lc := s.linkCache()
	if lc == nil {
		return nil, false
	}

	info, err := cache.Get[types.ShareLinkInfo](ctx, lc, linkCacheKey(ref))
	if err != nil {
		return nil, false
	}

	if info.ExpiresAt != nil && !info.ExpiresAt.After(time.Now().UTC()) {
		_ = lc.Delete(ctx, linkCacheKey(ref))

		return nil, false
	}

	metrics.ShareCacheHits.Inc()

	return &info, true
}

func (s *ShareService) linkCacheSet(ctx context.Context, ref authz.ResourceRef, info *types.ShareLinkInfo) {
	lc := s.linkCache()
	if lc == nil {
		return
	}

	ttl := linkCacheMaxTTL
	if info.ExpiresAt != nil {
		if d := time.Until(*info.ExpiresAt); d < ttl {
			ttl = max(d, 0)
		}
	}

	if err := cache.Set(ctx, lc, linkCacheKey(ref), *info, ttl); err != nil {
		nlog.Logger().Debug().Err(err).Msg("cache share link failed")
	}
}

func (s *ShareService) invalidateLinkCache(ctx context.Context, ref authz.ResourceRef) {
	lc := s.linkCache()
	if lc == nil {
		return
	}

	_ = lc.Delete(ctx, linkCacheKey(ref))
}

func (s *ShareService) publishLinkEvent(enabled bool, topic string, ref authz.ResourceRef, actor, role string, expires *time.Time) {
	s.publishEvent(enabled, topic, func(pub message.Publisher) error {
		payload := queue.LinkEventPayload{
			Resource:  eventRef(ref),
			Actor:     actor,
			Role:      role,
			ExpiresAt: expires,
		}

		if topic == queue.TopicLinkRevoked {
			return queue.PublishLinkRevoked(pub, payload, queue.WithProducer(producerName))
		}

		return queue.PublishLinkRotated(pub, payload, queue.WithProducer(producerName))
	})
}

func (s *ShareService) publishGrantEvent(enabled bool, topic string, ref authz.ResourceRef, actor, email, role string) {
	s.publishEvent(enabled, topic, func(pub message.Publisher) error {
		payload := queue.GrantEventPayload{
			Resource: eventRef(ref),
			Actor:    actor,
			Email:    email,
			Role:     role,
		}

		if topic == queue.TopicGrantRevoked {
			return queue.PublishGrantRevoked(pub, payload, queue.WithProducer(producerName))
		}

		return queue.PublishGrantUpsert(pub, payload, queue.WithProducer(producerName))
	})
}
