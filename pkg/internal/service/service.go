// Package service 实现业务服务层：资源树、回收站生命周期、分享与授权.
// 所有资源操作先经 authz.Guard 判定，再访问存储；服务自身不感知 HTTP.
package service

import (
	"context"
	crand "crypto/rand"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/oklog/ulid"

	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/internal/authz"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/storage/mq"
	"github.com/yeisme/drivevault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/queue"
)

const (
	// DefaultPresignedOpTimeout 默认预签名 URL 有效期.
	DefaultPresignedOpTimeout = 15 * time.Minute

	// producerName 事件头中的生产者标识.
	producerName = "drivevault"
)

// 全局单例的 ULID 熵源，使用单调递增策略，确保同一毫秒内生成的 ULID 具有排序稳定性。
var ulidEntropy = ulid.Monotonic(crand.Reader, 0)

// newResourceID 生成按时间排序的资源 ID.
func newResourceID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulidEntropy).String()
}

// blobRemover 对象回收的最小契约，彻底删除路径经由它触达对象存储.
type blobRemover interface {
	Remove(ctx context.Context, bucket, objectKey string) error
}

// Service 聚合存储客户端与授权闸口，是各业务服务的公共底座.
type Service struct {
	dbc   *db.Client
	s3c   *s3.Client
	kvc   *kv.Client
	mqc   *mq.Client
	blobs blobRemover
	guard *authz.Guard
}

// newService 从 context 注入的 Manager 构建服务底座.
// KV 与 MQ 允许为 nil，对应能力自动降级；DB 缺失由具体操作报错.
func newService(c context.Context) *Service {
	svc := &Service{
		dbc: ctxPkg.GetDBClient(c),
		s3c: ctxPkg.GetS3Client(c),
		kvc: ctxPkg.GetKVClient(c),
		mqc: ctxPkg.GetMQClient(c),
	}

	if svc.s3c != nil {
		svc.blobs = svc.s3c
	}

	stores := newDBStores(svc.dbc)
	svc.guard = authz.NewGuard(authz.NewResolver(stores, stores, stores))

	return svc
}

// Guard 返回授权闸口.
func (s *Service) Guard() *authz.Guard { return s.guard }

// publishEvent 发布生命周期事件，MQ 未初始化或发布失败只记日志，绝不影响主流程.
func (s *Service) publishEvent(enabled bool, topic string, fn func(pub message.Publisher) error) {
	if !enabled || !configs.GetConfig().Events.Enabled {
		return
	}

	if s.mqc == nil || s.mqc.Publisher() == nil {
		return
	}

	if err := fn(s.mqc.Publisher()); err != nil {
		nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("publish lifecycle event failed")
	}
}

// eventRef 将 authz.ResourceRef 转为事件负载中的引用.
func eventRef(ref authz.ResourceRef) queue.ResourceRef {
	return queue.ResourceRef{Type: string(ref.Type), ID: ref.ID}
}
