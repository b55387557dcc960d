// Package context 在 context.Context 中携带存储 Manager，
// handler 和 service 由此取到 DB、S3、MQ、KV 客户端.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/drivevault/pkg/internal/storage"
	dbc "github.com/yeisme/drivevault/pkg/internal/storage/db"
	kvc "github.com/yeisme/drivevault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/drivevault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/drivevault/pkg/internal/storage/s3"
)

type ContextKey string

const StorageManagerKey ContextKey = "storageManager"

// WithStorageManager 把 Manager 注入 context.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 取出 Manager，未注入时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(StorageManagerKey).(*storage.Manager)

	return mgr
}

// GetS3Client 取出 S3 客户端.
func GetS3Client(ctx context.Context) *s3c.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetS3Client()
	}

	return nil
}

// GetDBClient 取出 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 取出 MQ 客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 取出 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// WithTraceContext 若当前 span 在记录，则给 logger 附加 trace_id 与 span_id.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return logger
	}

	sc := span.SpanContext()

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
