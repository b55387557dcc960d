// Package metrics 提供 Prometheus 指标注册与暴露.
//
// 指标分两类：HTTP 层的请求计数/时延由中间件记录，
// 领域层的回收站清除与分享缓存命中由对应 service 记录.
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 注册 pprof 端点到 DefaultServeMux

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/drivevault/pkg/configs"
)

var (
	// RequestCounter 按方法与路由模板计数的 HTTP 请求总量.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP 请求时延分布.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// TrashPurged 彻底删除的资源计数，含调度清理与手动清理.
	TrashPurged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trash_purged_total",
			Help: "Resources permanently removed from trash",
		},
		[]string{"type"},
	)

	// ShareCacheHits 分享链接描述的 KV 缓存命中计数.
	ShareCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "share_link_cache_hits_total",
			Help: "Share link describe requests served from the KV cache",
		},
	)

	registry = prometheus.NewRegistry()
)

// InitMetrics 注册指标；未启用时不做任何事.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry.MustRegister(RequestCounter, RequestDuration, TrashPurged, ShareCacheHits)

	return nil
}

// StartMetricsServer 在调试引擎上挂载 /metrics，按配置追加 pprof.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}
