package metrics

import (
	"net/http"

	"github.com/panini/ontology-go/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// 管线运行指标
var (
	// RequestsConsumed 消费的请求消息总数
	RequestsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_requests_consumed_total",
		Help: "Total number of request messages consumed from Kafka.",
	})

	// RequestsRejected 被拒绝的不合法请求总数
	RequestsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_requests_rejected_total",
		Help: "Total number of requests rejected as invalid.",
	})

	// CategoriesCreated 创建的分类总数
	CategoriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_categories_created_total",
		Help: "Total number of categories created.",
	})

	// SegmentsClassified 完成归类的分段总数
	SegmentsClassified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_segments_classified_total",
		Help: "Total number of document segments classified and persisted.",
	})

	// OutcomesPublished 发布的结果消息总数
	OutcomesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ontology_outcomes_published_total",
		Help: "Total number of outcome messages published to Kafka.",
	})

	// PipelineErrors 管线错误总数，按阶段区分
	PipelineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ontology_pipeline_errors_total",
		Help: "Total number of pipeline errors by stage.",
	}, []string{"stage"})

	// RequestDuration 单条请求端到端处理耗时
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ontology_request_duration_seconds",
		Help:    "End to end processing time of a single request.",
		Buckets: prometheus.DefBuckets,
	})
)

// Serve 在独立端口上暴露/metrics，阻塞运行
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server exited", zap.Error(err))
	}
}
