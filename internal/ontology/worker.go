package ontology

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	apperrors "github.com/panini/ontology-go/internal/errors"
	"github.com/panini/ontology-go/internal/kafka"
	"github.com/panini/ontology-go/internal/logger"
	"github.com/panini/ontology-go/internal/metrics"
	"go.uber.org/zap"
)

// OutcomePublisher 结果消息发布能力
type OutcomePublisher interface {
	SendJSON(topic, key string, payload interface{}) error
}

// Worker 把路由器接到Kafka上：消费请求topic，把每条结果消息发布到
// 响应topic。消息处理完（含结果发布）之后消费者才会提交offset。
type Worker struct {
	router        *Router
	consumer      *kafka.Consumer
	publisher     OutcomePublisher
	requestTopic  string
	responseTopic string
}

// NewWorker 创建消费工作器
func NewWorker(router *Router, consumer *kafka.Consumer, publisher OutcomePublisher, requestTopic, responseTopic string) *Worker {
	return &Worker{
		router:        router,
		consumer:      consumer,
		publisher:     publisher,
		requestTopic:  requestTopic,
		responseTopic: responseTopic,
	}
}

// Start 注册处理器并启动消费循环
func (w *Worker) Start() {
	w.consumer.RegisterHandler(w.requestTopic, w.handleMessage)
	w.consumer.Start()
	logger.Info("ontology worker started",
		zap.String("request_topic", w.requestTopic),
		zap.String("response_topic", w.responseTopic))
}

// Stop 停止消费，等待在途消息处理完
func (w *Worker) Stop() error {
	return w.consumer.Close()
}

func (w *Worker) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	metrics.RequestsConsumed.Inc()
	start := time.Now()
	defer func() {
		metrics.RequestDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := ParseRequest(message.Value)
	if err != nil {
		// 非JSON载荷只记日志，不发结果消息
		metrics.RequestsRejected.Inc()
		logger.Warn("discarding malformed request",
			zap.Int64("offset", message.Offset),
			zap.Error(err))
		return err
	}

	// nil表示请求被拒绝，空切片表示合法请求没有产生结果消息
	outcomes := w.router.Handle(ctx, req)
	if outcomes == nil {
		metrics.RequestsRejected.Inc()
		return nil
	}

	for _, outcome := range outcomes {
		w.observeOutcome(outcome)
		if err := w.publisher.SendJSON(w.responseTopic, deref(req.CategoryID), outcome); err != nil {
			metrics.PipelineErrors.WithLabelValues("publish").Inc()
			logger.Error("failed to publish outcome",
				zap.String("topic", w.responseTopic),
				zap.Error(err))
			return err
		}
		metrics.OutcomesPublished.Inc()
	}

	return nil
}

func (w *Worker) observeOutcome(outcome Outcome) {
	if outcome.ErrorMessage == nil {
		metrics.SegmentsClassified.Inc()
		return
	}
	switch *outcome.ErrorMessage {
	case msgCategoryCreated:
		metrics.CategoriesCreated.Inc()
	case msgParentNotFound:
		metrics.PipelineErrors.WithLabelValues(string(apperrors.ErrCodeParentNotFound)).Inc()
	case msgCategoryExists:
		// 提示类消息，不算错误
	default:
		metrics.PipelineErrors.WithLabelValues("pipeline").Inc()
	}
}
