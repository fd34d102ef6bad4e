package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
	"github.com/noah-isme/sma-coverage-api/internal/dto"
	"github.com/noah-isme/sma-coverage-api/pkg/jobs"
	"github.com/noah-isme/sma-coverage-api/pkg/notify"
)

const coverageRunJobType = "coverage.run"

// CoverageEvent is the message published for each period decision.
type CoverageEvent struct {
	RunID  string                  `json:"run_id"`
	Date   string                  `json:"date"`
	Result coverage.CoverageResult `json:"result"`
}

// CoverageRunEvent closes a run's event stream.
type CoverageRunEvent struct {
	RunID string           `json:"run_id"`
	Date  string           `json:"date"`
	Meta  coverage.RunMeta `json:"meta"`
}

// NotificationOptions tunes the dispatch pool.
type NotificationOptions struct {
	Workers        int
	Retries        int
	RetryDelay     time.Duration
	PublishTimeout time.Duration
}

// NotificationService publishes run results in the background. Callers never wait on the broker.
type NotificationService struct {
	publisher notify.Publisher
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
	timeout   time.Duration
}

// runDelivery tracks how far a run's publication got so a retry resumes instead of repeating.
type runDelivery struct {
	mu       sync.Mutex
	response *dto.CoverageRunResponse
	next     int
}

// NewNotificationService constructs the service. Start must be called before Notify.
func NewNotificationService(publisher notify.Publisher, metrics *MetricsService, opts NotificationOptions, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = notify.NewNoopPublisher(logger)
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 5 * time.Second
	}
	svc := &NotificationService{publisher: publisher, metrics: metrics, logger: logger, timeout: opts.PublishTimeout}
	svc.queue = jobs.NewQueue("coverage-notifications", svc.handle, jobs.QueueConfig{
		Workers:    opts.Workers,
		MaxRetries: opts.Retries,
		RetryDelay: opts.RetryDelay,
		Logger:     logger,
		OnGiveUp: func(job jobs.Job, err error) {
			metrics.RecordNotification("failed")
		},
	})
	return svc
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers and closes the publisher.
func (s *NotificationService) Stop() {
	s.queue.Stop()
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn("close notification publisher", zap.Error(err))
	}
}

// Flush waits for queued publications to finish or ctx to expire.
func (s *NotificationService) Flush(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.queue.Drain(ctx)
}

// Notify schedules publication of a persisted run. It never blocks.
func (s *NotificationService) Notify(ctx context.Context, response *dto.CoverageRunResponse) {
	if s == nil || response == nil {
		return
	}
	err := s.queue.TryEnqueue(jobs.Job{
		ID:      response.RunID,
		Type:    coverageRunJobType,
		Payload: &runDelivery{response: response},
	})
	if err != nil {
		s.metrics.RecordNotification("rejected")
		s.logger.Warn("coverage notification dropped", zap.String("run_id", response.RunID), zap.Error(err))
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	delivery, ok := job.Payload.(*runDelivery)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	delivery.mu.Lock()
	defer delivery.mu.Unlock()

	run := delivery.response
	for delivery.next < len(run.Results) {
		result := run.Results[delivery.next]
		event := CoverageEvent{RunID: run.RunID, Date: run.Date, Result: result}
		if err := s.publish(ctx, RoutingKey(result.Type), event); err != nil {
			return err
		}
		delivery.next++
	}
	if delivery.next == len(run.Results) {
		if err := s.publish(ctx, "coverage.run.completed", CoverageRunEvent{RunID: run.RunID, Date: run.Date, Meta: run.Meta}); err != nil {
			return err
		}
		delivery.next++
	}
	s.metrics.RecordNotification("published")
	return nil
}

func (s *NotificationService) publish(ctx context.Context, routingKey string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", routingKey, err)
	}
	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.publisher.Publish(publishCtx, routingKey, payload)
}

// RoutingKey maps an assignment type to its routing key, e.g. "External Sub" to
// coverage.external_sub.
func RoutingKey(t coverage.AssignmentType) string {
	slug := strings.ToLower(strings.TrimSpace(string(t)))
	slug = strings.ReplaceAll(slug, " ", "_")
	if slug == "" {
		slug = "unknown"
	}
	return "coverage." + slug
}
