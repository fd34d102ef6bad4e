package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-coverage-api/internal/coverage"
	"github.com/noah-isme/sma-coverage-api/internal/dto"
)

type publishedMessage struct {
	key     string
	payload []byte
}

type flakyPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	failAt   int
	failures int
	calls    int
	done     chan struct{}
}

func (p *flakyPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls == p.failAt && p.failures > 0 {
		p.failures--
		p.failAt++
		return errors.New("broker unavailable")
	}
	p.messages = append(p.messages, publishedMessage{key: routingKey, payload: payload})
	if routingKey == "coverage.run.completed" && p.done != nil {
		close(p.done)
	}
	return nil
}

func (p *flakyPublisher) Close() error { return nil }

func runResponseFixture() *dto.CoverageRunResponse {
	sub := "sub-1"
	return &dto.CoverageRunResponse{
		RunID: "run-1",
		Date:  "2024-09-02",
		Results: []coverage.CoverageResult{
			{AbsenceID: "abs-1", Period: 1, CandidateID: &sub, Type: coverage.AssignmentTypeExternal},
			{AbsenceID: "abs-1", Period: 2, Type: coverage.AssignmentTypeNone},
		},
		Meta: coverage.RunMeta{CoveredPeriods: 1, UncoveredPeriods: 1},
	}
}

func TestNotificationServicePublishesEveryResultOnce(t *testing.T) {
	publisher := &flakyPublisher{failAt: 2, failures: 1, done: make(chan struct{})}
	svc := NewNotificationService(publisher, NewMetricsService(), NotificationOptions{Retries: 3, RetryDelay: time.Millisecond}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), runResponseFixture())

	select {
	case <-publisher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not published")
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	require.Len(t, publisher.messages, 3)
	assert.Equal(t, "coverage.external_sub", publisher.messages[0].key)
	assert.Equal(t, "coverage.no_coverage", publisher.messages[1].key)
	assert.Equal(t, "coverage.run.completed", publisher.messages[2].key)

	var event CoverageEvent
	require.NoError(t, json.Unmarshal(publisher.messages[0].payload, &event))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, coverage.Period(1), event.Result.Period)
}

func TestNotificationServiceDropsWhenNotStarted(t *testing.T) {
	publisher := &flakyPublisher{}
	svc := NewNotificationService(publisher, nil, NotificationOptions{}, nil)

	svc.Notify(context.Background(), runResponseFixture())
	assert.Zero(t, publisher.calls)

	var nilSvc *NotificationService
	nilSvc.Notify(context.Background(), runResponseFixture())
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "coverage.full_day_sub", RoutingKey(coverage.AssignmentTypeFullDay))
	assert.Equal(t, "coverage.emergency_coverage", RoutingKey(coverage.AssignmentTypeEmergency))
	assert.Equal(t, "coverage.unknown", RoutingKey(""))
}

func TestNotificationServiceFlush(t *testing.T) {
	publisher := &flakyPublisher{}
	svc := NewNotificationService(publisher, nil, NotificationOptions{RetryDelay: time.Millisecond}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Notify(context.Background(), runResponseFixture())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, svc.Flush(ctx))

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Len(t, publisher.messages, 3)
}
