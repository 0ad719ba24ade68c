package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/metrics"
	"founders-circle/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

const topic = "arn:aws:sns:eu-central-1:123456789012:founders-circle"

var fixedNow = time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)

func newPublisher(t *testing.T, svc SNSService) *SNSPublisher {
	p := NewSNSPublisher(svc, topic, logger.NewTestLogger(t))
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestSNSPublisher_ApplicationSubmitted(t *testing.T) {
	var captured *sns.PublishInput
	svc := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{}, nil
		},
	}
	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(string(ApplicationSubmitted), metrics.StatusSuccess))

	newPublisher(t, svc).ApplicationSubmitted(context.Background(), models.Application{
		ID:     "app-1",
		Email:  "anna@example.com",
		Status: models.StatusPending,
	})

	require.NotNil(t, captured)
	assert.Equal(t, topic, *captured.TopicArn)
	assert.Equal(t, "application.submitted", *captured.MessageAttributes["event_type"].StringValue)

	var got Event
	require.NoError(t, json.Unmarshal([]byte(*captured.Message), &got))
	assert.Equal(t, Event{
		Type:          ApplicationSubmitted,
		ApplicationID: "app-1",
		Email:         "anna@example.com",
		Status:        models.StatusPending,
		OccurredAt:    fixedNow,
	}, got)

	after := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(string(ApplicationSubmitted), metrics.StatusSuccess))
	assert.Equal(t, before+1, after)
}

func TestSNSPublisher_StatusChangedCarriesOldStatus(t *testing.T) {
	var body string
	svc := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			body = *params.Message
			return &sns.PublishOutput{}, nil
		},
	}

	newPublisher(t, svc).ApplicationStatusChanged(context.Background(),
		models.Application{ID: "app-1", Status: models.StatusApproved}, models.StatusPending)

	assert.Contains(t, body, `"type":"application.status_changed"`)
	assert.Contains(t, body, `"old_status":"pending"`)
	assert.Contains(t, body, `"status":"approved"`)
}

func TestSNSPublisher_FailureIsSwallowed(t *testing.T) {
	svc := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("SNS service unavailable")
		},
	}
	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(string(ApplicationSubmitted), metrics.StatusError))

	assert.NotPanics(t, func() {
		newPublisher(t, svc).ApplicationSubmitted(context.Background(), models.Application{ID: "app-2"})
	})

	after := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(string(ApplicationSubmitted), metrics.StatusError))
	assert.Equal(t, before+1, after)
}

func TestSNSPublisher_SlowTopicTimesOut(t *testing.T) {
	var hadDeadline bool
	svc := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			_, hadDeadline = ctx.Deadline()
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	p := newPublisher(t, svc)
	p.timeout = 20 * time.Millisecond
	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(string(ApplicationStatusChanged), metrics.StatusError))

	start := time.Now()
	p.ApplicationStatusChanged(context.Background(), models.Application{ID: "app-3"}, models.StatusPending)

	assert.True(t, hadDeadline)
	assert.Less(t, time.Since(start), time.Second)
	after := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues(string(ApplicationStatusChanged), metrics.StatusError))
	assert.Equal(t, before+1, after)
}

func TestNewSNSPublisher_DefaultTimeout(t *testing.T) {
	p := NewSNSPublisher(&MockSNSService{}, topic, logger.NewNoOpLogger())
	assert.Equal(t, DefaultPublishTimeout, p.timeout)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NotPanics(t, func() {
		p.ApplicationSubmitted(context.Background(), models.Application{})
		p.ApplicationStatusChanged(context.Background(), models.Application{}, models.StatusPending)
	})
}
