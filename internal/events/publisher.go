// Package events fans application lifecycle changes out to an SNS topic.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"founders-circle/internal/common/logger"
	"founders-circle/internal/common/metrics"
	"founders-circle/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// DefaultPublishTimeout bounds one Publish call so a slow topic cannot hold a response.
const DefaultPublishTimeout = 3 * time.Second

type Type string

const (
	ApplicationSubmitted     Type = "application.submitted"
	ApplicationStatusChanged Type = "application.status_changed"
)

// Event is the JSON message body published to the topic.
type Event struct {
	Type          Type          `json:"type"`
	ApplicationID string        `json:"application_id"`
	Email         string        `json:"email"`
	Status        models.Status `json:"status"`
	OldStatus     models.Status `json:"old_status,omitempty"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

// Publisher never fails the request that triggered it; errors are logged and counted.
type Publisher interface {
	ApplicationSubmitted(ctx context.Context, app models.Application)
	ApplicationStatusChanged(ctx context.Context, app models.Application, oldStatus models.Status)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   SNSService
	topicARN string
	logger   logger.Logger
	timeout  time.Duration
	now      func() time.Time
}

func NewSNSPublisher(client SNSService, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"component": "events"}),
		timeout:  DefaultPublishTimeout,
		now:      time.Now,
	}
}

func (p *SNSPublisher) ApplicationSubmitted(ctx context.Context, app models.Application) {
	p.publish(ctx, Event{
		Type:          ApplicationSubmitted,
		ApplicationID: app.ID,
		Email:         app.Email,
		Status:        app.Status,
	})
}

func (p *SNSPublisher) ApplicationStatusChanged(ctx context.Context, app models.Application, oldStatus models.Status) {
	p.publish(ctx, Event{
		Type:          ApplicationStatusChanged,
		ApplicationID: app.ID,
		Email:         app.Email,
		Status:        app.Status,
		OldStatus:     oldStatus,
	})
}

func (p *SNSPublisher) publish(ctx context.Context, e Event) {
	e.OccurredAt = p.now().UTC()
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.send(ctx, e); err != nil {
		metrics.EventsPublished.WithLabelValues(string(e.Type), metrics.StatusError).Inc()
		p.logger.Warn("event publish failed", map[string]interface{}{
			"event":         string(e.Type),
			"applicationId": e.ApplicationID,
			"error":         err,
		})
		return
	}
	metrics.EventsPublished.WithLabelValues(string(e.Type), metrics.StatusSuccess).Inc()
}

func (p *SNSPublisher) send(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(e.Type)),
			},
		},
	})
	return err
}

// Noop is used when no topic is configured.
type Noop struct{}

func (Noop) ApplicationSubmitted(context.Context, models.Application) {}

func (Noop) ApplicationStatusChanged(context.Context, models.Application, models.Status) {}
