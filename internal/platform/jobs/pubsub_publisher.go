// Package jobs contains publishers for asynchronous downstream processing.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/standee-works/customizer/internal/services"
)

const defaultPublishAttempts = 3

// PubSubSubmissionPublisher announces completed customizations on a Pub/Sub topic.
type PubSubSubmissionPublisher struct {
	topic    *pubsub.Topic
	marshal  func(any) ([]byte, error)
	attempts int
	backoff  gax.Backoff
	sleep    func(context.Context, time.Duration) error
}

var _ services.SubmissionPublisher = (*PubSubSubmissionPublisher)(nil)

// SubmissionPublisherOption customises publisher behaviour.
type SubmissionPublisherOption func(*PubSubSubmissionPublisher)

// WithPublishAttempts overrides how many times a transient publish failure is retried.
func WithPublishAttempts(attempts int) SubmissionPublisherOption {
	return func(p *PubSubSubmissionPublisher) {
		if attempts > 0 {
			p.attempts = attempts
		}
	}
}

// NewPubSubSubmissionPublisher constructs a Pub/Sub backed submission publisher.
func NewPubSubSubmissionPublisher(topic *pubsub.Topic, opts ...SubmissionPublisherOption) (*PubSubSubmissionPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub submission publisher: topic is required")
	}
	publisher := &PubSubSubmissionPublisher{
		topic:    topic,
		marshal:  json.Marshal,
		attempts: defaultPublishAttempts,
		backoff: gax.Backoff{
			Initial:    100 * time.Millisecond,
			Max:        2 * time.Second,
			Multiplier: 2,
		},
		sleep: gax.Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(publisher)
		}
	}
	return publisher, nil
}

// PublishSubmission emits the submission event, retrying transient failures
// with exponential backoff.
func (p *PubSubSubmissionPublisher) PublishSubmission(ctx context.Context, event services.SubmissionEvent) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub submission publisher: not initialised")
	}

	data, err := p.marshal(event)
	if err != nil {
		return fmt.Errorf("marshal submission event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "orderNumber", event.OrderNumber)
	setAttr(attrs, "businessName", event.BusinessName)
	attrs["lineItems"] = strconv.Itoa(event.LineItems)

	backoff := p.backoff
	var lastErr error
	for attempt := 0; attempt < p.attempts; attempt++ {
		result := p.topic.Publish(ctx, &pubsub.Message{
			Data:       data,
			Attributes: attrs,
		})
		if _, err := result.Get(ctx); err == nil {
			return nil
		} else {
			lastErr = err
			if !isTransientPublishError(err) {
				break
			}
		}
		if err := p.sleep(ctx, backoff.Pause()); err != nil {
			return err
		}
	}
	return fmt.Errorf("publish submission event: %w", lastErr)
}

func isTransientPublishError(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Internal:
		return true
	}
	return false
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
