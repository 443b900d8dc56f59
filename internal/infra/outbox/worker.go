package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// Producer is the broker side of the worker; kafka.Producer satisfies it.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker drains pending outbox records into the broker on a polling loop.
// Each tick it drains until the claimable backlog is empty, so a burst of
// events does not wait one interval per record. Failed publishes are
// rescheduled on the Backoff ladder.
type Worker struct {
	Store       *Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				return err
			}
		}
	}
}

// drain publishes claimable records until the store comes back empty.
func (w *Worker) drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := w.Store.Claim(ctx, w.workerID())
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		w.publish(ctx, doc)
	}
}

func (w *Worker) publish(ctx context.Context, doc *EventDocument) {
	payload, headers, err := w.envelope(doc)
	if err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return
	}
	if err := w.Producer.Publish(ctx, w.topicFor(doc.Name), doc.Aggregate, payload, headers); err != nil {
		_ = w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
		return
	}
	_ = w.Store.MarkSent(ctx, doc.ID)
}

// envelope wraps the stored domain payload in a CloudEvents JSON envelope.
func (w *Worker) envelope(doc *EventDocument) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(doc.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              uuid.NewString(),
		"type":            doc.Name + ".v1",
		"source":          w.source(),
		"time":            doc.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := doc.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range doc.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// topicFor maps an event name like "inbox.message_sent" onto the area topic
// "inbox.events.v1", with the optional deployment prefix in front.
func (w *Worker) topicFor(name string) string {
	area := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		area = name[:idx]
	}
	return w.TopicPrefix + area + ".events.v1"
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if len(w.Backoff) == 0 {
		return time.Now().Add(5 * time.Second)
	}
	if attempts >= len(w.Backoff) {
		attempts = len(w.Backoff) - 1
	}
	return time.Now().Add(w.Backoff[attempts])
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://memberhub"
}
