package outbox_test

import (
	"context"
	"testing"
	"time"

	appoutbox "memberhub/internal/app/outbox"
	domaininbox "memberhub/internal/domain/inbox"
	"memberhub/internal/infra/storage/memory"
)

func TestRecordEncodesDomainEvent(t *testing.T) {
	box := memory.NewOutbox()

	sentAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := &domaininbox.Message{
		ID:             "m1",
		ConversationID: "c1",
		SenderID:       "u1",
		Body:           "hello",
		CreatedAt:      sentAt,
	}
	event := domaininbox.NewMessageSentEvent(msg, "u2", sentAt)

	if err := appoutbox.Record(context.Background(), box, nil, event); err != nil {
		t.Fatalf("Record: %v", err)
	}
	records := box.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Name != domaininbox.MessageSentEventName {
		t.Fatalf("unexpected event name %q", rec.Name)
	}
	if rec.Aggregate != "c1" {
		t.Fatalf("expected conversation aggregate, got %q", rec.Aggregate)
	}
	if !rec.OccurredAt.Equal(sentAt) {
		t.Fatalf("expected occurred_at %v, got %v", sentAt, rec.OccurredAt)
	}
	if rec.ID == "" || len(rec.Payload) == 0 {
		t.Fatalf("record not fully populated: %+v", rec)
	}
}

func TestRecordNilOutboxIsNoop(t *testing.T) {
	msg := &domaininbox.Message{ID: "m1", ConversationID: "c1", SenderID: "u1", Body: "hi", CreatedAt: time.Now()}
	event := domaininbox.NewMessageSentEvent(msg, "u2", msg.CreatedAt)

	if err := appoutbox.Record(context.Background(), nil, nil, event); err != nil {
		t.Fatalf("expected nil outbox to be a no-op, got %v", err)
	}
}
