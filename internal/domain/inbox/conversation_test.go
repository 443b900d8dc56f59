package inbox_test

import (
	"errors"
	"testing"
	"time"

	"memberhub/internal/domain/inbox"
	"memberhub/internal/domain/member"
)

func TestPairKeyIsCanonical(t *testing.T) {
	if inbox.PairKey("alice", "bob") != inbox.PairKey("bob", "alice") {
		t.Fatalf("pair key differs depending on argument order")
	}
	if got := inbox.PairKey("alice", "bob"); got != "alice|bob" {
		t.Fatalf("expected alice|bob, got %q", got)
	}
}

func TestNewConversationSortsParticipants(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c, err := inbox.NewConversation(inbox.NewConversationParams{
		ID:        "c1",
		CreatedBy: "zoe",
		Other:     "adam",
		Now:       now,
	})
	if err != nil {
		t.Fatalf("NewConversation error: %v", err)
	}
	if c.ParticipantOne != "adam" || c.ParticipantTwo != "zoe" {
		t.Fatalf("participants not sorted: %q, %q", c.ParticipantOne, c.ParticipantTwo)
	}
	if c.CreatedBy != "zoe" {
		t.Fatalf("expected creator zoe, got %q", c.CreatedBy)
	}
	if !c.CreatedAt.Equal(now) {
		t.Fatalf("expected created_at %v, got %v", now, c.CreatedAt)
	}
}

func TestNewConversationRejectsSelf(t *testing.T) {
	_, err := inbox.NewConversation(inbox.NewConversationParams{
		ID:        "c1",
		CreatedBy: "alice",
		Other:     "alice",
	})
	if !errors.Is(err, inbox.ErrSelfConversation) {
		t.Fatalf("expected ErrSelfConversation, got %v", err)
	}
}

func TestNewConversationRequiresParticipants(t *testing.T) {
	_, err := inbox.NewConversation(inbox.NewConversationParams{
		ID:        "c1",
		CreatedBy: "alice",
		Other:     "  ",
	})
	if !errors.Is(err, inbox.ErrParticipantsRequired) {
		t.Fatalf("expected ErrParticipantsRequired, got %v", err)
	}
}

func TestConversationOther(t *testing.T) {
	c := &inbox.Conversation{ParticipantOne: "adam", ParticipantTwo: "zoe"}
	if got := c.Other("adam"); got != "zoe" {
		t.Fatalf("expected zoe, got %q", got)
	}
	if got := c.Other("zoe"); got != "adam" {
		t.Fatalf("expected adam, got %q", got)
	}
}

func TestUnreadFor(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name          string
		lastMessageAt time.Time
		cursor        time.Time
		unread        bool
	}{
		{name: "no messages", unread: false},
		{name: "no messages with cursor", cursor: base, unread: false},
		{name: "never opened", lastMessageAt: base, unread: true},
		{name: "cursor before message", lastMessageAt: base, cursor: base.Add(-time.Minute), unread: true},
		{name: "cursor equals message", lastMessageAt: base, cursor: base, unread: false},
		{name: "cursor after message", lastMessageAt: base, cursor: base.Add(time.Minute), unread: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &inbox.Conversation{
				ParticipantOne: "adam",
				ParticipantTwo: "zoe",
				LastMessageAt:  tt.lastMessageAt,
				LastReadOne:    tt.cursor,
			}
			if got := c.UnreadFor("adam"); got != tt.unread {
				t.Fatalf("expected unread=%v, got %v", tt.unread, got)
			}
		})
	}
}

func TestLastReadByStranger(t *testing.T) {
	c := &inbox.Conversation{
		ParticipantOne: "adam",
		ParticipantTwo: "zoe",
		LastReadOne:    time.Now(),
		LastReadTwo:    time.Now(),
	}
	if got := c.LastReadBy(member.ID("mallory")); !got.IsZero() {
		t.Fatalf("expected zero cursor for stranger, got %v", got)
	}
}
