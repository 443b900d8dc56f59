package inbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	inboxsvc "memberhub/internal/app/services/inbox"
	domaininbox "memberhub/internal/domain/inbox"
	domainmember "memberhub/internal/domain/member"
	"memberhub/internal/infra/storage/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type inboxFixture struct {
	svc         *inboxsvc.Service
	inbox       *memory.InboxRepository
	members     *memory.MemberRepository
	outbox      *memory.Outbox
	idempotency *memory.IdempotencyStore
	clock       *fakeClock
}

func newInboxFixture(t *testing.T) *inboxFixture {
	t.Helper()
	f := &inboxFixture{
		inbox:       memory.NewInboxRepository(),
		members:     memory.NewMemberRepository(),
		outbox:      memory.NewOutbox(),
		idempotency: memory.NewIdempotencyStore(),
		clock:       &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	f.svc = &inboxsvc.Service{
		Conversations: f.inbox,
		MessageLog:    f.inbox,
		Members:       f.members,
		Outbox:        f.outbox,
		Idempotency:   f.idempotency,
		Clock:         f.clock.Now,
	}
	return f
}

func (f *inboxFixture) seedMember(t *testing.T, id, username string) {
	t.Helper()
	m, err := domainmember.New(domainmember.CreateParams{
		ID:           domainmember.ID(id),
		Email:        username + "@example.com",
		Username:     username,
		DisplayName:  username,
		PasswordHash: "hash",
		Roles:        []domainmember.Role{domainmember.RoleMember},
		CreatedAt:    f.clock.now,
	})
	if err != nil {
		t.Fatalf("seed member %s: %v", id, err)
	}
	if err := f.members.Save(context.Background(), m); err != nil {
		t.Fatalf("save member %s: %v", id, err)
	}
}

func TestStartConvergesFromBothSides(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	first, err := f.svc.Start(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("alice starts: %v", err)
	}
	second, err := f.svc.Start(ctx, "u2", "u1")
	if err != nil {
		t.Fatalf("bob starts: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected one conversation per pair, got %q and %q", first.ID, second.ID)
	}
	all, err := f.inbox.ByParticipant(ctx, "u1")
	if err != nil {
		t.Fatalf("ByParticipant: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(all))
	}
}

func TestStartRejectsUnknownMember(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")

	_, err := f.svc.Start(context.Background(), "u1", "ghost")
	if !errors.Is(err, domainmember.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStartRejectsSelf(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")

	_, err := f.svc.Start(context.Background(), "u1", "u1")
	if !errors.Is(err, domaininbox.ErrSelfConversation) {
		t.Fatalf("expected ErrSelfConversation, got %v", err)
	}
}

func TestSendMarksRecipientUnreadAndSenderRead(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, err := f.svc.Start(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.clock.Advance(time.Minute)
	msg, err := f.svc.Send(ctx, "u1", conv.ID, "hello bob", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if msg.Body != "hello bob" {
		t.Fatalf("unexpected body %q", msg.Body)
	}

	senderView, err := f.svc.ListConversations(ctx, "u1")
	if err != nil {
		t.Fatalf("ListConversations sender: %v", err)
	}
	if len(senderView) != 1 || senderView[0].Unread {
		t.Fatalf("sender must not see their own message as unread: %+v", senderView)
	}
	if senderView[0].LastMessageText != "hello bob" {
		t.Fatalf("expected preview text, got %q", senderView[0].LastMessageText)
	}
	if senderView[0].LastMessageSender != "u1" {
		t.Fatalf("expected preview sender u1, got %q", senderView[0].LastMessageSender)
	}
	if senderView[0].OtherUsername != "bob" {
		t.Fatalf("expected bob's profile joined, got %q", senderView[0].OtherUsername)
	}

	recipientView, err := f.svc.ListConversations(ctx, "u2")
	if err != nil {
		t.Fatalf("ListConversations recipient: %v", err)
	}
	if len(recipientView) != 1 || !recipientView[0].Unread {
		t.Fatalf("recipient must see the conversation unread: %+v", recipientView)
	}
}

func TestMarkReadClearsUnread(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u1", conv.ID, "hello", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	f.clock.Advance(time.Minute)
	at, err := f.svc.MarkRead(ctx, "u2", conv.ID)
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if !at.Equal(f.clock.now) {
		t.Fatalf("expected read timestamp %v, got %v", f.clock.now, at)
	}
	view, _ := f.svc.ListConversations(ctx, "u2")
	if len(view) != 1 || view[0].Unread {
		t.Fatalf("expected conversation read after MarkRead: %+v", view)
	}
}

func TestMarkReadAtMessageTimestampCountsAsRead(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u1", conv.ID, "hello", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	// Clock does not advance: the read cursor lands exactly on the
	// message timestamp.
	if _, err := f.svc.MarkRead(ctx, "u2", conv.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	view, _ := f.svc.ListConversations(ctx, "u2")
	if len(view) != 1 || view[0].Unread {
		t.Fatalf("cursor equal to last message must count as read: %+v", view)
	}
}

func TestMarkReadCursorNeverMovesBackwards(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u1", conv.ID, "hello", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	f.clock.Advance(time.Minute)
	if _, err := f.svc.MarkRead(ctx, "u2", conv.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	// A stale mark, timestamped before the message, must not drag the
	// cursor back and resurface the conversation as unread.
	f.clock.Advance(-10 * time.Minute)
	if _, err := f.svc.MarkRead(ctx, "u2", conv.ID); err != nil {
		t.Fatalf("stale MarkRead: %v", err)
	}
	view, err := f.svc.ListConversations(ctx, "u2")
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(view) != 1 || view[0].Unread {
		t.Fatalf("expected conversation to stay read after stale mark: %+v", view)
	}
}

func TestConversationLifecycleBetweenTwoMembers(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	unread := func(member string) bool {
		t.Helper()
		view, err := f.svc.ListConversations(ctx, domainmember.ID(member))
		if err != nil {
			t.Fatalf("ListConversations %s: %v", member, err)
		}
		if len(view) != 1 {
			t.Fatalf("expected 1 conversation for %s, got %d", member, len(view))
		}
		return view[0].Unread
	}

	conv, err := f.svc.Start(ctx, "u1", "u2")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u1", conv.ID, "hi bob", ""); err != nil {
		t.Fatalf("alice sends: %v", err)
	}
	if unread("u1") || !unread("u2") {
		t.Fatal("after alice sends, only bob should be unread")
	}

	f.clock.Advance(time.Minute)
	if _, err := f.svc.MarkRead(ctx, "u2", conv.ID); err != nil {
		t.Fatalf("bob marks read: %v", err)
	}
	if unread("u2") {
		t.Fatal("bob should be caught up after marking read")
	}

	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u2", conv.ID, "hi alice", ""); err != nil {
		t.Fatalf("bob replies: %v", err)
	}
	if !unread("u1") || unread("u2") {
		t.Fatal("after bob replies, only alice should be unread")
	}

	f.clock.Advance(time.Minute)
	if _, err := f.svc.MarkRead(ctx, "u1", conv.ID); err != nil {
		t.Fatalf("alice marks read: %v", err)
	}
	if unread("u1") {
		t.Fatal("alice should be caught up after marking read")
	}
}

func TestMarkReadRejectsStranger(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	if _, err := f.svc.MarkRead(ctx, "mallory", conv.ID); !errors.Is(err, domaininbox.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestMessagesJoinsSenderProfiles(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u1", conv.ID, "first", ""); err != nil {
		t.Fatalf("Send first: %v", err)
	}
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u2", conv.ID, "second", ""); err != nil {
		t.Fatalf("Send second: %v", err)
	}

	views, err := f.svc.Messages(ctx, "u1", conv.ID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(views))
	}
	if views[0].Body != "first" || views[1].Body != "second" {
		t.Fatalf("messages out of order: %q, %q", views[0].Body, views[1].Body)
	}
	if views[0].SenderName != "alice" || views[1].SenderName != "bob" {
		t.Fatalf("sender profiles not joined: %q, %q", views[0].SenderName, views[1].SenderName)
	}

	if _, err := f.svc.Messages(ctx, "mallory", conv.ID); !errors.Is(err, domaininbox.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant for stranger, got %v", err)
	}
}

func TestSendIdempotencyKeyReplay(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	f.clock.Advance(time.Minute)
	first, err := f.svc.Send(ctx, "u1", conv.ID, "hello", "key-1")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	f.clock.Advance(time.Minute)
	replay, err := f.svc.Send(ctx, "u1", conv.ID, "hello", "key-1")
	if err != nil {
		t.Fatalf("Send replay: %v", err)
	}
	if replay.ID != first.ID {
		t.Fatalf("replay returned a different message: %q vs %q", replay.ID, first.ID)
	}
	messages, err := f.inbox.ByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ByConversation: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(messages))
	}
}

func TestSendRecordsOutboxEvent(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	if _, err := f.svc.Send(ctx, "u1", conv.ID, "hello", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := len(f.outbox.Records()); got != 1 {
		t.Fatalf("expected 1 outbox record, got %d", got)
	}
}

func TestDeleteCascadesMessages(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	ctx := context.Background()

	conv, _ := f.svc.Start(ctx, "u1", "u2")
	if _, err := f.svc.Send(ctx, "u1", conv.ID, "hello", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := f.svc.Delete(ctx, "mallory", conv.ID); !errors.Is(err, domaininbox.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant for stranger, got %v", err)
	}
	if err := f.svc.Delete(ctx, "u2", conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.inbox.ByID(ctx, conv.ID); !errors.Is(err, domaininbox.ErrConversationNotFound) {
		t.Fatalf("expected conversation gone, got %v", err)
	}
	messages, err := f.inbox.ByConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("ByConversation: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected messages removed, got %d", len(messages))
	}
}

func TestListConversationsOrderedByActivity(t *testing.T) {
	f := newInboxFixture(t)
	f.seedMember(t, "u1", "alice")
	f.seedMember(t, "u2", "bob")
	f.seedMember(t, "u3", "carol")
	ctx := context.Background()

	withBob, _ := f.svc.Start(ctx, "u1", "u2")
	f.clock.Advance(time.Minute)
	withCarol, _ := f.svc.Start(ctx, "u1", "u3")
	f.clock.Advance(time.Minute)
	if _, err := f.svc.Send(ctx, "u1", withBob.ID, "ping", ""); err != nil {
		t.Fatalf("Send: %v", err)
	}

	view, err := f.svc.ListConversations(ctx, "u1")
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(view) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(view))
	}
	if view[0].ID != withBob.ID {
		t.Fatalf("expected most recent activity first, got %q", view[0].ID)
	}
	if view[1].ID != withCarol.ID {
		t.Fatalf("expected conversation without messages last, got %q", view[1].ID)
	}
}
