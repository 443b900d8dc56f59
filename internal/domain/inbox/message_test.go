package inbox_test

import (
	"errors"
	"strings"
	"testing"

	"memberhub/internal/domain/inbox"
)

func TestValidateBody(t *testing.T) {
	body, err := inbox.ValidateBody("  hello there  ")
	if err != nil {
		t.Fatalf("ValidateBody error: %v", err)
	}
	if body != "hello there" {
		t.Fatalf("expected trimmed body, got %q", body)
	}
}

func TestValidateBodyEmpty(t *testing.T) {
	if _, err := inbox.ValidateBody("   \n\t "); !errors.Is(err, inbox.ErrBodyRequired) {
		t.Fatalf("expected ErrBodyRequired, got %v", err)
	}
}

func TestValidateBodyTooLong(t *testing.T) {
	atLimit := strings.Repeat("ä", inbox.MaxBodyLength)
	if _, err := inbox.ValidateBody(atLimit); err != nil {
		t.Fatalf("body at the limit rejected: %v", err)
	}
	if _, err := inbox.ValidateBody(atLimit + "x"); !errors.Is(err, inbox.ErrBodyTooLong) {
		t.Fatalf("expected ErrBodyTooLong, got %v", err)
	}
}

func TestNewMessageRequiresSender(t *testing.T) {
	_, err := inbox.NewMessage(inbox.NewMessageParams{
		ID:             "m1",
		ConversationID: "c1",
		SenderID:       " ",
		Body:           "hi",
	})
	if !errors.Is(err, inbox.ErrSenderRequired) {
		t.Fatalf("expected ErrSenderRequired, got %v", err)
	}
}
