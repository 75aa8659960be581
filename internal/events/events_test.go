package events

import (
	"context"
	"testing"
)

func TestChannel(t *testing.T) {
	if got := Channel("2025-03-10", "morning"); got != "dispatch:2025-03-10:morning" {
		t.Fatalf("unexpected channel %q", got)
	}
}

func TestRedisPublisher_RequiresClient(t *testing.T) {
	if err := (RedisPublisher{}).Publish(context.Background(), Event{Date: "2025-03-10", Session: "morning"}); err == nil {
		t.Fatalf("expected error without client")
	}
	if _, err := (RedisPublisher{}).Subscribe(context.Background(), "2025-03-10", "morning"); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), Event{Type: TypeTransition}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
