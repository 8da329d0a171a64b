package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	Use(NewMemoryStore())
	ctx := context.Background()

	type payload struct{ Name string }
	if err := Set(ctx, "k", payload{Name: "tee"}, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if !Get(ctx, "k", &got) {
		t.Fatal("expected cache hit")
	}
	if got.Name != "tee" {
		t.Errorf("got %q, want tee", got.Name)
	}

	_ = Forget(ctx, "k")
	if Get(ctx, "k", &got) {
		t.Error("expected miss after Forget")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_ = s.Set(context.Background(), "k", []byte("1"), time.Minute)
	if _, ok := s.Get(context.Background(), "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := s.Get(context.Background(), "k"); ok {
		t.Error("expected miss after expiry")
	}
}
