package dedup

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestKey(t *testing.T) {
	got := Key("user-1", "ABCDEF")
	if got != "fileintake:dedup:user-1:abcdef" {
		t.Errorf("Key() = %q", got)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("not a redis url", time.Hour); err == nil {
		t.Fatal("expected error for malformed url")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	url := os.Getenv("FILEINTAKE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FILEINTAKE_TEST_REDIS_URL not set")
	}
	idx, err := New(url, time.Minute)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := idx.Ping(ctx); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	owner := uuid.NewString()
	digest := "deadbeef"
	t.Cleanup(func() { _ = idx.Forget(context.Background(), owner, digest) })

	if id, err := idx.Lookup(ctx, owner, digest); err != nil || id != "" {
		t.Fatalf("lookup before remember = %q, %v", id, err)
	}
	if err := idx.Remember(ctx, owner, digest, "file-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if id, err := idx.Lookup(ctx, owner, digest); err != nil || id != "file-1" {
		t.Fatalf("lookup after remember = %q, %v", id, err)
	}
	if id, _ := idx.Lookup(ctx, uuid.NewString(), digest); id != "" {
		t.Fatalf("digest must be scoped to its owner, got %q", id)
	}
}
