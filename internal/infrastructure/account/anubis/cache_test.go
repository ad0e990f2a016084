package anubis

import (
	"testing"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/user"
)

func TestPrincipalCache_SetGet(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 10)
	cache.Set("k1", user.Principal{UserID: "u-1"})

	principal, ok := cache.Get("k1")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if principal.UserID != "u-1" {
		t.Fatalf("unexpected user id: %s", principal.UserID)
	}
}

func TestPrincipalCache_Expired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := newPrincipalCache(time.Minute, 10)
	cache.now = func() time.Time { return now }
	cache.Set("k1", user.Principal{UserID: "u-1"})

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("k1"); ok {
		t.Fatalf("expected cache miss after expiry")
	}
}

func TestPrincipalCache_BoundedSize(t *testing.T) {
	t.Parallel()

	cache := newPrincipalCache(time.Minute, 2)
	cache.Set("a", user.Principal{UserID: "a"})
	cache.Set("b", user.Principal{UserID: "b"})
	cache.Set("c", user.Principal{UserID: "c"})

	if len(cache.entries) > 2 {
		t.Fatalf("expected at most 2 entries, got %d", len(cache.entries))
	}
	if _, ok := cache.Get("c"); !ok {
		t.Fatalf("expected newest entry to be kept")
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	if got := buildURL("http://x/", "v1/introspect"); got != "http://x/v1/introspect" {
		t.Fatalf("unexpected url %s", got)
	}
	if got := buildURL("http://x", "https://y/z"); got != "https://y/z" {
		t.Fatalf("unexpected url %s", got)
	}
}
