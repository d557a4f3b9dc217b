package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

func TestConfigOptions(t *testing.T) {
	opts, err := Config{URL: "redis://:secret@cache:6380/2"}.options()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Errorf("unexpected options from url: %+v", opts)
	}

	opts, err = Config{Addr: "localhost:6379", DB: 1}.options()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 1 {
		t.Errorf("unexpected discrete options: %+v", opts)
	}

	if _, err := (Config{URL: "http://nope"}).options(); err == nil {
		t.Error("expected error for non-redis scheme")
	}
}

func TestDedupKey(t *testing.T) {
	if got := dedupKey("history", "shp-1:form-42"); got != "dedup:history:shp-1:form-42" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestDedupRelease_WrapsStoreError(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	err := NewDedupChecker(client).Release(context.Background(), "history", "shp-1:form-42")
	if err == nil || !strings.HasPrefix(err.Error(), "dedup release: ") {
		t.Fatalf("expected wrapped release error, got %v", err)
	}
}
