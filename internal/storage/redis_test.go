package storage

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/starford/jera/internal/apperr"
)

// testRedis connects to JERA_TEST_REDIS_URL or skips.
func testRedis(t *testing.T) *Redis {
	t.Helper()
	url := os.Getenv("JERA_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JERA_TEST_REDIS_URL not set")
	}
	r, err := NewRedis(context.Background(), url, "jera-test:"+uuid.NewString())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedis_PutGetDelete(t *testing.T) {
	r := testRedis(t)
	ctx := context.Background()

	if err := r.Put(ctx, "one", "hello"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := r.Get(ctx, "one")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "hello" {
		t.Errorf("content = %q", got)
	}

	items, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].ID != "one" {
		t.Errorf("List = %+v", items)
	}

	if err := r.Delete(ctx, "one"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get(ctx, "one"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := r.Delete(ctx, "one"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestRedis_Key(t *testing.T) {
	r := NewRedisWithClient(nil, "")
	if got := r.key("abc"); got != "jera:content:abc" {
		t.Errorf("key = %q", got)
	}
}
