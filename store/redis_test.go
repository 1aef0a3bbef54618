package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rushteam/moodbite/core"
)

// 需要真实 Redis：MOODBITE_TEST_REDIS=localhost:6379 go test ./store/
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("MOODBITE_TEST_REDIS")
	if addr == "" {
		t.Skip("MOODBITE_TEST_REDIS 未设置，跳过 Redis 测试")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, 15, WithPrefix("test:"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	key := "moodbite:test:key"
	defer s.Delete(ctx, key)
	if _, err := s.Get(ctx, key); !core.IsStoreNotFound(err) {
		t.Fatalf("Get(missing) err = %v", err)
	}
	if err := s.Set(ctx, key, []byte("v"), 60); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, key)
	if err != nil || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
	batch, err := s.BatchGet(ctx, []string{key, key + ":missing"})
	if err != nil || len(batch) != 1 {
		t.Fatalf("BatchGet() = %v, %v", batch, err)
	}

	hkey := "moodbite:test:hash"
	defer s.Delete(ctx, hkey)
	if err := s.HSet(ctx, hkey, "1", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.HSetMany(ctx, hkey, map[string][]byte{"2": []byte("two"), "3": []byte("three")}); err != nil {
		t.Fatal(err)
	}
	fields, err := s.HGetAll(ctx, hkey)
	if err != nil || len(fields) != 3 || string(fields["1"]) != "one" {
		t.Fatalf("HGetAll() = %v, %v", fields, err)
	}
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisStore(ctx, "127.0.0.1:1", 0)
	if !core.IsUnavailable(err) {
		t.Errorf("err = %v, want UNAVAILABLE", err)
	}
}
