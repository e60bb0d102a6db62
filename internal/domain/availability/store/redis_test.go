package store

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestRedisStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	st, err := NewRedis(Config{
		Namespace: "portal-a",
		Redis: &RedisConfig{
			Addr: mr.Addr(),
		},
	})
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close(ctx)
	})

	if _, ok, err := st.Load(ctx); err != nil || ok {
		t.Fatalf("expected empty store, got ok=%v err=%v", ok, err)
	}

	snap := Snapshot{CloudSpeechEnabled: true, CloudSynthesisEnabled: false}
	if err := st.Save(ctx, snap); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, ok, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !ok {
		t.Fatalf("expected snapshot after save")
	}
	if got != snap {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestRedisStoreNamespaces(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	stA, err := NewRedis(Config{Namespace: "a", Redis: &RedisConfig{Addr: mr.Addr()}})
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}
	stB, err := NewRedis(Config{Namespace: "b", Redis: &RedisConfig{Addr: mr.Addr()}})
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}
	t.Cleanup(func() {
		_ = stA.Close(ctx)
		_ = stB.Close(ctx)
	})

	if err := stA.Save(ctx, Snapshot{CloudSpeechEnabled: false, CloudSynthesisEnabled: true}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if _, ok, err := stB.Load(ctx); err != nil || ok {
		t.Fatalf("namespace b should be empty, got ok=%v err=%v", ok, err)
	}
}

func TestRedisStoreConfigErrors(t *testing.T) {
	if _, err := NewRedis(Config{}); err == nil {
		t.Fatalf("expected error for missing redis config")
	}
	if _, err := NewRedis(Config{Redis: &RedisConfig{}}); err == nil {
		t.Fatalf("expected error for missing redis address")
	}
}
