package availability

import (
	"context"
	"testing"

	"carevoice/internal/domain/availability/store"
)

func TestNewStartsOptimistic(t *testing.T) {
	a := New(nil)
	if !a.CloudSpeechEnabled() {
		t.Errorf("cloud speech should start enabled")
	}
	if !a.CloudSynthesisEnabled() {
		t.Errorf("cloud synthesis should start enabled")
	}
}

func TestDisableIsOneWay(t *testing.T) {
	a := New(nil)

	a.DisableCloudSynthesis("api not enabled")
	if a.CloudSynthesisEnabled() {
		t.Fatalf("cloud synthesis should be disabled")
	}
	if !a.CloudSpeechEnabled() {
		t.Fatalf("cloud speech should be untouched")
	}

	// repeated disables are a no-op
	a.DisableCloudSynthesis("again")
	if a.CloudSynthesisEnabled() {
		t.Fatalf("cloud synthesis should stay disabled")
	}
}

func TestSnapshotReflectsFlags(t *testing.T) {
	a := New(nil)
	a.DisableCloudSpeech("permission revoked")

	snap := a.Snapshot()
	if snap.CloudSpeechEnabled {
		t.Errorf("snapshot should carry disabled speech flag")
	}
	if !snap.CloudSynthesisEnabled {
		t.Errorf("snapshot should carry enabled synthesis flag")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	a := NewWithStore(ctx, st, nil)
	a.DisableCloudSynthesis("api not enabled")

	// a second session restores the persisted degraded mode
	b := NewWithStore(ctx, st, nil)
	if b.CloudSynthesisEnabled() {
		t.Fatalf("restored session should see synthesis disabled")
	}
	if !b.CloudSpeechEnabled() {
		t.Fatalf("restored session should see speech enabled")
	}
}
