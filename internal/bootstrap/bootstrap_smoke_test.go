package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
)

func newSmokeState(t *testing.T) *appState {
	t.Helper()
	state := &appState{}
	ctx := context.Background()

	if err := initConfig(ctx, state); err != nil {
		t.Fatalf("initConfig: %v", err)
	}
	// Keep the smoke run self-contained on disk.
	state.config.Storage.DSN = filepath.Join(t.TempDir(), "smoke.db")
	state.config.Log.Dir = ""

	for _, step := range []struct {
		name string
		run  func(context.Context, *appState) error
	}{
		{"initLogging", initLogging},
		{"initStorage", initStorage},
		{"initAvailability", initAvailability},
		{"initVoiceDomain", initVoiceDomain},
		{"initPanel", initPanel},
	} {
		if err := step.run(ctx, state); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
	}

	t.Cleanup(func() {
		state.panel.Close()
		state.stream.Close()
		if state.availStore != nil {
			state.availStore.Close(context.Background())
		}
		state.logger.Close()
	})
	return state
}

func TestSmokeInitChain(t *testing.T) {
	state := newSmokeState(t)

	if state.config == nil || state.logger == nil {
		t.Fatal("config or logger missing after init")
	}
	if state.capture == nil || state.speech == nil || state.panel == nil {
		t.Fatal("voice wiring incomplete after init")
	}
	if state.prober == nil || state.stream == nil || state.bridge == nil {
		t.Fatal("transport wiring incomplete after init")
	}
	if !state.availability.CloudSpeechEnabled() || !state.availability.CloudSynthesisEnabled() {
		t.Fatal("availability must start optimistic")
	}
}

func TestSmokeBuildServer(t *testing.T) {
	state := newSmokeState(t)

	server, err := buildServer(state)
	if err != nil {
		t.Fatalf("buildServer: %v", err)
	}
	if server.Handler == nil {
		t.Fatal("server has no handler")
	}
	if server.Addr == "" {
		t.Fatal("server has no listen address")
	}
}
