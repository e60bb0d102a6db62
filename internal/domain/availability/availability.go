package availability

import (
	"context"
	"sync"

	"carevoice/internal/domain/availability/store"
	"carevoice/internal/platform/logging"
)

// Availability tracks whether the cloud speech paths may still be attempted
// for this session. Both flags start optimistic and are flipped off exactly
// once, on the first authorization-class failure observed during actual use.
// They are never flipped back on within a session.
type Availability struct {
	mu             sync.RWMutex
	cloudSpeech    bool
	cloudSynthesis bool

	st     store.Store
	logger *logging.Logger
}

// New creates an Availability with both cloud paths enabled.
func New(logger *logging.Logger) *Availability {
	if logger == nil {
		logger = logging.Default
	}
	return &Availability{
		cloudSpeech:    true,
		cloudSynthesis: true,
		logger:         logger,
	}
}

// NewWithStore creates an Availability that restores persisted flags and
// writes every disable through the store. Store failures are logged and
// otherwise ignored; the in-memory flags remain authoritative.
func NewWithStore(ctx context.Context, st store.Store, logger *logging.Logger) *Availability {
	a := New(logger)
	a.st = st
	if st == nil {
		return a
	}
	snap, ok, err := st.Load(ctx)
	if err != nil {
		a.logger.Slog().Warn("availability store load failed", "error", err)
		return a
	}
	if ok {
		a.cloudSpeech = snap.CloudSpeechEnabled
		a.cloudSynthesis = snap.CloudSynthesisEnabled
	}
	return a
}

// CloudSpeechEnabled reports whether the cloud transcription path may be tried.
func (a *Availability) CloudSpeechEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cloudSpeech
}

// CloudSynthesisEnabled reports whether the cloud synthesis path may be tried.
func (a *Availability) CloudSynthesisEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cloudSynthesis
}

// DisableCloudSpeech permanently disables the cloud transcription path for
// this session. The flag is set before the call returns so a fallback branch
// running in the same turn never re-attempts the cloud path.
func (a *Availability) DisableCloudSpeech(reason string) {
	a.mu.Lock()
	changed := a.cloudSpeech
	a.cloudSpeech = false
	a.mu.Unlock()
	if changed {
		a.logger.Slog().Warn("cloud speech disabled for session", "reason", reason)
		a.persist()
	}
}

// DisableCloudSynthesis permanently disables the cloud synthesis path for
// this session.
func (a *Availability) DisableCloudSynthesis(reason string) {
	a.mu.Lock()
	changed := a.cloudSynthesis
	a.cloudSynthesis = false
	a.mu.Unlock()
	if changed {
		a.logger.Slog().Warn("cloud synthesis disabled for session", "reason", reason)
		a.persist()
	}
}

// Snapshot returns the current flags.
func (a *Availability) Snapshot() store.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return store.Snapshot{
		CloudSpeechEnabled:    a.cloudSpeech,
		CloudSynthesisEnabled: a.cloudSynthesis,
	}
}

func (a *Availability) persist() {
	if a.st == nil {
		return
	}
	if err := a.st.Save(context.Background(), a.Snapshot()); err != nil {
		a.logger.Slog().Warn("availability store save failed", "error", err)
	}
}
