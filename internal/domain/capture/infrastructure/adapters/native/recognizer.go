package native

import (
	"sync"

	"carevoice/internal/domain/capture/inter"
	platformerrors "carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
)

// Recognizer adapts the platform recognition facility to the capture
// strategy interface. It is the preferred strategy: lower latency and no
// audio upload.
type Recognizer struct {
	facility inter.Facility
	logger   *logging.Logger

	mu       sync.Mutex
	listener inter.Listener
	active   bool
}

// NewRecognizer wraps a platform recognition facility.
func NewRecognizer(facility inter.Facility, logger *logging.Logger) *Recognizer {
	if logger == nil {
		logger = logging.Default
	}
	return &Recognizer{
		facility: facility,
		logger:   logger,
	}
}

func (r *Recognizer) Strategy() inter.Strategy {
	return inter.StrategyPlatformNative
}

func (r *Recognizer) Start(language string, listener inter.Listener) error {
	r.mu.Lock()
	if r.active {
		r.facility.Abort()
	}
	r.listener = listener
	r.active = true
	r.mu.Unlock()

	events := inter.FacilityEvents{
		OnPartial: func(text string) {
			if l := r.currentListener(); l != nil {
				l.OnPartial(text)
			}
		},
		OnFinal: func(text string) {
			if l := r.currentListener(); l != nil {
				l.OnFinal(text)
			}
		},
		OnError: func(code string) {
			l := r.currentListener()
			if l == nil {
				return
			}
			l.OnError(mapFacilityError(code))
		},
		OnEnd: func() {
			if l := r.currentListener(); l != nil {
				l.OnTranscribing()
			}
		},
	}

	if err := r.facility.Start(language, events); err != nil {
		r.mu.Lock()
		r.listener = nil
		r.active = false
		r.mu.Unlock()
		return platformerrors.Wrap(platformerrors.KindNoCapability, "native.start",
			"platform recognizer unavailable", err)
	}
	return nil
}

func (r *Recognizer) Stop() error {
	r.facility.Stop()
	return nil
}

// Abort detaches the listener before tearing the facility down, so no event
// can reach the coordinator after this call returns.
func (r *Recognizer) Abort() {
	r.mu.Lock()
	r.listener = nil
	r.active = false
	r.mu.Unlock()
	r.facility.Abort()
}

func (r *Recognizer) Close() error {
	r.Abort()
	return nil
}

func (r *Recognizer) currentListener() inter.Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listener
}

// mapFacilityError turns platform recognizer error codes into the voice
// error taxonomy. A permission denial is terminal for the whole capture
// feature, not just this strategy.
func mapFacilityError(code string) error {
	switch code {
	case inter.FacilityErrNotAllowed:
		return platformerrors.New(platformerrors.KindPermissionDenied, "native.recognize",
			"microphone permission denied")
	case inter.FacilityErrNoSpeech:
		return platformerrors.New(platformerrors.KindEmptyResult, "native.recognize",
			"no speech detected")
	default:
		return platformerrors.New(platformerrors.KindTranscription, "native.recognize",
			"platform recognizer error: "+code)
	}
}
