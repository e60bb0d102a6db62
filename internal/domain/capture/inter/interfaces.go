package inter

import "time"

// Strategy identifies how microphone audio becomes text.
type Strategy string

const (
	StrategyPlatformNative Strategy = "platform-native"
	StrategyCloudUpload    Strategy = "cloud-upload"
)

// State is the recognition session lifecycle.
type State string

const (
	StateIdle         State = "idle"
	StateListening    State = "listening"
	StateStopping     State = "stopping"
	StateTranscribing State = "transcribing"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// Recognizer is one capture strategy behind the coordinator's state machine.
// Both strategies emit the same listener events so the coordinator stays
// strategy-agnostic.
type Recognizer interface {
	// Strategy identifies the recognizer.
	Strategy() Strategy

	// Start begins listening and delivers events to the listener until a
	// final result or error is produced.
	Start(language string, listener Listener) error

	// Stop requests finalization of the in-flight capture; events continue
	// to flow to the listener until OnFinal or OnError fires.
	Stop() error

	// Abort tears the capture down immediately. No listener events fire
	// after Abort returns.
	Abort()

	// Close releases the recognizer's resources.
	Close() error
}

// Listener receives recognizer events.
type Listener interface {
	// OnPartial delivers an interim transcript; may fire repeatedly.
	OnPartial(text string)

	// OnTranscribing signals that audio intake has ended and the final
	// result is being produced.
	OnTranscribing()

	// OnFinal delivers the final transcript, exactly once per capture.
	OnFinal(text string)

	// OnError terminates the capture with a typed error.
	OnError(err error)
}

// Facility is the platform recognition service, an event-based black box.
// Implementations bridge whatever the host platform exposes (for the portal
// panels, recognition events relayed from the browser).
type Facility interface {
	// Start begins recognition; events fire until Stop, Abort or end.
	Start(language string, events FacilityEvents) error

	// Stop ends audio intake gracefully; the facility still emits a final
	// result (possibly empty) followed by OnEnd.
	Stop()

	// Abort ends recognition immediately. No callbacks fire after return.
	Abort()
}

// FacilityEvents carries the platform recognizer callbacks.
type FacilityEvents struct {
	OnPartial func(text string)
	OnFinal   func(text string)
	OnError   func(code string)
	OnEnd     func()
}

// Facility error codes with dedicated handling.
const (
	FacilityErrNotAllowed = "not-allowed"
	FacilityErrNoSpeech   = "no-speech"
)

// AudioSource wraps the platform microphone stream for the cloud-upload
// strategy.
type AudioSource interface {
	// Start opens the stream and returns a channel of PCM frames. The
	// channel closes when Stop is called or the source ends.
	Start(sampleRate int) (<-chan []byte, error)

	// Stop closes the stream and releases the microphone.
	Stop()
}

// Config tunes a capture coordinator.
type Config struct {
	Language          string
	SampleRate        int
	MaxRecordDuration time.Duration
}
