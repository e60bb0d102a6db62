package capture

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"carevoice/internal/domain/availability"
	"carevoice/internal/domain/capture/inter"
	"carevoice/internal/domain/eventbus"
	platformerrors "carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
)

// Coordinator owns the single live recognition session. It picks a capture
// strategy per call, bridges recognizer events into the session state
// machine, and fans results out to subscribers. At most one session is live;
// starting a new capture aborts the previous one before the new recognizer
// touches the microphone.
type Coordinator struct {
	cfg    inter.Config
	native inter.Recognizer
	cloud  inter.Recognizer
	avail  *availability.Availability
	logger *logging.Logger
	bus    evbus.Bus

	mu      sync.Mutex
	session *Session
	active  inter.Recognizer

	onUpdate []func(text string)
	onFinal  []func(text string)
	onError  []func(kind platformerrors.Kind)
}

// Dependencies carries the coordinator's collaborators. Either recognizer
// may be nil when the platform lacks that strategy.
type Dependencies struct {
	Native       inter.Recognizer
	Cloud        inter.Recognizer
	Availability *availability.Availability
	Logger       *logging.Logger
	Bus          evbus.Bus
}

// NewCoordinator creates a capture coordinator.
func NewCoordinator(cfg inter.Config, deps Dependencies) *Coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default
	}
	bus := deps.Bus
	if bus == nil {
		bus = eventbus.Get()
	}
	avail := deps.Availability
	if avail == nil {
		avail = availability.New(logger)
	}
	return &Coordinator{
		cfg:    cfg,
		native: deps.Native,
		cloud:  deps.Cloud,
		avail:  avail,
		logger: logger,
		bus:    bus,
	}
}

// OnTranscriptUpdate subscribes to interim transcripts.
func (c *Coordinator) OnTranscriptUpdate(fn func(text string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = append(c.onUpdate, fn)
}

// OnTranscriptFinal subscribes to final transcripts.
func (c *Coordinator) OnTranscriptFinal(fn func(text string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinal = append(c.onFinal, fn)
}

// OnError subscribes to terminal capture failures.
func (c *Coordinator) OnError(fn func(kind platformerrors.Kind)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = append(c.onError, fn)
}

// State reports the live session state, or idle when none is live.
func (c *Coordinator) State() inter.State {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return inter.StateIdle
	}
	return sess.State()
}

// StartCapture begins a new capture attempt. Failures surface through the
// OnError subscribers rather than a return value, matching the fire-and-
// observe contract the panels use.
func (c *Coordinator) StartCapture(language string) {
	if language == "" {
		language = c.cfg.Language
	}

	c.mu.Lock()
	// a new capture replaces any live one; the old recognizer is torn down
	// before the new one starts so the microphone is never shared
	if c.active != nil {
		c.active.Abort()
	}
	c.session = nil
	c.active = nil

	rec := c.chooseRecognizerLocked()
	if rec == nil {
		sess := newSession(inter.StrategyPlatformNative)
		sess.advance(inter.StateListening)
		sess.fail(platformerrors.New(platformerrors.KindNoCapability, "capture.start",
			"no capture strategy available"))
		c.mu.Unlock()
		c.logger.Slog().Warn("capture unavailable", "language", language)
		c.finish(sess, platformerrors.KindNoCapability)
		return
	}

	sess := newSession(rec.Strategy())
	sess.advance(inter.StateListening)
	c.session = sess
	c.active = rec
	c.mu.Unlock()

	c.bus.Publish(eventbus.EventCaptureStarted, eventbus.CaptureEventData{
		SessionID: sess.ID,
		Strategy:  string(sess.Strategy),
	})

	if err := rec.Start(language, &sessionListener{c: c, sess: sess}); err != nil {
		kind := platformerrors.KindOf(err)
		if kind == platformerrors.KindUnknown {
			kind = platformerrors.KindNoCapability
		}
		sess.fail(err)
		c.logger.Slog().Warn("capture start failed", "strategy", sess.Strategy, "error", err)
		c.finish(sess, kind)
	}
}

// StopCapture requests finalization of the live capture. Valid only while
// listening; a no-op in every other state.
func (c *Coordinator) StopCapture() {
	c.mu.Lock()
	sess := c.session
	rec := c.active
	c.mu.Unlock()

	if sess == nil || rec == nil {
		return
	}
	if !sess.advance(inter.StateStopping) {
		return
	}
	if err := rec.Stop(); err != nil {
		sess.fail(platformerrors.Wrap(platformerrors.KindTranscription, "capture.stop",
			"recognizer stop failed", err))
		c.finish(sess, platformerrors.KindTranscription)
	}
}

// Close aborts any live session and releases both recognizers.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.active != nil {
		c.active.Abort()
	}
	c.session = nil
	c.active = nil
	native, cloud := c.native, c.cloud
	c.mu.Unlock()

	if native != nil {
		_ = native.Close()
	}
	if cloud != nil {
		return cloud.Close()
	}
	return nil
}

// chooseRecognizerLocked prefers the platform-native strategy when present;
// the cloud-upload strategy is only eligible while the session's cloud
// speech flag is still on.
func (c *Coordinator) chooseRecognizerLocked() inter.Recognizer {
	if c.native != nil {
		return c.native
	}
	if c.cloud != nil && c.avail.CloudSpeechEnabled() {
		return c.cloud
	}
	return nil
}

// finish emits the terminal observation for sess and resets to idle.
func (c *Coordinator) finish(sess *Session, errKind platformerrors.Kind) {
	c.mu.Lock()
	if c.session == sess {
		c.session = nil
		c.active = nil
	}
	finalFns := append([]func(string){}, c.onFinal...)
	errorFns := append([]func(platformerrors.Kind){}, c.onError...)
	c.mu.Unlock()

	if sess.State() == inter.StateCompleted {
		text := sess.FinalText()
		for _, fn := range finalFns {
			fn(text)
		}
		c.bus.Publish(eventbus.EventCaptureFinal, eventbus.CaptureEventData{
			SessionID: sess.ID,
			Strategy:  string(sess.Strategy),
			Text:      text,
			IsFinal:   true,
		})
	} else {
		for _, fn := range errorFns {
			fn(errKind)
		}
		c.bus.Publish(eventbus.EventCaptureError, eventbus.CaptureEventData{
			SessionID: sess.ID,
			Strategy:  string(sess.Strategy),
			ErrorKind: string(errKind),
		})
	}

	c.bus.Publish(eventbus.EventCaptureStopped, eventbus.CaptureEventData{
		SessionID: sess.ID,
		Strategy:  string(sess.Strategy),
	})
}

// sessionListener routes recognizer events into one session and drops
// events from sessions that are no longer current.
type sessionListener struct {
	c    *Coordinator
	sess *Session
}

func (l *sessionListener) current() bool {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	return l.c.session == l.sess
}

func (l *sessionListener) OnPartial(text string) {
	if !l.current() {
		return
	}
	if !l.sess.setPartial(text) {
		return
	}
	l.c.mu.Lock()
	fns := append([]func(string){}, l.c.onUpdate...)
	l.c.mu.Unlock()
	for _, fn := range fns {
		fn(text)
	}
	l.c.bus.Publish(eventbus.EventCapturePartial, eventbus.CaptureEventData{
		SessionID: l.sess.ID,
		Strategy:  string(l.sess.Strategy),
		Text:      text,
	})
}

func (l *sessionListener) OnTranscribing() {
	if !l.current() {
		return
	}
	l.sess.advance(inter.StateTranscribing)
}

func (l *sessionListener) OnFinal(text string) {
	if !l.current() {
		return
	}
	ok, emptyErr := l.sess.setFinal(text)
	if ok {
		l.c.finish(l.sess, "")
		return
	}
	if emptyErr != nil {
		l.c.finish(l.sess, platformerrors.KindEmptyResult)
	}
}

func (l *sessionListener) OnError(err error) {
	if !l.current() {
		return
	}
	kind := platformerrors.KindOf(err)
	if kind == platformerrors.KindUnknown {
		kind = platformerrors.KindTranscription
	}
	if !l.sess.fail(err) {
		return
	}
	// permission denial is terminal and user-actionable; it is never
	// retried against the cloud-upload strategy because the denial sits at
	// the platform level and would block that path's audio capture too
	l.c.logger.Slog().Warn("capture failed",
		"session", l.sess.ID, "strategy", l.sess.Strategy, "kind", kind, "error", err)
	l.c.finish(l.sess, kind)
}
