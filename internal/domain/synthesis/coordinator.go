package synthesis

import (
	"strings"
	"sync"

	evbus "github.com/asaskevich/EventBus"

	"carevoice/internal/domain/availability"
	"carevoice/internal/domain/eventbus"
	"carevoice/internal/domain/normalize"
	"carevoice/internal/domain/synthesis/inter"
	platformerrors "carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
)

// Coordinator owns the single active synthesis request. Text is normalized
// before either strategy sees it; the cloud path is attempted only while the
// session's cloud synthesis flag is on, and an authorization failure flips
// that flag before the same utterance falls through to the platform-native
// path, so the user still hears a response.
type Coordinator struct {
	cfg    inter.Config
	cloud  inter.Synthesizer
	native inter.Synthesizer
	player inter.Player
	avail  *availability.Availability
	logger *logging.Logger
	bus    evbus.Bus

	// startMu serializes the Speak handoff end to end, so a concurrent
	// Speak always sees the previous request as current and tears it down.
	startMu sync.Mutex

	mu      sync.Mutex
	current *Request
}

// Dependencies carries the coordinator's collaborators. Either synthesizer
// may be nil.
type Dependencies struct {
	Cloud        inter.Synthesizer
	Native       inter.Synthesizer
	Player       inter.Player
	Availability *availability.Availability
	Logger       *logging.Logger
	Bus          evbus.Bus
}

// NewCoordinator creates a synthesis coordinator.
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
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en-US"
	}
	return &Coordinator{
		cfg:    cfg,
		cloud:  deps.Cloud,
		native: deps.Native,
		player: deps.Player,
		avail:  avail,
		logger: logger,
		bus:    bus,
	}
}

// Speak synthesizes and plays one utterance. Any active request is
// cancelled, and its teardown completes, before the new one begins.
func (c *Coordinator) Speak(text string, profile inter.VoiceProfile) *Request {
	normalized := normalize.ForSpeech(text)
	profile = c.coerceProfile(profile)

	req := newRequest(normalized, profile)

	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()
	c.teardown(prev)

	c.mu.Lock()
	c.current = req
	c.mu.Unlock()

	req.advance(inter.StateRequesting)
	c.bus.Publish(eventbus.EventSynthesisStarted, eventbus.SynthesisEventData{
		RequestID: req.ID,
		Text:      normalized,
	})

	go c.run(req)
	return req
}

// Cancel stops any playing audio or pending request. Idempotent and safe
// from any state; when it returns, no further events from the cancelled
// request will fire.
func (c *Coordinator) Cancel() {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	req := c.current
	c.current = nil
	c.mu.Unlock()
	c.teardown(req)
}

// IsSpeaking reports whether an utterance is being requested or played.
func (c *Coordinator) IsSpeaking() bool {
	switch c.State() {
	case inter.StateRequesting, inter.StatePlaying:
		return true
	}
	return false
}

// State reports the active request state, or idle when none is active.
func (c *Coordinator) State() inter.State {
	c.mu.Lock()
	req := c.current
	c.mu.Unlock()
	if req == nil {
		return inter.StateIdle
	}
	return req.State()
}

// Close cancels any active request and releases both synthesizers.
func (c *Coordinator) Close() error {
	c.Cancel()
	if c.cloud != nil {
		_ = c.cloud.Close()
	}
	if c.native != nil {
		return c.native.Close()
	}
	return nil
}

// teardown cancels req and waits for its goroutine to finish, so no two
// audio streams can overlap.
func (c *Coordinator) teardown(req *Request) {
	if req == nil {
		return
	}
	cancelled := req.markCancelled()
	req.cancel()
	<-req.done
	if cancelled {
		c.bus.Publish(eventbus.EventSynthesisCancelled, eventbus.SynthesisEventData{
			RequestID: req.ID,
			Strategy:  string(req.Strategy()),
		})
	}
}

// coerceProfile clamps the gender to the accepted set and fills the default
// language. Unknown genders become female rather than failing downstream
// with an unsupported-voice error.
func (c *Coordinator) coerceProfile(profile inter.VoiceProfile) inter.VoiceProfile {
	gender := strings.ToLower(strings.TrimSpace(profile.Gender))
	if gender != inter.GenderMale && gender != inter.GenderFemale {
		if profile.Gender != "" {
			c.logger.Slog().Warn("unsupported voice gender, using female", "gender", profile.Gender)
		}
		gender = inter.GenderFemale
	}
	profile.Gender = gender

	if profile.LanguageCode == "" {
		profile.LanguageCode = c.cfg.DefaultProfile.LanguageCode
	}
	if profile.LanguageCode == "" {
		profile.LanguageCode = c.cfg.DefaultLanguage
	}
	return profile
}

func (c *Coordinator) run(req *Request) {
	defer close(req.done)

	audio, ok := c.synthesize(req)
	if !ok {
		return
	}

	if !req.advance(inter.StatePlaying) {
		return
	}
	c.bus.Publish(eventbus.EventSynthesisPlaying, eventbus.SynthesisEventData{
		RequestID: req.ID,
		Strategy:  string(req.Strategy()),
	})

	if c.player != nil {
		if err := c.player.Play(req.ctx, audio); err != nil {
			if req.ctx.Err() != nil {
				return
			}
			c.finishFailed(req, platformerrors.Wrap(platformerrors.KindPlayback,
				"synthesis.play", "audio playback failed", err))
			return
		}
	}

	if req.advance(inter.StateCompleted) {
		c.clearCurrent(req)
		c.bus.Publish(eventbus.EventSynthesisCompleted, eventbus.SynthesisEventData{
			RequestID: req.ID,
			Strategy:  string(req.Strategy()),
		})
	}
}

// synthesize produces audio via the cloud path when it is still enabled,
// falling through to the platform-native path on any cloud failure. An
// authorization-class failure disables the cloud path for the rest of the
// session before the fallback runs.
func (c *Coordinator) synthesize(req *Request) (inter.Audio, bool) {
	if c.cloud != nil && c.avail.CloudSynthesisEnabled() {
		audio, err := c.cloud.Synthesize(req.ctx, req.Text, req.Profile)
		if err == nil {
			req.setStrategy(inter.StrategyCloud)
			return audio, true
		}
		if req.ctx.Err() != nil {
			return inter.Audio{}, false
		}
		if platformerrors.IsKind(err, platformerrors.KindSynthesisUnauthorized) {
			c.avail.DisableCloudSynthesis(err.Error())
			snap := c.avail.Snapshot()
			c.bus.Publish(eventbus.EventAvailabilityChanged, eventbus.AvailabilityEventData{
				CloudSpeechEnabled:    snap.CloudSpeechEnabled,
				CloudSynthesisEnabled: snap.CloudSynthesisEnabled,
				Reason:                "synthesis unauthorized",
			})
		} else {
			c.logger.Slog().Warn("cloud synthesis failed, using platform voice for this utterance",
				"request", req.ID, "error", err)
		}
	}

	if c.native == nil {
		c.finishFailed(req, platformerrors.New(platformerrors.KindNoCapability,
			"synthesis.speak", "no synthesis strategy available"))
		return inter.Audio{}, false
	}

	audio, err := c.native.Synthesize(req.ctx, req.Text, req.Profile)
	if err != nil {
		if req.ctx.Err() != nil {
			return inter.Audio{}, false
		}
		c.finishFailed(req, err)
		return inter.Audio{}, false
	}
	req.setStrategy(inter.StrategyPlatformNative)
	return audio, true
}

func (c *Coordinator) finishFailed(req *Request, err error) {
	if !req.fail(err) {
		return
	}
	c.clearCurrent(req)
	kind := platformerrors.KindOf(err)
	c.logger.Slog().Warn("synthesis failed", "request", req.ID, "kind", kind, "error", err)
	c.bus.Publish(eventbus.EventSynthesisError, eventbus.SynthesisEventData{
		RequestID: req.ID,
		Strategy:  string(req.Strategy()),
		ErrorKind: string(kind),
	})
}

func (c *Coordinator) clearCurrent(req *Request) {
	c.mu.Lock()
	if c.current == req {
		c.current = nil
	}
	c.mu.Unlock()
}
