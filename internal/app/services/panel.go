package services

import (
	"context"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	"carevoice/internal/domain/assist"
	"carevoice/internal/domain/capture"
	"carevoice/internal/domain/eventbus"
	"carevoice/internal/domain/synthesis"
	synthinter "carevoice/internal/domain/synthesis/inter"
	platformerrors "carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
	"carevoice/internal/platform/storage"
)

// PanelService drives the voice panel: the user speaks, the transcript goes
// to the assistant, and the reply is spoken back. Starting to listen always
// silences any reply still playing, so the microphone never competes with
// the speaker.
type PanelService struct {
	sessionID string
	language  string
	profile   synthinter.VoiceProfile

	capture *capture.Coordinator
	speech  *synthesis.Coordinator
	assist  *assist.Client
	turns   storage.TurnRepository
	voices  synthinter.VoiceLister
	bus     evbus.Bus
	logger  *logging.Logger

	wg sync.WaitGroup
}

// PanelConfig tunes one panel session.
type PanelConfig struct {
	Language string
	Profile  synthinter.VoiceProfile
}

// PanelDependencies carries the panel's collaborators. Turns and Voices may
// be nil.
type PanelDependencies struct {
	Capture *capture.Coordinator
	Speech  *synthesis.Coordinator
	Assist  *assist.Client
	Turns   storage.TurnRepository
	Voices  synthinter.VoiceLister
	Bus     evbus.Bus
	Logger  *logging.Logger
}

// NewPanelService creates a panel service and wires it to the capture
// result stream.
func NewPanelService(cfg PanelConfig, deps PanelDependencies) (*PanelService, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default
	}
	bus := deps.Bus
	if bus == nil {
		bus = eventbus.Get()
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}

	s := &PanelService{
		sessionID: uuid.NewString(),
		language:  cfg.Language,
		profile:   cfg.Profile,
		capture:   deps.Capture,
		speech:    deps.Speech,
		assist:    deps.Assist,
		turns:     deps.Turns,
		voices:    deps.Voices,
		bus:       bus,
		logger:    logger,
	}

	if err := bus.SubscribeAsync(eventbus.EventCaptureFinal, s.onTranscript, false); err != nil {
		return nil, err
	}
	if err := bus.SubscribeAsync(eventbus.EventCaptureError, s.onCaptureError, false); err != nil {
		return nil, err
	}
	return s, nil
}

// SessionID identifies this panel's voice history.
func (s *PanelService) SessionID() string {
	return s.sessionID
}

// BeginListening silences any playing reply and opens the microphone.
func (s *PanelService) BeginListening() {
	s.speech.Cancel()
	s.capture.StartCapture(s.language)
}

// EndListening asks the active recognizer to wrap up and transcribe.
func (s *PanelService) EndListening() {
	s.capture.StopCapture()
}

// Say speaks an announcement outside the ask-and-answer loop.
func (s *PanelService) Say(text string) {
	s.speech.Speak(text, s.profile)
}

// StopSpeaking cancels any active or pending reply audio.
func (s *PanelService) StopSpeaking() {
	s.speech.Cancel()
}

// Voices lists the platform voices available for the reply audio.
func (s *PanelService) Voices() []synthinter.VoiceInfo {
	if s.voices == nil {
		return nil
	}
	return s.voices.Voices()
}

// Close tears down the panel and waits for in-flight turns to settle.
func (s *PanelService) Close() error {
	_ = s.bus.Unsubscribe(eventbus.EventCaptureFinal, s.onTranscript)
	_ = s.bus.Unsubscribe(eventbus.EventCaptureError, s.onCaptureError)
	err := s.capture.Close()
	if cerr := s.speech.Close(); err == nil {
		err = cerr
	}
	s.wg.Wait()
	return err
}

// onTranscript answers one final transcript and speaks the reply.
func (s *PanelService) onTranscript(data eventbus.CaptureEventData) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reply := s.assist.Reply(ctx, data.Text)
	s.bus.Publish(eventbus.EventAssistReply, eventbus.AssistEventData{
		SessionID: s.sessionID,
		Reply:     reply.Text,
		Fallback:  reply.Fallback,
	})

	req := s.speech.Speak(reply.Text, s.profile)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.recordTurn(data, reply, req)
	}()
}

// onCaptureError records failed capture attempts so the history shows why
// a question never got an answer.
func (s *PanelService) onCaptureError(data eventbus.CaptureEventData) {
	if s.turns == nil {
		return
	}
	turn := &storage.VoiceTurn{
		SessionID:       s.sessionID,
		CaptureStrategy: data.Strategy,
		ErrorKind:       data.ErrorKind,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.turns.Save(ctx, turn); err != nil {
		s.logger.Slog().Warn("voice turn save failed", "error", err)
	}
}

// recordTurn waits for the reply audio to settle, then persists the turn.
func (s *PanelService) recordTurn(data eventbus.CaptureEventData, reply assist.Reply, req *synthesis.Request) {
	<-req.Done()
	if s.turns == nil {
		return
	}

	turn := &storage.VoiceTurn{
		SessionID:       s.sessionID,
		Transcript:      data.Text,
		CaptureStrategy: data.Strategy,
		Reply:           reply.Text,
		ReplyFallback:   reply.Fallback,
		SpeechStrategy:  string(req.Strategy()),
	}
	if err := req.Err(); err != nil {
		turn.ErrorKind = string(platformerrors.KindOf(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.turns.Save(ctx, turn); err != nil {
		s.logger.Slog().Warn("voice turn save failed", "error", err)
	}
}
