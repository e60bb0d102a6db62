package voiceapi

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carevoice/internal/app/services"
	"carevoice/internal/domain/probe"
	"carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
	"carevoice/internal/platform/storage"
	httptransport "carevoice/internal/transport/http"
)

// maxTranscribeBytes caps uploaded recordings at roughly 20s of 16kHz
// 16-bit mono audio.
const maxTranscribeBytes = 1 << 20

// Transcriber transcribes one complete recording.
type Transcriber interface {
	Transcribe(audio []byte, language string) (string, error)
}

// Service exposes the voice panel over HTTP for the portal frontend.
type Service struct {
	panel       *services.PanelService
	prober      *probe.Prober
	transcriber Transcriber
	turns       storage.TurnRepository
	logger      *logging.Logger
}

// NewService creates the voice API service. Prober, transcriber and turns
// may be nil; their endpoints report not configured.
func NewService(panel *services.PanelService, prober *probe.Prober, transcriber Transcriber, turns storage.TurnRepository, logger *logging.Logger) (*Service, error) {
	if panel == nil {
		return nil, errors.New(errors.KindConfig, "voiceapi.new", "panel service is required")
	}
	if logger == nil {
		logger = logging.Default
	}
	return &Service{
		panel:       panel,
		prober:      prober,
		transcriber: transcriber,
		turns:       turns,
		logger:      logger,
	}, nil
}

// Register registers the voice routes.
func (s *Service) Register(ctx context.Context, router *gin.RouterGroup) error {
	voice := router.Group("/voice")
	voice.POST("/listen/start", s.handleListenStart)
	voice.POST("/listen/stop", s.handleListenStop)
	voice.POST("/speak", s.handleSpeak)
	voice.POST("/transcribe", s.handleTranscribe)
	voice.POST("/speak/cancel", s.handleSpeakCancel)
	voice.GET("/voices", s.handleVoices)
	voice.GET("/probe", s.handleProbe)
	voice.GET("/history", s.handleHistory)
	return nil
}

func (s *Service) handleListenStart(c *gin.Context) {
	s.panel.BeginListening()
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"session_id": s.panel.SessionID(),
	}, "listening")
}

func (s *Service) handleListenStop(c *gin.Context) {
	s.panel.EndListening()
	httptransport.RespondSuccess(c, http.StatusOK, nil, "transcribing")
}

type speakRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Service) handleSpeak(c *gin.Context) {
	var req speakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "text is required", nil)
		return
	}
	s.panel.Say(req.Text)
	httptransport.RespondSuccess(c, http.StatusAccepted, nil, "speaking")
}

// handleTranscribe accepts a raw audio body and returns its transcript.
// An empty transcription surfaces as 422 with the empty-result kind so the
// portal can tell silence apart from a backend failure.
func (s *Service) handleTranscribe(c *gin.Context) {
	if s.transcriber == nil {
		httptransport.RespondError(c, http.StatusNotFound, "transcription not configured", nil)
		return
	}

	audio, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTranscribeBytes))
	if err != nil || len(audio) == 0 {
		httptransport.RespondError(c, http.StatusBadRequest, "audio body is required", nil)
		return
	}

	language := c.DefaultQuery("language", "en-US")
	text, err := s.transcriber.Transcribe(audio, language)
	if err != nil {
		kind := string(errors.KindOf(err))
		switch {
		case errors.IsKind(err, errors.KindEmptyResult):
			httptransport.RespondError(c, http.StatusUnprocessableEntity, "no speech recognized",
				gin.H{"error_kind": kind})
		case errors.IsKind(err, errors.KindNoCapability):
			httptransport.RespondError(c, http.StatusServiceUnavailable, "cloud transcription unavailable",
				gin.H{"error_kind": kind})
		default:
			s.logger.Slog().Warn("transcription upload failed", "error", err)
			httptransport.RespondError(c, http.StatusBadGateway, "transcription failed",
				gin.H{"error_kind": kind})
		}
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"transcript": text}, "")
}

func (s *Service) handleSpeakCancel(c *gin.Context) {
	s.panel.StopSpeaking()
	httptransport.RespondSuccess(c, http.StatusOK, nil, "cancelled")
}

func (s *Service) handleVoices(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, s.panel.Voices(), "")
}

func (s *Service) handleProbe(c *gin.Context) {
	if s.prober == nil {
		httptransport.RespondError(c, http.StatusNotFound, "probe not configured", nil)
		return
	}
	report := s.prober.Check(c.Request.Context())
	httptransport.RespondSuccess(c, http.StatusOK, report, "")
}

func (s *Service) handleHistory(c *gin.Context) {
	if s.turns == nil {
		httptransport.RespondError(c, http.StatusNotFound, "history not configured", nil)
		return
	}

	if sessionID := c.Query("session"); sessionID != "" {
		turns, err := s.turns.ListBySession(c.Request.Context(), sessionID)
		if err != nil {
			s.logger.Slog().Warn("history query failed", "error", err)
			httptransport.RespondError(c, http.StatusInternalServerError, "history unavailable", nil)
			return
		}
		httptransport.RespondSuccess(c, http.StatusOK, turns, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	turns, err := s.turns.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Slog().Warn("history query failed", "error", err)
		httptransport.RespondError(c, http.StatusInternalServerError, "history unavailable", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, turns, "")
}
