package cloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"carevoice/internal/domain/synthesis/inter"
	platformerrors "carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
)

// Synthesizer is the cloud synthesis strategy: one JSON request per
// utterance, MP3 audio back. Error classification matters more than the
// transport here: an authorization/"API not enabled" response must be
// distinguishable from a transient one, because only the former puts the
// session into degraded mode.
type Synthesizer struct {
	cfg    Config
	client *http.Client
	logger *logging.Logger
}

func (s *Synthesizer) Strategy() inter.Strategy {
	return inter.StrategyCloud
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"language_code"`
		SsmlGender   string `json:"ssml_gender"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audio_encoding"`
	} `json:"audio_config"`
}

type synthesizeResponse struct {
	AudioContent string       `json:"audio_content"`
	Error        *statusError `json:"error,omitempty"`
}

type statusError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string, profile inter.VoiceProfile) (inter.Audio, error) {
	var payload synthesizeRequest
	payload.Input.Text = text
	payload.Voice.LanguageCode = profile.LanguageCode
	payload.Voice.SsmlGender = strings.ToUpper(profile.Gender)
	payload.AudioConfig.AudioEncoding = "MP3"

	body, err := sonic.Marshal(payload)
	if err != nil {
		return inter.Audio{}, platformerrors.Wrap(platformerrors.KindSynthesisTransient,
			"cloud.synthesize", "encode request", err)
	}

	url := fmt.Sprintf("%s/v1/text:synthesize?key=%s", strings.TrimRight(s.cfg.BaseURL, "/"), s.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return inter.Audio{}, platformerrors.Wrap(platformerrors.KindSynthesisTransient,
			"cloud.synthesize", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return inter.Audio{}, platformerrors.Wrap(platformerrors.KindSynthesisTransient,
			"cloud.synthesize", "synthesis request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return inter.Audio{}, platformerrors.Wrap(platformerrors.KindSynthesisTransient,
			"cloud.synthesize", "read response", err)
	}

	var parsed synthesizeResponse
	if len(data) > 0 {
		_ = sonic.Unmarshal(data, &parsed)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("synthesis endpoint returned %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		kind := platformerrors.KindSynthesisTransient
		if isAuthorizationFailure(resp.StatusCode, parsed.Error) {
			kind = platformerrors.KindSynthesisUnauthorized
		}
		s.logger.Slog().Warn("cloud synthesis failed",
			"status", resp.StatusCode, "kind", kind, "message", msg)
		return inter.Audio{}, platformerrors.New(kind, "cloud.synthesize", msg)
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return inter.Audio{}, platformerrors.Wrap(platformerrors.KindSynthesisTransient,
			"cloud.synthesize", "decode audio content", err)
	}
	if len(audio) == 0 {
		return inter.Audio{}, platformerrors.New(platformerrors.KindSynthesisTransient,
			"cloud.synthesize", "synthesis returned no audio")
	}

	return inter.Audio{Data: audio, Format: "mp3"}, nil
}

func (s *Synthesizer) Close() error {
	return nil
}

// isAuthorizationFailure detects the unauthorized/"not enabled" error class.
// The endpoint reports it either through the HTTP status or a status string
// plus a recognizable message substring.
func isAuthorizationFailure(status int, se *statusError) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	if se == nil {
		return false
	}
	if se.Status == "PERMISSION_DENIED" || se.Status == "UNAUTHENTICATED" {
		return true
	}
	msg := strings.ToLower(se.Message)
	return strings.Contains(msg, "has not been used") || strings.Contains(msg, "is disabled")
}
