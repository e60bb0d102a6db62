package cloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"carevoice/internal/domain/availability"
	"carevoice/internal/domain/capture/inter"
	platformerrors "carevoice/internal/platform/errors"
	"carevoice/internal/platform/logging"
)

// Recognizer implements the cloud-upload capture strategy: record raw audio
// from the microphone source, then submit the whole recording to the cloud
// transcription endpoint. Used when the platform exposes no native
// recognizer. Recording is capped at MaxRecordDuration; hitting the ceiling
// behaves like an explicit stop.
type Recognizer struct {
	cfg    Config
	source inter.AudioSource
	avail  *availability.Availability
	logger *logging.Logger
	client *http.Client

	mu        sync.Mutex
	listener  inter.Listener
	recording bool
	audio     bytes.Buffer
	language  string
	ceiling   *time.Timer
	gen       int
}

func (r *Recognizer) Strategy() inter.Strategy {
	return inter.StrategyCloudUpload
}

func (r *Recognizer) Start(language string, listener inter.Listener) error {
	r.mu.Lock()
	if r.recording {
		r.mu.Unlock()
		r.Abort()
		r.mu.Lock()
	}

	frames, err := r.source.Start(r.cfg.SampleRate)
	if err != nil {
		r.mu.Unlock()
		return platformerrors.Wrap(platformerrors.KindPermissionDenied, "cloud.start",
			"microphone source unavailable", err)
	}

	r.listener = listener
	r.recording = true
	r.audio.Reset()
	r.language = language
	gen := r.gen
	r.ceiling = time.AfterFunc(r.cfg.MaxRecordDuration, func() {
		r.finalize(gen)
	})
	r.mu.Unlock()

	go r.drain(frames, gen)
	return nil
}

// drain copies microphone frames into the recording buffer until the source
// channel closes.
func (r *Recognizer) drain(frames <-chan []byte, gen int) {
	for frame := range frames {
		r.mu.Lock()
		if r.gen == gen && r.recording {
			r.audio.Write(frame)
		}
		r.mu.Unlock()
	}
}

func (r *Recognizer) Stop() error {
	r.mu.Lock()
	gen := r.gen
	r.mu.Unlock()
	r.finalize(gen)
	return nil
}

// finalize ends recording and hands the collected audio to the transcription
// endpoint. Idempotent per generation; the ceiling timer and an explicit
// stop may race here.
func (r *Recognizer) finalize(gen int) {
	r.mu.Lock()
	if r.gen != gen || !r.recording {
		r.mu.Unlock()
		return
	}
	r.recording = false
	if r.ceiling != nil {
		r.ceiling.Stop()
	}
	listener := r.listener
	audio := make([]byte, r.audio.Len())
	copy(audio, r.audio.Bytes())
	language := r.language
	r.mu.Unlock()

	r.source.Stop()
	if listener != nil {
		listener.OnTranscribing()
	}

	go func() {
		text, err := r.transcribe(audio, language)

		r.mu.Lock()
		stale := r.gen != gen
		l := r.listener
		r.mu.Unlock()
		if stale || l == nil {
			return
		}
		if err != nil {
			l.OnError(err)
			return
		}
		l.OnFinal(text)
	}()
}

// Abort tears recording down without producing a result. The generation
// bump makes any in-flight upload result fall on the floor.
func (r *Recognizer) Abort() {
	r.mu.Lock()
	r.gen++
	wasRecording := r.recording
	r.recording = false
	r.listener = nil
	if r.ceiling != nil {
		r.ceiling.Stop()
	}
	r.mu.Unlock()

	if wasRecording {
		r.source.Stop()
	}
}

func (r *Recognizer) Close() error {
	r.Abort()
	return nil
}

// Transcribe submits a complete recording outside any capture session. The
// portal uses this for audio it captured on its own.
func (r *Recognizer) Transcribe(audio []byte, language string) (string, error) {
	if !r.avail.CloudSpeechEnabled() {
		return "", platformerrors.New(platformerrors.KindNoCapability, "cloud.transcribe",
			"cloud transcription disabled for this session")
	}
	text, err := r.transcribe(audio, language)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", platformerrors.New(platformerrors.KindEmptyResult, "cloud.transcribe",
			"transcription produced no text")
	}
	return text, nil
}

type transcribeRequest struct {
	Audio           string `json:"audio"`
	LanguageCode    string `json:"language_code"`
	SampleRateHertz int    `json:"sample_rate_hertz"`
	Encoding        string `json:"encoding"`
}

type transcribeResponse struct {
	Transcript string       `json:"transcript"`
	Error      *statusError `json:"error,omitempty"`
}

type statusError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// transcribe performs the upload. Authorization-class failures flip the
// session's cloud speech flag before the error is reported, so the next
// capture never re-attempts this strategy.
func (r *Recognizer) transcribe(audio []byte, language string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	body, err := sonic.Marshal(transcribeRequest{
		Audio:           base64.StdEncoding.EncodeToString(audio),
		LanguageCode:    language,
		SampleRateHertz: r.cfg.SampleRate,
		Encoding:        "LINEAR16",
	})
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindTranscription, "cloud.transcribe",
			"encode request", err)
	}

	url := fmt.Sprintf("%s/v1/speech:recognize?key=%s", strings.TrimRight(r.cfg.BaseURL, "/"), r.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindTranscription, "cloud.transcribe",
			"build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindTranscription, "cloud.transcribe",
			"transcription request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindTranscription, "cloud.transcribe",
			"read response", err)
	}

	var parsed transcribeResponse
	if len(data) > 0 {
		// tolerate non-JSON error bodies; classification falls back to the
		// HTTP status code
		_ = sonic.Unmarshal(data, &parsed)
	}

	if resp.StatusCode != http.StatusOK {
		if isAuthorizationFailure(resp.StatusCode, parsed.Error) {
			r.avail.DisableCloudSpeech(fmt.Sprintf("transcription endpoint: %d", resp.StatusCode))
		}
		msg := fmt.Sprintf("transcription endpoint returned %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		r.logger.Slog().Warn("cloud transcription failed", "status", resp.StatusCode, "message", msg)
		return "", platformerrors.New(platformerrors.KindTranscription, "cloud.transcribe", msg)
	}

	return parsed.Transcript, nil
}

// isAuthorizationFailure detects the "not enabled"/unauthorized error class
// that should put the session into degraded mode.
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
