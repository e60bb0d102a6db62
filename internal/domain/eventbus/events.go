package eventbus

// Voice event topics. UI panels subscribe to these instead of holding
// references into the coordinators.
const (
	EventCapturePartial = "capture:partial"
	EventCaptureFinal   = "capture:final"
	EventCaptureError   = "capture:error"
	EventCaptureStarted = "capture:started"
	EventCaptureStopped = "capture:stopped"

	EventSynthesisStarted   = "synthesis:started"
	EventSynthesisPlaying   = "synthesis:playing"
	EventSynthesisCompleted = "synthesis:completed"
	EventSynthesisCancelled = "synthesis:cancelled"
	EventSynthesisError     = "synthesis:error"

	EventAssistReply = "assist:reply"
	EventAssistError = "assist:error"

	EventAvailabilityChanged = "availability:changed"
)

// CaptureEventData accompanies capture:* topics.
type CaptureEventData struct {
	SessionID string `json:"session_id"`
	Strategy  string `json:"strategy,omitempty"`
	Text      string `json:"text,omitempty"`
	IsFinal   bool   `json:"is_final,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// SynthesisEventData accompanies synthesis:* topics.
type SynthesisEventData struct {
	RequestID string `json:"request_id"`
	Strategy  string `json:"strategy,omitempty"`
	Text      string `json:"text,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// AssistEventData accompanies assist:* topics.
type AssistEventData struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// AvailabilityEventData reports degraded-mode flag changes.
type AvailabilityEventData struct {
	CloudSpeechEnabled    bool   `json:"cloud_speech_enabled"`
	CloudSynthesisEnabled bool   `json:"cloud_synthesis_enabled"`
	Reason                string `json:"reason,omitempty"`
}
