package ws

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	captureinter "carevoice/internal/domain/capture/inter"
	"carevoice/internal/platform/logging"
)

// bridgeMessage frames one control or recognition message on the bridge
// socket. Audio frames travel as binary messages alongside these.
type bridgeMessage struct {
	Type       string `json:"type"`
	Language   string `json:"language,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Text       string `json:"text,omitempty"`
	Code       string `json:"code,omitempty"`
}

// Bridge relays the portal page's recognition facility and microphone
// stream over a websocket. The page owns the actual microphone; the server
// drives it through start/stop/abort control messages and receives
// recognition events and PCM frames back. One page is connected at a time;
// a newer connection replaces the older one.
type Bridge struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conn   *websocket.Conn
	events *captureinter.FacilityEvents
	frames chan []byte

	// serializes socket writes; gorilla allows one writer at a time
	writeMu sync.Mutex
}

// NewBridge creates an unconnected bridge. Facility and audio calls fail
// until a portal page attaches.
func NewBridge(logger *logging.Logger) *Bridge {
	if logger == nil {
		logger = logging.Default
	}
	return &Bridge{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register registers the bridge endpoint.
func (b *Bridge) Register(router *gin.RouterGroup) {
	router.GET("/voice/bridge", b.handleConnect)
}

func (b *Bridge) handleConnect(c *gin.Context) {
	socket, err := b.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		b.logger.Slog().Warn("bridge upgrade failed", "error", err)
		return
	}

	b.mu.Lock()
	if b.conn != nil {
		b.conn.Close()
	}
	b.conn = socket
	b.mu.Unlock()

	go b.readLoop(socket)
}

func (b *Bridge) readLoop(socket *websocket.Conn) {
	defer b.detach(socket)
	for {
		messageType, payload, err := socket.ReadMessage()
		if err != nil {
			return
		}
		switch messageType {
		case websocket.BinaryMessage:
			b.deliverFrame(payload)
		case websocket.TextMessage:
			var msg bridgeMessage
			if err := sonic.Unmarshal(payload, &msg); err != nil {
				b.logger.Slog().Warn("bridge message decode failed", "error", err)
				continue
			}
			b.dispatch(msg)
		}
	}
}

// dispatch routes one recognition event to the active facility listener.
func (b *Bridge) dispatch(msg bridgeMessage) {
	b.mu.Lock()
	events := b.events
	// error and end are terminal for the listener; final is followed by end
	if msg.Type == "end" || msg.Type == "error" {
		b.events = nil
	}
	b.mu.Unlock()
	if events == nil {
		return
	}

	switch msg.Type {
	case "partial":
		if events.OnPartial != nil {
			events.OnPartial(msg.Text)
		}
	case "final":
		if events.OnFinal != nil {
			events.OnFinal(msg.Text)
		}
	case "error":
		if events.OnError != nil {
			events.OnError(msg.Code)
		}
	case "end":
		if events.OnEnd != nil {
			events.OnEnd()
		}
	}
}

func (b *Bridge) deliverFrame(payload []byte) {
	b.mu.Lock()
	frames := b.frames
	b.mu.Unlock()
	if frames == nil {
		return
	}
	frame := make([]byte, len(payload))
	copy(frame, payload)
	select {
	case frames <- frame:
	default:
		// the uploader buffers; a stall this long means the page is gone
	}
}

func (b *Bridge) send(msg bridgeMessage) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("no portal page connected")
	}
	payload, err := sonic.Marshal(msg)
	if err != nil {
		return err
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (b *Bridge) detach(socket *websocket.Conn) {
	socket.Close()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != socket {
		return
	}
	b.conn = nil
	events := b.events
	b.events = nil
	if b.frames != nil {
		close(b.frames)
		b.frames = nil
	}
	if events != nil && events.OnError != nil {
		go events.OnError("aborted")
	}
}

// Start implements the platform recognition facility: the page starts its
// recognizer and streams events back.
func (b *Bridge) Start(language string, events captureinter.FacilityEvents) error {
	b.mu.Lock()
	if b.conn == nil {
		b.mu.Unlock()
		return fmt.Errorf("no portal page connected")
	}
	b.events = &events
	b.mu.Unlock()
	return b.send(bridgeMessage{Type: "start", Language: language})
}

// Stop asks the page to finalize recognition. Events keep flowing until
// the final result or an error arrives.
func (b *Bridge) Stop() {
	if err := b.send(bridgeMessage{Type: "stop"}); err != nil {
		b.logger.Slog().Warn("bridge stop failed", "error", err)
	}
}

// Abort tears recognition down; no further events reach the listener.
func (b *Bridge) Abort() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
	if err := b.send(bridgeMessage{Type: "abort"}); err != nil {
		b.logger.Slog().Warn("bridge abort failed", "error", err)
	}
}

// StartAudio implements the microphone stream for the cloud-upload path.
func (b *Bridge) StartAudio(sampleRate int) (<-chan []byte, error) {
	b.mu.Lock()
	if b.conn == nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("no portal page connected")
	}
	if b.frames != nil {
		close(b.frames)
	}
	frames := make(chan []byte, 256)
	b.frames = frames
	b.mu.Unlock()

	if err := b.send(bridgeMessage{Type: "audio-start", SampleRate: sampleRate}); err != nil {
		b.mu.Lock()
		if b.frames == frames {
			b.frames = nil
		}
		b.mu.Unlock()
		close(frames)
		return nil, err
	}
	return frames, nil
}

// StopAudio closes the microphone stream.
func (b *Bridge) StopAudio() {
	b.mu.Lock()
	frames := b.frames
	b.frames = nil
	b.mu.Unlock()
	if frames != nil {
		close(frames)
	}
	if err := b.send(bridgeMessage{Type: "audio-stop"}); err != nil {
		b.logger.Slog().Warn("bridge audio stop failed", "error", err)
	}
}

// WriteAudio pushes one chunk of reply PCM to the page for playback.
// Server-to-page binary frames carry playback audio; page-to-server binary
// frames carry microphone audio.
func (b *Bridge) WriteAudio(pcm []byte) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("no portal page connected")
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, pcm)
}

// AudioSource adapts the bridge to the capture audio contract.
type AudioSource struct {
	Bridge *Bridge
}

func (s AudioSource) Start(sampleRate int) (<-chan []byte, error) {
	return s.Bridge.StartAudio(sampleRate)
}

func (s AudioSource) Stop() {
	s.Bridge.StopAudio()
}

// PlaybackSink adapts the bridge to the playback sink contract.
type PlaybackSink struct {
	Bridge *Bridge
}

func (s PlaybackSink) Write(pcm []byte) error {
	return s.Bridge.WriteAudio(pcm)
}
