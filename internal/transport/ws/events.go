package ws

import (
	"net/http"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"carevoice/internal/domain/eventbus"
	"carevoice/internal/platform/logging"
)

// Envelope frames one voice event on the wire.
type Envelope struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// EventStream relays the voice event topics to websocket clients so the
// portal panel can show live capture and playback state.
type EventStream struct {
	bus      evbus.Bus
	logger   *logging.Logger
	upgrader websocket.Upgrader
	handlers map[string]func(data any)

	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

type client struct {
	id     string
	socket *websocket.Conn
	send   chan []byte
}

var streamTopics = []string{
	eventbus.EventCapturePartial,
	eventbus.EventCaptureFinal,
	eventbus.EventCaptureError,
	eventbus.EventCaptureStarted,
	eventbus.EventCaptureStopped,
	eventbus.EventSynthesisStarted,
	eventbus.EventSynthesisPlaying,
	eventbus.EventSynthesisCompleted,
	eventbus.EventSynthesisCancelled,
	eventbus.EventSynthesisError,
	eventbus.EventAssistReply,
	eventbus.EventAssistError,
	eventbus.EventAvailabilityChanged,
}

// NewEventStream creates the stream and subscribes it to the voice topics.
func NewEventStream(bus evbus.Bus, logger *logging.Logger) (*EventStream, error) {
	if logger == nil {
		logger = logging.Default
	}
	s := &EventStream{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:  make(map[string]*client),
		handlers: make(map[string]func(data any)),
	}

	for _, topic := range streamTopics {
		handler := s.handlerFor(topic)
		if err := bus.Subscribe(topic, handler); err != nil {
			return nil, err
		}
		s.handlers[topic] = handler
	}
	return s, nil
}

// handlerFor returns a bus handler that frames and fans out one topic. The
// handlers are retained so Close can unsubscribe them.
func (s *EventStream) handlerFor(topic string) func(data any) {
	return func(data any) {
		payload, err := sonic.Marshal(Envelope{Topic: topic, Data: data})
		if err != nil {
			s.logger.Slog().Warn("event encode failed", "topic", topic, "error", err)
			return
		}
		s.broadcast(payload)
	}
}

// Register registers the websocket endpoint.
func (s *EventStream) Register(router *gin.RouterGroup) {
	router.GET("/voice/events", s.handleConnect)
}

func (s *EventStream) handleConnect(c *gin.Context) {
	socket, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Slog().Warn("websocket upgrade failed", "error", err)
		return
	}

	cl := &client{
		id:     uuid.NewString(),
		socket: socket,
		send:   make(chan []byte, 64),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		socket.Close()
		return
	}
	s.clients[cl.id] = cl
	s.mu.Unlock()

	go s.writeLoop(cl)
	go s.readLoop(cl)
}

// broadcast queues the payload to every client, dropping clients whose
// send buffer is full rather than blocking the event source.
func (s *EventStream) broadcast(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cl := range s.clients {
		select {
		case cl.send <- payload:
		default:
			s.logger.Slog().Warn("dropping slow event client", "client", id)
			close(cl.send)
			delete(s.clients, id)
		}
	}
}

func (s *EventStream) writeLoop(cl *client) {
	defer cl.socket.Close()
	for payload := range cl.send {
		if err := cl.socket.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.drop(cl.id)
			return
		}
	}
}

// readLoop drains client frames so pings are answered and disconnects are
// noticed.
func (s *EventStream) readLoop(cl *client) {
	for {
		if _, _, err := cl.socket.ReadMessage(); err != nil {
			s.drop(cl.id)
			return
		}
	}
}

func (s *EventStream) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cl, ok := s.clients[id]; ok {
		close(cl.send)
		delete(s.clients, id)
	}
}

// Close disconnects all clients and detaches from the bus.
func (s *EventStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	clients := s.clients
	s.clients = make(map[string]*client)
	s.mu.Unlock()

	for topic, handler := range s.handlers {
		_ = s.bus.Unsubscribe(topic, handler)
	}
	for _, cl := range clients {
		close(cl.send)
		cl.socket.Close()
	}
	return nil
}
