package eventbus

import (
	"sync"

	evbus "github.com/asaskevich/EventBus"
)

var (
	instance evbus.Bus
	asyncBus *AsyncEventBus
	once     sync.Once
)

// Get returns the shared synchronous bus instance.
func Get() evbus.Bus {
	once.Do(func() {
		instance = New()
		asyncBus = NewAsyncEventBus(4)
		asyncBus.Start()
	})
	return instance
}

// GetAsync returns the shared asynchronous bus instance.
func GetAsync() *AsyncEventBus {
	Get()
	return asyncBus
}

// New creates a fresh synchronous bus (tests use this to avoid the singleton).
func New() evbus.Bus {
	return evbus.New()
}

// Publish publishes a synchronous event.
func Publish(topic string, args ...interface{}) {
	Get().Publish(topic, args...)
}

// PublishAsync publishes an event through the worker pool.
func PublishAsync(topic string, args ...interface{}) {
	GetAsync().PublishAsync(topic, args...)
}

// Subscribe subscribes to a synchronous event.
func Subscribe(topic string, fn interface{}) error {
	return Get().Subscribe(topic, fn)
}

// Unsubscribe removes a previously registered handler.
func Unsubscribe(topic string, fn interface{}) error {
	return Get().Unsubscribe(topic, fn)
}

// Shutdown stops the async worker pool.
func Shutdown() {
	if asyncBus != nil {
		asyncBus.Stop()
	}
}
