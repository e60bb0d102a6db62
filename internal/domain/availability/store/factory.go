package store

import "fmt"

// Driver identifiers supported by the availability domain.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New creates an availability store based on the provided configuration.
func New(cfg Config) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unsupported availability store driver: %s", driver)
	}
}
