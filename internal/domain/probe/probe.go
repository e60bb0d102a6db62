package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"carevoice/internal/platform/logging"
)

// Endpoint is one cloud surface the prober checks.
type Endpoint struct {
	Name       string
	BaseURL    string
	StatusPath string
	APIKey     string
}

// Report is the advisory result of one probe round. A false field means the
// endpoint did not answer cleanly, not that the capability is gone; callers
// may surface it but must not gate behavior on it.
type Report struct {
	CloudSpeechReachable    bool      `json:"cloud_speech_reachable"`
	CloudSynthesisReachable bool      `json:"cloud_synthesis_reachable"`
	CheckedAt               time.Time `json:"checked_at"`
}

// Config tunes the prober.
type Config struct {
	Speech    Endpoint
	Synthesis Endpoint
	Timeout   time.Duration
}

// Prober checks whether the cloud voice endpoints answer. Check never
// returns an error: probing is best-effort and a dead network is an
// expected answer. The report is purely advisory; the degraded-mode flags
// only move when a cloud call fails during actual use.
type Prober struct {
	cfg    Config
	client *http.Client
	logger *logging.Logger
	group  singleflight.Group
}

// New creates a Prober.
func New(cfg Config, logger *logging.Logger) *Prober {
	if logger == nil {
		logger = logging.Default
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Prober{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Check probes both endpoints. Concurrent calls share one round.
func (p *Prober) Check(ctx context.Context) Report {
	v, _, _ := p.group.Do("probe", func() (any, error) {
		return p.check(ctx), nil
	})
	return v.(Report)
}

func (p *Prober) check(ctx context.Context) Report {
	return Report{
		CloudSpeechReachable:    p.checkEndpoint(ctx, p.cfg.Speech),
		CloudSynthesisReachable: p.checkEndpoint(ctx, p.cfg.Synthesis),
		CheckedAt:               time.Now(),
	}
}

// checkEndpoint reports whether the endpoint answered. An unconfigured
// endpoint is simply unreachable. A credential rejection is logged but not
// acted on here; the flags move only on failures during actual use.
func (p *Prober) checkEndpoint(ctx context.Context, ep Endpoint) bool {
	if ep.BaseURL == "" {
		return false
	}

	url := strings.TrimSuffix(ep.BaseURL, "/") + ep.StatusPath
	if ep.APIKey != "" {
		url += "?key=" + ep.APIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.logger.Slog().Warn("probe request build failed", "endpoint", ep.Name, "error", err)
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Slog().Debug("probe unreachable", "endpoint", ep.Name, "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		p.logger.Slog().Warn("probe rejected", "endpoint", ep.Name, "status", resp.StatusCode)
		return false
	case resp.StatusCode >= 200 && resp.StatusCode < 500:
		// Anything the server answered deliberately counts as reachable.
		return true
	default:
		return false
	}
}
