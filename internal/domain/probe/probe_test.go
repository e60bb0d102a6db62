package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCheckReportsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(Config{
		Speech:    Endpoint{Name: "speech", BaseURL: srv.URL, StatusPath: "/v1/status"},
		Synthesis: Endpoint{Name: "synthesis", BaseURL: srv.URL, StatusPath: "/v1/status"},
	}, nil)

	report := p.Check(context.Background())
	if !report.CloudSpeechReachable || !report.CloudSynthesisReachable {
		t.Errorf("expected both reachable: %+v", report)
	}
	if report.CheckedAt.IsZero() {
		t.Errorf("CheckedAt not set")
	}
}

func TestCheckUnreachableIsNotAnError(t *testing.T) {
	p := New(Config{
		Speech:    Endpoint{Name: "speech", BaseURL: "http://127.0.0.1:1"},
		Synthesis: Endpoint{Name: "synthesis"},
	}, nil)

	report := p.Check(context.Background())
	if report.CloudSpeechReachable || report.CloudSynthesisReachable {
		t.Errorf("expected both unreachable: %+v", report)
	}
}

func TestCheckRejectedReportsUnreachableOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	p := New(Config{
		Speech:    Endpoint{Name: "speech", BaseURL: srv.URL},
		Synthesis: Endpoint{Name: "synthesis", BaseURL: ok.URL},
	}, nil)

	report := p.Check(context.Background())
	if report.CloudSpeechReachable {
		t.Errorf("rejected endpoint reported reachable")
	}
	if !report.CloudSynthesisReachable {
		t.Errorf("healthy synthesis endpoint reported unreachable")
	}
}

func TestConcurrentChecksShareOneRound(t *testing.T) {
	var hits int64
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		<-block
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(Config{
		Speech: Endpoint{Name: "speech", BaseURL: srv.URL},
	}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Check(context.Background())
		}()
	}

	// Let all callers pile onto the in-flight round before releasing it.
	for atomic.LoadInt64(&hits) == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	if got := atomic.LoadInt64(&hits); got != 1 {
		t.Errorf("endpoint hit %d times, want 1", got)
	}
}
