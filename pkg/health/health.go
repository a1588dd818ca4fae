// Package health implements liveness and readiness probes for the API server.
//
// Probes are polled by a single background goroutine. A probe flips to failed
// only after failAfter consecutive errors, so a transient database hiccup does
// not bounce the pod; one success flips it back.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// failAfter is the number of consecutive errors before a probe reports failed.
const failAfter = 3

// probe is the polled state of a single check. All fields are guarded by the
// owning Health mutex.
type probe struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	fails   int
	down    bool
	lastErr error
}

// Health tracks liveness and readiness probes and serves their HTTP endpoints.
type Health struct {
	mu        sync.Mutex
	ready     bool
	liveness  []*probe
	readiness []*probe

	stopOnce sync.Once
	stop     chan struct{}
}

// New returns a Health with no probes registered and readiness off. Call
// SetReady(true) once startup has finished.
func New() *Health {
	return &Health{stop: make(chan struct{})}
}

// AddLivenessCheck registers a probe that decides whether the process should
// be restarted, such as a goroutine leak detector.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, &probe{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a probe that decides whether the process should
// receive traffic, such as a database ping.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, &probe{name: name, timeout: timeout, fn: fn})
}

// Start launches the poller goroutine. Probes registered after Start are
// picked up on the next tick.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		h.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				return
			case <-ticker.C:
				h.poll(ctx)
			}
		}
	}()
}

// Stop terminates the poller. Safe to call more than once.
func (h *Health) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// poll runs every registered probe once and updates its state.
func (h *Health) poll(ctx context.Context) {
	h.mu.Lock()
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		err := runProbe(ctx, p)

		h.mu.Lock()
		if err != nil {
			p.fails++
			if p.fails >= failAfter {
				p.down = true
				p.lastErr = err
			}
		} else {
			p.fails = 0
			p.down = false
			p.lastErr = nil
		}
		h.mu.Unlock()
	}
}

func runProbe(ctx context.Context, p *probe) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.fn(ctx)
}

// SetReady toggles the manual readiness gate. It is flipped on after wiring
// completes and off at the start of graceful shutdown.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady reports whether the gate is open and every readiness probe passes.
func (h *Health) IsReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.ready {
		return false
	}
	for _, p := range h.readiness {
		if p.down {
			return false
		}
	}
	return true
}

// statusResponse is the probe endpoint body.
type statusResponse struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

// LiveEndpoint serves GET /livez: 200 while all liveness probes pass, 503
// with the failing probe names otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	failures := failureMap(h.liveness)
	h.mu.Unlock()

	writeStatus(w, failures)
}

// ReadyEndpoint serves GET /readyz: 200 while the manual gate is open and all
// readiness probes pass, 503 otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.Lock()
	failures := failureMap(h.readiness)
	if !h.ready {
		failures["_gate"] = "service is not ready"
	}
	h.mu.Unlock()

	writeStatus(w, failures)
}

// failureMap collects name→error for failed probes. Caller holds the mutex.
func failureMap(probes []*probe) map[string]string {
	failures := make(map[string]string)
	for _, p := range probes {
		if !p.down {
			continue
		}
		msg := "probe failed"
		if p.lastErr != nil {
			msg = p.lastErr.Error()
		}
		failures[p.name] = msg
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "pass"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp = statusResponse{Status: "fail", Failures: failures}
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
