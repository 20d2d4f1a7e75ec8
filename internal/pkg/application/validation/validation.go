// Package validation contains the self check harness that probes the change
// feed's delivery latency and completeness with synthetic detections.
package validation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/feed"
	"github.com/roadwatch/ice-monitoring/pkg/types"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("ice-monitoring/validation")

var ErrAlreadyRunning = fmt.Errorf("validation suite is already running")

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// Verdict is the outcome of one check: a terminal status plus human readable
// detail and, where it was measured, the elapsed delivery time.
type Verdict struct {
	Status  Status        `json:"status"`
	Detail  string        `json:"detail,omitzero"`
	Elapsed time.Duration `json:"elapsed,omitzero"`
}

type Report struct {
	ResponseTime   Verdict `json:"responseTime"`
	Reliability    Verdict `json:"reliability"`
	Resubscription Verdict `json:"resubscription"`

	// Overall is passed when every check passed, failed when every check
	// failed and mixed otherwise; running while a suite is in progress.
	Overall string `json:"overall"`

	StartedAt   time.Time `json:"startedAt,omitzero"`
	CompletedAt time.Time `json:"completedAt,omitzero"`
}

// DetectionWriter is the slice of the backend write path the harness needs.
//
//go:generate moq -rm -out detectionwriter_mock.go . DetectionWriter
type DetectionWriter interface {
	AddDetection(ctx context.Context, detection types.Detection) (types.Detection, error)
}

type Harness interface {
	Run(ctx context.Context) (Report, error)
	Report() Report
	Running() bool
}

type harness struct {
	writer DetectionWriter
	feed   feed.Client
	cfg    Config

	mu      sync.RWMutex
	report  Report
	running bool
}

func New(writer DetectionWriter, feedClient feed.Client, cfg Config) Harness {
	return &harness{
		writer: writer,
		feed:   feedClient,
		cfg:    cfg,
		report: Report{
			ResponseTime:   Verdict{Status: StatusIdle},
			Reliability:    Verdict{Status: StatusIdle},
			Resubscription: Verdict{Status: StatusIdle},
			Overall:        string(StatusIdle),
		},
	}
}

func (h *harness) Report() Report {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.report
}

func (h *harness) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.running
}

// Run executes the three checks strictly sequentially. Every check is reset
// to idle before the suite starts, and a completed run leaves every check in
// a terminal state. Only one suite runs at a time.
func (h *harness) Run(ctx context.Context) (Report, error) {
	var err error
	ctx, span := tracer.Start(ctx, "validation-suite")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	err = h.begin()
	if err != nil {
		return h.Report(), err
	}

	defer h.finish()

	checks := []struct {
		run func(ctx context.Context) Verdict
		set func(r *Report, v Verdict)
	}{
		{h.checkResponseTime, func(r *Report, v Verdict) { r.ResponseTime = v }},
		{h.checkReliability, func(r *Report, v Verdict) { r.Reliability = v }},
		{h.checkResubscription, func(r *Report, v Verdict) { r.Resubscription = v }},
	}

	for i, check := range checks {
		if i > 0 {
			err = wait(ctx, h.cfg.InterCheckDelay)
			if err != nil {
				return h.Report(), err
			}
		}

		h.update(func(r *Report) { check.set(r, Verdict{Status: StatusRunning}) })

		verdict := check.run(ctx)
		h.update(func(r *Report) { check.set(r, verdict) })

		if err = ctx.Err(); err != nil {
			return h.Report(), err
		}
	}

	return h.Report(), nil
}

func (h *harness) begin() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return ErrAlreadyRunning
	}

	h.running = true
	h.report = Report{
		ResponseTime:   Verdict{Status: StatusIdle},
		Reliability:    Verdict{Status: StatusIdle},
		Resubscription: Verdict{Status: StatusIdle},
		Overall:        string(StatusRunning),
		StartedAt:      time.Now().UTC(),
	}

	return nil
}

func (h *harness) finish() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.running = false
	h.report.CompletedAt = time.Now().UTC()
	h.report.Overall = overall(h.report)
}

func (h *harness) update(fn func(r *Report)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.report)
}

func overall(r Report) string {
	verdicts := []Verdict{r.ResponseTime, r.Reliability, r.Resubscription}

	passed, failed := 0, 0
	for _, v := range verdicts {
		switch v.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		}
	}

	switch {
	case passed == len(verdicts):
		return string(StatusPassed)
	case failed == len(verdicts):
		return string(StatusFailed)
	default:
		return "mixed"
	}
}

// wait blocks for the given duration or until the context is cancelled.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
