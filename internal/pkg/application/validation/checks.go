package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/roadwatch/ice-monitoring/internal/pkg/infrastructure/feed"
	"github.com/roadwatch/ice-monitoring/pkg/types"
	"github.com/samber/lo"
)

// synthetic detections are tagged through their sensor identifier so the
// checks can tell their own events apart from live traffic
const syntheticTagPrefix = "validation-"

func syntheticTag() string {
	return syntheticTagPrefix + uuid.NewString()
}

func syntheticDetection(tag string, sequence int) types.Detection {
	return types.Detection{
		SensorID: tag,
		Location: types.Location{Latitude: 0, Longitude: 0},
		Severity: types.SeverityLow,
		Status:   types.DetectionActive,
		Notes:    fmt.Sprintf("synthetic validation event %d", sequence),
	}
}

// listen subscribes to detection inserts and forwards decoded records on the
// returned channel. The caller must release the subscription on every exit
// path.
func (h *harness) listen(ctx context.Context) (<-chan types.Detection, feed.Subscription, error) {
	events := make(chan types.Detection, 64)

	sub, err := h.feed.Subscribe(ctx, feed.Detections, feed.EventInsert, func(_ context.Context, change feed.ChangeRecord) {
		var detection types.Detection
		if err := json.Unmarshal(change.Record, &detection); err != nil {
			return
		}

		select {
		case events <- detection:
		default:
		}
	})
	if err != nil {
		return nil, nil, err
	}

	return events, sub, nil
}

func failed(detail string) Verdict {
	return Verdict{Status: StatusFailed, Detail: detail}
}

// checkResponseTime writes one synthetic detection and measures the time
// until its insert notification arrives. Arrival within the limit passes;
// arrival between the limit and the hard timeout fails with the measured
// elapsed time; no arrival at all fails with a timeout message.
func (h *harness) checkResponseTime(ctx context.Context) Verdict {
	events, sub, err := h.listen(ctx)
	if err != nil {
		return failed(fmt.Sprintf("could not subscribe: %s", err.Error()))
	}
	defer sub.Unsubscribe(context.WithoutCancel(ctx))

	tag := syntheticTag()
	start := time.Now()

	_, err = h.writer.AddDetection(ctx, syntheticDetection(tag, 1))
	if err != nil {
		return failed(fmt.Sprintf("write failed: %s", err.Error()))
	}

	deadline := time.NewTimer(h.cfg.ResponseTimeTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return failed("cancelled")
		case detection := <-events:
			if !strings.HasPrefix(detection.SensorID, tag) {
				continue
			}

			elapsed := time.Since(start)
			if elapsed <= h.cfg.ResponseTimeLimit {
				return Verdict{
					Status:  StatusPassed,
					Detail:  fmt.Sprintf("notification received after %d ms", elapsed.Milliseconds()),
					Elapsed: elapsed,
				}
			}

			return Verdict{
				Status:  StatusFailed,
				Detail:  fmt.Sprintf("notification arrived after %d ms, limit is %d ms", elapsed.Milliseconds(), h.cfg.ResponseTimeLimit.Milliseconds()),
				Elapsed: elapsed,
			}
		case <-deadline.C:
			return failed("no notification received")
		}
	}
}

// checkReliability writes a burst of tagged detections and counts how many
// insert notifications arrive within the grace period. Anything short of
// complete delivery fails; the percentage is reported either way.
func (h *harness) checkReliability(ctx context.Context) Verdict {
	events, sub, err := h.listen(ctx)
	if err != nil {
		return failed(fmt.Sprintf("could not subscribe: %s", err.Error()))
	}
	defer sub.Unsubscribe(context.WithoutCancel(ctx))

	tag := syntheticTag()
	start := time.Now()

	for i := 0; i < h.cfg.BurstCount; i++ {
		if i > 0 {
			if err := wait(ctx, h.cfg.BurstSpacing); err != nil {
				return failed("cancelled")
			}
		}

		_, err = h.writer.AddDetection(ctx, syntheticDetection(tag, i+1))
		if err != nil {
			return failed(fmt.Sprintf("write %d of %d failed: %s", i+1, h.cfg.BurstCount, err.Error()))
		}
	}

	seen := h.collect(ctx, events, tag, h.cfg.BurstGrace, h.cfg.BurstCount)

	received := len(lo.UniqBy(seen, func(d types.Detection) string { return d.ID }))
	percentage := received * 100 / h.cfg.BurstCount

	detail := fmt.Sprintf("%d of %d notifications received (%d%%)", received, h.cfg.BurstCount, percentage)
	elapsed := time.Since(start)

	if received != h.cfg.BurstCount {
		return Verdict{Status: StatusFailed, Detail: detail, Elapsed: elapsed}
	}

	return Verdict{Status: StatusPassed, Detail: detail, Elapsed: elapsed}
}

// checkResubscription verifies that a freshly established subscription
// receives events normally. It deliberately does not sever the transport;
// the claim is limited to resubscription working after a quiet window.
func (h *harness) checkResubscription(ctx context.Context) Verdict {
	before := syntheticTag()

	// not verified; only there to have traffic on the topic before the window
	_, err := h.writer.AddDetection(ctx, syntheticDetection(before, 1))
	if err != nil {
		return failed(fmt.Sprintf("write before interruption window failed: %s", err.Error()))
	}

	if err := wait(ctx, h.cfg.InterruptionWindow); err != nil {
		return failed("cancelled")
	}

	events, sub, err := h.listen(ctx)
	if err != nil {
		return failed(fmt.Sprintf("could not resubscribe: %s", err.Error()))
	}
	defer sub.Unsubscribe(context.WithoutCancel(ctx))

	after := syntheticTag()
	start := time.Now()

	_, err = h.writer.AddDetection(ctx, syntheticDetection(after, 2))
	if err != nil {
		return failed(fmt.Sprintf("write after resubscribe failed: %s", err.Error()))
	}

	seen := h.collect(ctx, events, after, h.cfg.ResubscribeGrace, 1)

	if len(seen) == 0 {
		return failed("no notifications received on fresh subscription, messages were lost")
	}

	return Verdict{
		Status:  StatusPassed,
		Detail:  "fresh subscription received notifications",
		Elapsed: time.Since(start),
	}
}

// collect gathers tagged events from the channel until the grace period
// expires, the expected count is reached or the context is cancelled.
func (h *harness) collect(ctx context.Context, events <-chan types.Detection, tag string, grace time.Duration, expected int) []types.Detection {
	deadline := time.NewTimer(grace)
	defer deadline.Stop()

	seen := make([]types.Detection, 0, expected)

	for {
		select {
		case <-ctx.Done():
			return seen
		case <-deadline.C:
			return seen
		case detection := <-events:
			if strings.HasPrefix(detection.SensorID, tag) {
				seen = append(seen, detection)
				if len(seen) >= expected {
					return seen
				}
			}
		}
	}
}
