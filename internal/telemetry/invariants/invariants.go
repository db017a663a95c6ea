package invariants

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// InvariantHistoryAppendOnly requires the transcript to only grow, except on clear.
	InvariantHistoryAppendOnly = "history_append_only"
	// InvariantCommandHistoryNoBlank requires recall history to hold no blank entries.
	InvariantCommandHistoryNoBlank = "command_history_no_blank"
	// InvariantSubmissionGated requires no submission to be accepted while rendering.
	InvariantSubmissionGated = "submission_gated"
	// InvariantRecallCursorReset requires the recall cursor to reset on submission.
	InvariantRecallCursorReset = "recall_cursor_reset"
	// InvariantWindowMinimumSize requires the window never to shrink below its minimum.
	InvariantWindowMinimumSize = "window_minimum_size"
)

const (
	// SeverityWarn is used for non-fatal invariant violations.
	SeverityWarn = "warn"
	// SeverityError is used for fatal invariant violations.
	SeverityError = "error"
)

var invariantChecksEnabled atomic.Bool

func init() {
	invariantChecksEnabled.Store(true)
}

// ViolationDetails captures invariant violation context for telemetry events.
type ViolationDetails struct {
	WhatInvariant string
	WhereDetected string
	WhyViolated   string
	Additional    map[string]string
}

// SetEnabled globally enables or disables invariant checks.
func SetEnabled(enabled bool) {
	invariantChecksEnabled.Store(enabled)
}

// Enabled reports whether invariant checks are currently enabled.
func Enabled() bool {
	return invariantChecksEnabled.Load()
}

// InvariantViolation emits an invariant.violation event on the active span.
// If the context has no active span, a short synthetic span carries it.
func InvariantViolation(
	ctx context.Context,
	invariantName string,
	severity string,
	details ViolationDetails,
) {
	if !Enabled() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	invariantName = strings.TrimSpace(invariantName)
	if invariantName == "" {
		invariantName = "unknown_invariant"
	}

	attrs := []attribute.KeyValue{
		attribute.String("invariant_name", invariantName),
		attribute.String("severity", normalizeSeverity(severity)),
		attribute.String("what_invariant", strings.TrimSpace(details.WhatInvariant)),
		attribute.String("where_detected", strings.TrimSpace(details.WhereDetected)),
		attribute.String("why_violated", strings.TrimSpace(details.WhyViolated)),
	}

	keys := make([]string, 0, len(details.Additional))
	for key := range details.Additional {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value := strings.TrimSpace(details.Additional[key]); value != "" {
			attrs = append(attrs, attribute.String("context."+key, value))
		}
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.AddEvent("invariant.violation", trace.WithAttributes(attrs...))
		return
	}

	_, temporarySpan := otel.Tracer("termfolio/invariants").Start(ctx, "invariant.violation")
	defer temporarySpan.End()
	temporarySpan.AddEvent("invariant.violation", trace.WithAttributes(attrs...))
}

// CheckHistoryAppendOnly validates that a transcript of before entries became
// after entries by appending at most one, or by a clear down to zero.
func CheckHistoryAppendOnly(ctx context.Context, whereDetected string, before, after int, cleared bool) bool {
	if (cleared && after == 0) || (!cleared && (after == before || after == before+1)) {
		return true
	}
	InvariantViolation(ctx, InvariantHistoryAppendOnly, SeverityError, ViolationDetails{
		WhatInvariant: "transcript grows by appending or resets on clear",
		WhereDetected: whereDetected,
		WhyViolated:   "transcript length changed from " + strconv.Itoa(before) + " to " + strconv.Itoa(after),
		Additional: map[string]string{
			"before":  strconv.Itoa(before),
			"after":   strconv.Itoa(after),
			"cleared": strconv.FormatBool(cleared),
		},
	})
	return false
}

// CheckCommandHistoryNoBlank validates an entry about to join recall history.
func CheckCommandHistoryNoBlank(ctx context.Context, whereDetected string, entry string) bool {
	if strings.TrimSpace(entry) != "" {
		return true
	}
	InvariantViolation(ctx, InvariantCommandHistoryNoBlank, SeverityError, ViolationDetails{
		WhatInvariant: "recall history holds no whitespace-only entry",
		WhereDetected: whereDetected,
		WhyViolated:   "blank entry recorded",
		Additional:    map[string]string{"entry_length": strconv.Itoa(len(entry))},
	})
	return false
}

// CheckSubmissionGated validates that nothing was accepted while a render was
// still gating input.
func CheckSubmissionGated(ctx context.Context, whereDetected string, rendering, accepted bool) bool {
	if !rendering || !accepted {
		return true
	}
	InvariantViolation(ctx, InvariantSubmissionGated, SeverityError, ViolationDetails{
		WhatInvariant: "no submission is accepted while output renders",
		WhereDetected: whereDetected,
		WhyViolated:   "submission accepted during render",
	})
	return false
}

// CheckRecallCursorReset validates the recall cursor after a submission.
func CheckRecallCursorReset(ctx context.Context, whereDetected string, cursor int) bool {
	if cursor == -1 {
		return true
	}
	InvariantViolation(ctx, InvariantRecallCursorReset, SeverityWarn, ViolationDetails{
		WhatInvariant: "recall cursor returns to not navigating on submit",
		WhereDetected: whereDetected,
		WhyViolated:   "cursor left at " + strconv.Itoa(cursor),
	})
	return false
}

// CheckWindowMinimumSize validates a window size against its floor.
func CheckWindowMinimumSize(ctx context.Context, whereDetected string, width, height, minWidth, minHeight int) bool {
	if width >= minWidth && height >= minHeight {
		return true
	}
	InvariantViolation(ctx, InvariantWindowMinimumSize, SeverityWarn, ViolationDetails{
		WhatInvariant: "window size stays at or above its minimum",
		WhereDetected: whereDetected,
		WhyViolated:   "size below minimum",
		Additional: map[string]string{
			"width":      strconv.Itoa(width),
			"height":     strconv.Itoa(height),
			"min_width":  strconv.Itoa(minWidth),
			"min_height": strconv.Itoa(minHeight),
		},
	})
	return false
}

func normalizeSeverity(value string) string {
	if strings.ToLower(strings.TrimSpace(value)) == SeverityWarn {
		return SeverityWarn
	}
	return SeverityError
}
