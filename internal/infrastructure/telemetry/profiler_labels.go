package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Label keys attached to profiles. Kept deliberately small: every
// distinct label value is a separate profile series in Pyroscope.
const (
	ProfilingLabelController = "controller"
	ProfilingLabelRoute      = "route"
	ProfilingLabelMethod     = "method"
	ProfilingLabelOperation  = "operation"
)

// maxLabelValueLength caps label values so a runaway route or operation
// name cannot blow up series cardinality.
const maxLabelValueLength = 128

// highCardinalityKeys are per-request identifiers that must never become
// profile labels. They are dropped silently; logging here would spam the
// hot path.
var highCardinalityKeys = map[string]bool{
	"user_id":    true,
	"request_id": true,
	"order_id":   true,
	"trace_id":   true,
	"span_id":    true,
	"session_id": true,
}

// WithProfilingLabels runs fn with the given labels attached to the
// profiling context. Labels are sanitized first; if nothing survives,
// fn runs unlabeled. pyroscope.TagWrapper is pprof-label compatible, so
// the labels also show up in standard pprof output.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels turns a label map into the flat key/value slice the
// pprof API wants: empty and high-cardinality entries dropped, keys
// normalized to snake_case, values truncated, keys sorted so the output
// is deterministic.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		if key == "" || value == "" || highCardinalityKeys[key] {
			continue
		}
		if len(value) > maxLabelValueLength {
			value = value[:maxLabelValueLength]
		}
		if key = sanitizeLabelKey(key); key == "" {
			continue
		}
		pairs = append(pairs, key, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases the key, maps separators to underscores
// and strips everything outside [a-z0-9_].
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		switch c := key[i]; {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_':
			b.WriteByte(c)
		case c == ' ', c == '-':
			b.WriteByte('_')
		}
	}
	return b.String()
}
