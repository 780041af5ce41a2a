package observability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// attributePolicy decides which span attribute keys leave the process.
// Denials win over allowances.
type attributePolicy struct {
	allowPrefixes []string
	allowKeys     []string
	denyPrefixes  []string
	denyKeys      []string
}

// exportPolicy keeps the compatstats namespaces and strips credentials and
// payloads. Publish keys are configured in plain text, so they are denied by name.
var exportPolicy = attributePolicy{
	allowPrefixes: []string{
		"compatstats.", "compat.", "compatdata.", "artifact.", "history.",
		"publish.", "report.", "cache", "mcp.", "http.", "error.",
	},
	allowKeys:    []string{"error"},
	denyPrefixes: []string{"user."},
	denyKeys: []string{
		"email", "access_key", "secret_key", "publish.access_key", "publish.secret_key",
		"request.body", "response.body",
	},
}

func (p attributePolicy) permits(key string) bool {
	if slices.Contains(p.denyKeys, key) || hasAnyPrefix(key, p.denyPrefixes) {
		return false
	}

	return slices.Contains(p.allowKeys, key) || hasAnyPrefix(key, p.allowPrefixes)
}

func hasAnyPrefix(key string, prefixes []string) bool {
	return slices.ContainsFunc(prefixes, func(prefix string) bool { return strings.HasPrefix(key, prefix) })
}

// attributeFilter is a SpanProcessor that applies exportPolicy to ended
// spans before the delegate exports them.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	policy   attributePolicy
	logger   *slog.Logger
	reported sync.Map
}

// NewAttributeFilter wraps delegate so exported spans only carry permitted
// attributes. A non-nil logger is warned once per blocked key.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, policy: exportPolicy, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	kept := make([]attribute.KeyValue, 0, len(s.Attributes()))

	for _, kv := range s.Attributes() {
		key := string(kv.Key)
		if f.policy.permits(key) {
			kept = append(kept, kv)

			continue
		}

		f.report(key, s.Name())
	}

	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: kept})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) report(key, span string) {
	if f.logger == nil {
		return
	}

	if _, seen := f.reported.LoadOrStore(key, struct{}{}); seen {
		return
	}

	f.logger.Warn("span attribute blocked", "key", key, "span", span)
}

// filteredSpan is a ReadOnlySpan with a precomputed attribute set.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
