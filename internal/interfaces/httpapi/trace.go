package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("komiti/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

const handlerSpanPrefix = "httpapi.Handler."

// startRequestSpan opens a handler span tagged with the matched route and,
// for committee routes, the committee id.
func startRequestSpan(r *http.Request, name string) (context.Context, trace.Span) {
	return startSpan(r.Context(), name, requestAttributes(r)...)
}

// startSpan opens a child span only for handlers running under a traced
// request. Helpers and middleware reuse the request span.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !shouldCreateHTTPAPISpan(name) || !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func requestAttributes(r *http.Request) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if r.Pattern != "" {
		attrs = append(attrs, attribute.String("http.route", r.Pattern))
	}
	if id := strings.TrimSpace(r.PathValue("committeeID")); id != "" {
		attrs = append(attrs, attribute.String("committee.id", id))
	}
	return attrs
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, handlerSpanPrefix)
}
