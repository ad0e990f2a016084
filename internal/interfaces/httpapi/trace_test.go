package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	cases := map[string]bool{
		"httpapi.Handler.RunDraw":        true,
		"httpapi.Handler.ExportReport":   true,
		"httpapi.RequireAuth":            false,
		"httpapi.writeError":             false,
		"usecase.DrawService.RecordDraw": false,
	}

	for name, want := range cases {
		if got := shouldCreateHTTPAPISpan(name); got != want {
			t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", name, got, want)
		}
	}
}

func TestStartSpan_NoParentReturnsNoop(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.GetCommittee")
	defer span.End()

	if got != ctx {
		t.Fatalf("expected original context without a traced parent")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected noop span without a traced parent")
	}
}

func TestRequestAttributes_CommitteeRoute(t *testing.T) {
	mux := http.NewServeMux()
	var got []attribute.KeyValue
	mux.HandleFunc("GET /v1/committees/{committeeID}/draws", func(w http.ResponseWriter, r *http.Request) {
		got = requestAttributes(r)
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/committees/c-9/draws", nil))

	want := []attribute.KeyValue{
		attribute.String("http.route", "GET /v1/committees/{committeeID}/draws"),
		attribute.String("committee.id", "c-9"),
	}
	if len(got) != len(want) {
		t.Fatalf("attributes=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("attribute[%d]=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestRequestAttributes_NoCommittee(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	if got := requestAttributes(req); len(got) != 0 {
		t.Fatalf("expected no attributes outside a routed committee path, got %v", got)
	}
}
