package util

import (
	"context"
	"testing"
)

func TestEnsureRequestIDKeepsExistingID(t *testing.T) {
	const incoming = "req-incoming-123"
	ctx := ContextWithRequestID(context.Background(), incoming)

	ctx, id := EnsureRequestID(ctx)
	if id != incoming {
		t.Fatalf("unexpected request id: got %q want %q", id, incoming)
	}
	if got := RequestIDFromContext(ctx); got != incoming {
		t.Fatalf("unexpected request id in context: got %q want %q", got, incoming)
	}
}

func TestEnsureRequestIDGeneratesWhenMissing(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	if id == "" {
		t.Fatal("expected generated request id")
	}
	if got := RequestIDFromContext(ctx); got != id {
		t.Fatalf("generated id not stored in context: got %q want %q", got, id)
	}
	if LoggerFromContext(ctx) == nil {
		t.Fatal("expected request-scoped logger")
	}
}

func TestContextWithRequestIDIgnoresBlank(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "  ")
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("expected no request id, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"WARNING": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		if got := ParseLevel(in).String(); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
