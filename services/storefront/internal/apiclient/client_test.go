package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
)

type staticTokens string

func (s staticTokens) Token() (string, bool) {
	return string(s), s != ""
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/api/v1", Tokens: tokens})
}

func respondWith(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestEnvelopeSuccessUnwrapsData(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusOK, `{"code":200,"data":{"x":1},"message":"ok"}`), nil)

	var out map[string]any
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"x": float64(1)}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("unexpected payload: got %#v want %#v", out, want)
	}
}

func TestEnvelopeCreatedCodeIsSuccess(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusCreated, `{"code":201,"data":{"id":7},"message":"created"}`), nil)

	var out struct {
		ID int `json:"id"`
	}
	if err := c.doJSON(context.Background(), http.MethodPost, "/thing", nil, map[string]int{"a": 1}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ID != 7 {
		t.Fatalf("expected id 7, got %d", out.ID)
	}
}

func TestEnvelopeFailureReturnsBusinessError(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusOK, `{"code":400,"message":"bad"}`), nil)

	var out map[string]any
	err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out)
	var bizErr *BusinessError
	if !errors.As(err, &bizErr) {
		t.Fatalf("expected BusinessError, got %T %v", err, err)
	}
	if bizErr.Code != 400 || bizErr.Message != "bad" || err.Error() != "bad" {
		t.Fatalf("unexpected business error: %+v", bizErr)
	}
	if out != nil {
		t.Fatalf("result must not be populated on failure, got %#v", out)
	}
}

func TestEnvelopeStringCode(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusOK, `{"code":"500","message":"server busy"}`), nil)

	err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil)
	var bizErr *BusinessError
	if !errors.As(err, &bizErr) || bizErr.Code != 500 {
		t.Fatalf("expected BusinessError with code 500, got %v", err)
	}
}

func TestBodyWithoutCodePassesThrough(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusOK, `{"foo":"bar"}`), nil)

	var out map[string]any
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"foo": "bar"}) {
		t.Fatalf("expected raw body, got %#v", out)
	}
}

func TestArrayBodyPassesThrough(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusOK, `[{"id":1},{"id":2}]`), nil)

	var out []map[string]int
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[1]["id"] != 2 {
		t.Fatalf("unexpected array payload: %#v", out)
	}
}

func TestSuccessCodeWithoutDataLeavesResultEmpty(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusOK, `{"code":200,"message":"ok"}`), nil)

	out := map[string]any{"untouched": true}
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out, map[string]any{"untouched": true}) {
		t.Fatalf("result should be left alone, got %#v", out)
	}
}

func TestHTTPErrorUsesServerMessage(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusInternalServerError, `{"message":"database down"}`), nil)

	err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if transportErr.Status != http.StatusInternalServerError || transportErr.Message != "database down" {
		t.Fatalf("unexpected transport error: %+v", transportErr)
	}
}

func TestHTTPErrorFallsBackToStatusLine(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusBadGateway, ``), nil)

	err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if transportErr.Message != "502 Bad Gateway" {
		t.Fatalf("expected status line message, got %q", transportErr.Message)
	}
}

func TestHTTPErrorWithEnvelopeIsBusinessError(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusUnauthorized, `{"code":401,"message":"token expired"}`), nil)

	err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil)
	var bizErr *BusinessError
	if !errors.As(err, &bizErr) || bizErr.Message != "token expired" {
		t.Fatalf("expected BusinessError, got %v", err)
	}
	if !IsUnauthorized(err) {
		t.Fatalf("expected IsUnauthorized to be true")
	}
}

func TestNonJSONSuccessBodyIsTransportError(t *testing.T) {
	c := newTestClient(t, respondWith(http.StatusOK, `<html>maintenance</html>`), nil)

	var out map[string]any
	err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if transportErr.Status != http.StatusOK || transportErr.Unwrap() == nil {
		t.Fatalf("unexpected transport error: %+v", transportErr)
	}
	if !strings.HasPrefix(transportErr.Message, "decode response") {
		t.Fatalf("unexpected message %q", transportErr.Message)
	}
}

func TestNetworkErrorUsesTransportMessage(t *testing.T) {
	srv := httptest.NewServer(respondWith(http.StatusOK, `{}`))
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL})

	err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil)
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if transportErr.Message == "" || transportErr.Message == DefaultErrorMessage {
		t.Fatalf("expected transport-level message, got %q", transportErr.Message)
	}
	if transportErr.Unwrap() == nil {
		t.Fatalf("expected wrapped transport error")
	}
}

func TestTransportErrorGenericFallback(t *testing.T) {
	err := newTransportError(0, "", "", nil)
	if err.Message != DefaultErrorMessage || DefaultErrorMessage == "" {
		t.Fatalf("expected generic fallback, got %q", err.Message)
	}
	if got := ErrorMessage(errors.New("")); got != DefaultErrorMessage {
		t.Fatalf("ErrorMessage should fall back for empty errors, got %q", got)
	}
}

func TestBearerTokenAttachedOnlyWhenPresent(t *testing.T) {
	var gotAuth atomic.Value
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		if r.Header.Get("X-Request-Id") == "" {
			t.Errorf("expected request id header")
		}
		_, _ = w.Write([]byte(`{}`))
	}

	c := newTestClient(t, handler, staticTokens("tok-123"))
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gotAuth.Load().(string); got != "Bearer tok-123" {
		t.Fatalf("unexpected authorization header: %q", got)
	}

	c = newTestClient(t, handler, staticTokens(""))
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := gotAuth.Load().(string); got != "" {
		t.Fatalf("expected no authorization header, got %q", got)
	}
}

func TestRequestHookErrorShortCircuits(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	hookErr := errors.New("blocked")
	c := NewClient(Config{
		BaseURL: srv.URL,
		RequestHooks: []RequestHook{
			func(*http.Request) error { return hookErr },
			func(*http.Request) error { t.Fatal("later hooks must not run"); return nil },
		},
	})
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, nil); !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("request must not be sent after hook failure")
	}
}

func TestResponseHooksRunInOrder(t *testing.T) {
	var order []string
	c := newTestClient(t, respondWith(http.StatusOK, `{"code":200,"data":"inner"}`), nil)
	c.responseHooks = []ResponseHook{
		func(r *Response) error {
			order = append(order, "first")
			if !strings.Contains(string(r.Payload), `"code":200`) {
				t.Errorf("first hook should see the raw body, got %s", r.Payload)
			}
			return nil
		},
		UnwrapEnvelope(),
		func(r *Response) error {
			order = append(order, "last")
			if string(r.Payload) != `"inner"` {
				t.Errorf("last hook should see unwrapped data, got %s", r.Payload)
			}
			return nil
		},
	}
	var out string
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "inner" || !reflect.DeepEqual(order, []string{"first", "last"}) {
		t.Fatalf("unexpected result %q order %v", out, order)
	}
}

func TestCustomSuccessCodes(t *testing.T) {
	srv := httptest.NewServer(respondWith(http.StatusOK, `{"code":0,"data":{"ok":true}}`))
	defer srv.Close()
	c := NewClient(Config{BaseURL: srv.URL, SuccessCodes: []int{0}})

	var out map[string]bool
	if err := c.doJSON(context.Background(), http.MethodGet, "/thing", nil, nil, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out["ok"] {
		t.Fatalf("expected unwrapped data, got %#v", out)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(&BusinessError{Code: 409, Message: "out of stock"}); got != "out of stock" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ErrorMessage(&TransportError{Message: "timeout"}); got != "timeout" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := ErrorMessage(nil); got != "" {
		t.Fatalf("expected empty message for nil, got %q", got)
	}
}
