package apiclient

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"onlinemall/internal/util"
)

// TokenSource supplies the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// RequestHook runs before a request is sent. Hooks run in slice order and
// the first error aborts the call without sending.
type RequestHook func(*http.Request) error

// ResponseHook runs after a response body has been read. Hooks run in slice
// order; a hook may replace Payload, and the first error is returned to the
// caller without running later hooks.
type ResponseHook func(*Response) error

// Response is what response hooks see and transform.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	// Body is the raw response body and is never modified.
	Body []byte
	// Payload is what gets decoded into the caller's result. It starts as Body.
	Payload []byte
}

// OK reports whether the HTTP status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// DefaultSuccessCodes are the envelope codes treated as success.
var DefaultSuccessCodes = []int{200, 201}

// DefaultRequestHooks is the standard request chain: bearer auth, then request id.
func DefaultRequestHooks(tokens TokenSource) []RequestHook {
	return []RequestHook{BearerAuth(tokens), RequestID()}
}

// DefaultResponseHooks is the standard response chain: envelope unwrapping.
func DefaultResponseHooks(successCodes ...int) []ResponseHook {
	return []ResponseHook{UnwrapEnvelope(successCodes...)}
}

// BearerAuth attaches the session token as a bearer credential when present.
func BearerAuth(tokens TokenSource) RequestHook {
	return func(req *http.Request) error {
		if tokens == nil {
			return nil
		}
		token, ok := tokens.Token()
		if !ok || token == "" {
			return nil
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	}
}

// RequestID sets X-Request-Id from the request context, generating one when absent.
func RequestID() RequestHook {
	return func(req *http.Request) error {
		if req.Header.Get(util.RequestIDHeader) != "" {
			return nil
		}
		_, id := util.EnsureRequestID(req.Context())
		req.Header.Set(util.RequestIDHeader, id)
		return nil
	}
}

// UnwrapEnvelope handles the {code,message,data} convention:
//   - code in successCodes on a 2xx response: Payload becomes data
//   - any other numeric code: *BusinessError with code and message
//   - no code field: Payload is left as the raw body
func UnwrapEnvelope(successCodes ...int) ResponseHook {
	if len(successCodes) == 0 {
		successCodes = DefaultSuccessCodes
	}
	success := make(map[int]struct{}, len(successCodes))
	for _, c := range successCodes {
		success[c] = struct{}{}
	}
	return func(r *Response) error {
		if len(r.Body) == 0 || !gjson.ValidBytes(r.Body) {
			return nil
		}
		root := gjson.ParseBytes(r.Body)
		if !root.IsObject() {
			return nil
		}
		code, ok := envelopeCode(root.Get("code"))
		if !ok {
			return nil
		}
		if _, isSuccess := success[code]; isSuccess {
			if !r.OK() {
				return nil
			}
			data := root.Get("data")
			if data.Exists() {
				r.Payload = []byte(data.Raw)
			} else {
				r.Payload = nil
			}
			return nil
		}
		msg := strings.TrimSpace(root.Get("message").String())
		if msg == "" {
			msg = DefaultErrorMessage
		}
		return &BusinessError{Status: r.StatusCode, Code: code, Message: msg}
	}
}

func envelopeCode(v gjson.Result) (int, bool) {
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// serverMessage extracts a server-supplied message from an error body.
func serverMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return ""
	}
	for _, field := range []string{"message", "error"} {
		if v := root.Get(field); v.Type == gjson.String && strings.TrimSpace(v.Str) != "" {
			return v.Str
		}
	}
	return ""
}
